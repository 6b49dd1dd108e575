package ngff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultiscales(t *testing.T) {
	raw := []byte(`{
		"multiscales": [{
			"version": "0.1",
			"metadata": {"method": "loci.common.image.SimpleImageScaler"},
			"datasets": [
				{"path": "0", "generator": "bioformats2raw"},
				{"path": "1"}
			]
		}]
	}`)
	ms, err := parseMultiscales(raw)
	require.NoError(t, err)
	require.Equal(t, "0.1", ms.Version)
	require.Len(t, ms.Datasets, 2)
	assert.Equal(t, "0", ms.Datasets[0].Path())
	assert.Equal(t, "1", ms.Datasets[1].Path())
	// Provenance keys pass through untouched.
	assert.Equal(t, "bioformats2raw", ms.Datasets[0]["generator"])
}

func TestParseMultiscalesNoVersion(t *testing.T) {
	raw := []byte(`{"multiscales": [{"datasets": [{"path": "0"}]}]}`)
	ms, err := parseMultiscales(raw)
	require.NoError(t, err)
	assert.Empty(t, ms.Version)
}

func TestParseMultiscalesRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"no multiscales", `{"omero": {}}`},
		{"empty multiscales", `{"multiscales": []}`},
		{"no datasets", `{"multiscales": [{"version": "0.1"}]}`},
		{"empty datasets", `{"multiscales": [{"datasets": []}]}`},
		{"dataset without path", `{"multiscales": [{"datasets": [{"scale": 1}]}]}`},
		{"empty path", `{"multiscales": [{"datasets": [{"path": ""}]}]}`},
		{"future major version", `{"multiscales": [{"version": "1.0", "datasets": [{"path": "0"}]}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseMultiscales([]byte(tc.raw))
			require.Error(t, err)
		})
	}
}

func TestParseMultiscalesVersionGate(t *testing.T) {
	for _, v := range []string{"0.1", "0.4", "0.4.1"} {
		raw := []byte(`{"multiscales": [{"version": "` + v + `", "datasets": [{"path": "0"}]}]}`)
		_, err := parseMultiscales(raw)
		require.NoError(t, err, "version %s", v)
	}
}
