package zarr

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"|i1", DataType{Kind: KindInt, Size: 1}},
		{"|u1", DataType{Kind: KindUint, Size: 1}},
		{"<u2", DataType{Kind: KindUint, Size: 2, LittleEndian: true}},
		{">u2", DataType{Kind: KindUint, Size: 2}},
		{"<i4", DataType{Kind: KindInt, Size: 4, LittleEndian: true}},
		{">i8", DataType{Kind: KindInt, Size: 8}},
		{"<f4", DataType{Kind: KindFloat, Size: 4, LittleEndian: true}},
		{">f8", DataType{Kind: KindFloat, Size: 8}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDataType(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestParseDataTypeRejects(t *testing.T) {
	for _, in := range []string{"", "u2", "<u", "<b1", "<f2", "<f1", "<u3", "=u2", "<U16", "<c8"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDataType(in)
			require.Error(t, err)
		})
	}
}

func TestToBigEndian(t *testing.T) {
	dt, err := ParseDataType("<u2")
	require.NoError(t, err)
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	dt.ToBigEndian(buf)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, buf)

	// Already big-endian data is left alone.
	dt, err = ParseDataType(">u4")
	require.NoError(t, err)
	buf = []byte{0x01, 0x02, 0x03, 0x04}
	dt.ToBigEndian(buf)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
}

func TestPutValue(t *testing.T) {
	dt, err := ParseDataType("<u2")
	require.NoError(t, err)
	buf := make([]byte, 2)
	dt.PutValue(buf, 513)
	assert.Equal(t, uint16(513), binary.LittleEndian.Uint16(buf))

	dt, err = ParseDataType(">f4")
	require.NoError(t, err)
	buf = make([]byte, 4)
	dt.PutValue(buf, 1.5)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.BigEndian.Uint32(buf)))

	dt, err = ParseDataType(">f8")
	require.NoError(t, err)
	buf = make([]byte, 8)
	dt.PutValue(buf, math.NaN())
	assert.True(t, math.IsNaN(math.Float64frombits(binary.BigEndian.Uint64(buf))))
}

func TestSigned(t *testing.T) {
	i4, _ := ParseDataType("<i4")
	u2, _ := ParseDataType("<u2")
	f4, _ := ParseDataType("<f4")
	assert.True(t, i4.Signed())
	assert.False(t, u2.Signed())
	assert.False(t, f4.Signed())
}
