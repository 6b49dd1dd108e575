package zarr

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := NewDirectoryStore(root)
	assert.Equal(t, root, store.Root())

	require.NoError(t, store.Set("0/.zarray", []byte("meta")))
	require.NoError(t, store.Set("0/0/0", []byte{1, 2, 3}))

	got, err := store.Get("0/.zarray")
	require.NoError(t, err)
	assert.Equal(t, []byte("meta"), got)

	got, err = store.Get("0/0/0")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Values land under the root as real files.
	assert.FileExists(t, filepath.Join(root, "0", "0", "0"))
}

func TestDirectoryStoreMissingKey(t *testing.T) {
	store := NewDirectoryStore(t.TempDir())
	_, err := store.Get("0/0")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDirectoryStoreRejectsTraversal(t *testing.T) {
	store := NewDirectoryStore(t.TempDir())
	_, err := store.Get("../escape")
	require.Error(t, err)
	err = store.Set("a/../../escape", []byte("x"))
	require.Error(t, err)
}
