package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{name: "json", file: "session.json"},
		{name: "xz", file: "session.json.xz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", tt.file)

			kv, err := Open(path)
			require.NoError(t, err)
			_, ok, err := kv.Get("a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("a", `[{"id":1}]`))
			require.NoError(t, kv.Set("b", "true"))
			require.NoError(t, kv.Delete("b"))
			require.NoError(t, kv.Delete("missing"))

			// reopening reads what was written
			reopened, err := Open(path)
			require.NoError(t, err)
			val, ok, err := reopened.Get("a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, val)
			_, ok, err = reopened.Get("b")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestKVStore_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.xz")
	kv, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set("k", "v"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, data[:6])
}

func TestOpen_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	kv, err := Open(empty)
	require.NoError(t, err)
	_, ok, err := kv.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	kv, err := Open(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	require.NoError(t, kv.Set("a", "1"))

	// a directory where the store's file should be makes the rename fail
	kv.path = dir
	assert.Error(t, kv.Set("a", "2"))
	val, _, _ := kv.Get("a")
	assert.Equal(t, "1", val)
}
