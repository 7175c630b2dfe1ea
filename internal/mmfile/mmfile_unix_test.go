//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnonymous(t *testing.T) {
	data, cleanup, err := Anonymous(1 << 20)
	require.NoError(t, err)
	require.Len(t, data, 1<<20)
	for _, b := range data[:4096] {
		require.Zero(t, b)
	}
	data[0], data[len(data)-1] = 0xde, 0xad
	require.NoError(t, cleanup())
	require.NoError(t, cleanup(), "double unmap is a no-op")
}

func TestAnonymous_BadSize(t *testing.T) {
	_, _, err := Anonymous(0)
	require.ErrorContains(t, err, "invalid arena size")
}

func TestMap_PersistsToFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "arena.bin")
	data, cleanup, err := Map(path, 8192)
	require.NoError(t, err)
	copy(data[100:], "hunk")
	require.NoError(t, cleanup())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 8192)
	require.Equal(t, "hunk", string(raw[100:104]))
}
