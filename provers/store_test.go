package prover

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".build")
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.Equal(t, dir, store.Dir())

	require.False(t, store.Has("a.vk"))

	src := bytes.NewBufferString("verifying key")
	require.NoError(t, store.Save("a.vk", src))
	require.True(t, store.Has("a.vk"))
	require.False(t, store.Has("a.vk", "a.pk"))

	var dst bytes.Buffer
	require.NoError(t, store.Load("a.vk", &dst))
	require.Equal(t, "verifying key", dst.String())

	require.Error(t, store.Load("a.pk", &dst))

	raw, err := os.ReadFile(store.Path("a.vk"))
	require.NoError(t, err)
	require.Equal(t, "verifying key", string(raw))
}
