package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ROOT", "")
	t.Setenv("BUILD_DIR", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	config := NewConfig()
	require.Equal(t, ".", config.RootDir)
	require.Equal(t, ".build", config.BuildDir)
	require.Equal(t, "output", config.OutputDir)
	require.Equal(t, "info", config.LogLevel)
	require.Zero(t, config.MaxBlockCount)
	require.Equal(t, ".build", config.BuildPath())
}

func TestNewConfig_EnvAndArgs(t *testing.T) {
	t.Setenv("ROOT", "/tmp/zk")
	t.Setenv("BUILD_DIR", "/var/cache/zk")
	t.Setenv("LOG_LEVEL", "debug")

	config := NewConfig("--output-dir", "proofs", "--max-block-count", "2")
	require.Equal(t, "/tmp/zk", config.RootDir)
	require.Equal(t, "/var/cache/zk", config.BuildPath())
	require.Equal(t, filepath.Join("/tmp/zk", "proofs"), config.OutputPath())
	require.Equal(t, "debug", config.LogLevel)
	require.Equal(t, 2, config.MaxBlockCount)
}

func TestNewConfig_MissingArgument(t *testing.T) {
	require.Panics(t, func() { NewConfig("--root") })
	require.Panics(t, func() { NewConfig("--max-block-count", "two") })
}
