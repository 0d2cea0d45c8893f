package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the prover configuration
type Config struct {
	RootDir string

	// BuildDir keeps compiled circuits and keys, relative to RootDir unless absolute
	BuildDir string
	// OutputDir receives proof artifacts, relative to RootDir unless absolute
	OutputDir string

	LogLevel string

	// MaxBlockCount limits the variative circuits that are set up. Zero means all of them.
	MaxBlockCount int
}

func NewConfig(args ...string) *Config {
	// Parse configuration from environment variables or command line args
	config := Config{
		RootDir:   getEnv("ROOT", "."),
		BuildDir:  getEnv("BUILD_DIR", ".build"),
		OutputDir: getEnv("OUTPUT_DIR", "output"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	for i := 0; i < len(args); i++ {
		if len(args) <= i+1 {
			panic(fmt.Errorf("missing argument for %s", args[i]))
		}

		switch args[i] {
		case "--root":
			config.RootDir = args[i+1]
			i++
		case "--build-dir":
			config.BuildDir = args[i+1]
			i++
		case "--output-dir":
			config.OutputDir = args[i+1]
			i++
		case "--log-level":
			config.LogLevel = args[i+1]
			i++
		case "--max-block-count":
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				panic(fmt.Errorf("invalid --max-block-count: %w", err))
			}
			config.MaxBlockCount = n
			i++
		}
	}

	return &config
}

func (c *Config) BuildPath() string {
	return c.resolve(c.BuildDir)
}

func (c *Config) OutputPath() string {
	return c.resolve(c.OutputDir)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RootDir, dir)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
