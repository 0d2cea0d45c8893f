package prover

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	rootDir = mustGetRootDir()

	gnarkLogger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
)

func mustGetRootDir() string {
	root, err := projectRoot(".")
	if err != nil {
		panic(err)
	}
	return root
}

// projectRoot finds the project root directory by searching for go.mod file
// starting from the given startPath (default: current directory)
func projectRoot(startPath ...string) (string, error) {
	start := "."
	if len(startPath) > 0 {
		start = startPath[0]
	}

	currentPath, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Walk up directory tree until we find go.mod
	for {
		if _, err := os.Stat(filepath.Join(currentPath, "go.mod")); err == nil {
			return currentPath, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return "", fmt.Errorf("not found project root dir")
		}
		currentPath = parentPath
	}
}
