package prover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store keeps compiled constraint systems and keys on disk, one file per artifact.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Has reports whether every named artifact exists.
func (s *Store) Has(names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(s.Path(name)); err != nil {
			return false
		}
	}
	return true
}

func (s *Store) Save(name string, obj io.WriterTo) error {
	f, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) Load(name string, obj io.ReaderFrom) error {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}
