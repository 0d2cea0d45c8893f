package prover

import (
	"fmt"
	"os"

	"github.com/kysee/zk-blake2b/provers/types"
	basetypes "github.com/kysee/zk-blake2b/types"
)

var (
	_ types.Source = (*FileSource)(nil)
	_ types.Source = (*HexSource)(nil)
)

// FileSource implements Source by reading a local file
type FileSource struct {
	FilePath string
}

func NewFileSource(filePath string) *FileSource {
	return &FileSource{FilePath: filePath}
}

func (f *FileSource) Message() ([]byte, error) {
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.FilePath, err)
	}
	return data, nil
}

// HexSource implements Source from a hex string, 0x prefix optional
type HexSource struct {
	Hex string
}

func NewHexSource(hex string) *HexSource {
	return &HexSource{Hex: hex}
}

func (h *HexSource) Message() ([]byte, error) {
	data, err := basetypes.HexToBytes(h.Hex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return data, nil
}
