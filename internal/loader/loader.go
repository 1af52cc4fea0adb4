// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// ErrEmptyProgram is returned for ROM files without any content.
var ErrEmptyProgram = errors.New("program is empty")

// Loader handles loading CHIP-8 ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the ROM file at the given path. CHIP-8 ROMs are raw images
// without a header, the whole file content is returned.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return data, nil
}

// LoadFromReader reads a ROM image from the reader and validates its size.
// At most one byte more than the maximum program size is read.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, ErrEmptyProgram
	case len(data) > chip8.MaxProgramSize:
		return nil, fmt.Errorf("%w: more than %d bytes", chip8.ErrProgramTooLarge, chip8.MaxProgramSize)
	}

	l.logger.Debug("ROM loaded", log.Int("size", len(data)))
	return data, nil
}
