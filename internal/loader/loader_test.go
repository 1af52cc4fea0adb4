package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestLoad(t *testing.T) {
	t.Run("load ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, []byte{0x00, 0xE0, 0x12, 0x00})

		loader := New(log.NewTestLogger(t))
		data, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xE0, 0x12, 0x00}, data)
	})

	t.Run("load ROM of maximum size", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, chip8.MaxProgramSize))

		loader := New(log.NewTestLogger(t))
		data, err := loader.Load(tmpFile)
		assert.NoError(t, err)
		assert.Len(t, data, chip8.MaxProgramSize)
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		loader := New(log.NewTestLogger(t))

		_, err := loader.Load("/nonexistent/file.ch8")
		assert.Error(t, err)
		assert.ErrorContains(t, err, "opening file")
	})

	t.Run("error on empty file", func(t *testing.T) {
		tmpFile := createTempFile(t, nil)

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.True(t, errors.Is(err, ErrEmptyProgram))
	})

	t.Run("error on oversized file", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, chip8.MaxProgramSize+100))

		loader := New(log.NewTestLogger(t))
		_, err := loader.Load(tmpFile)
		assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))
	})
}

func TestLoadFromReader(t *testing.T) {
	loader := New(log.NewTestLogger(t))

	data, err := loader.LoadFromReader(bytes.NewReader([]byte{0x60, 0x01}))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, data)

	_, err = loader.LoadFromReader(bytes.NewReader(make([]byte, chip8.MaxProgramSize+1)))
	assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))
}

func createTempFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.ch8")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}
