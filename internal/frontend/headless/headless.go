// Package headless implements a frontend without any input or output device.
// The last rendered frame can be dumped as text after the execution.
package headless

import (
	"bufio"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
)

const (
	pixelOn  = '#'
	pixelOff = '.'
)

// Frontend keeps the last rendered frame.
type Frontend struct {
	display [chip8.DisplaySize]byte
	frames  int
}

// New returns a new headless frontend.
func New() *Frontend {
	return &Frontend{}
}

// PollInput never presses a key and never quits.
func (f *Frontend) PollInput(runner.KeySetter) bool {
	return false
}

// Render stores the frame.
func (f *Frontend) Render(display []byte) error {
	if len(display) != chip8.DisplaySize {
		return fmt.Errorf("unexpected display size %d", len(display))
	}
	copy(f.display[:], display)
	f.frames++
	return nil
}

// Close does nothing.
func (f *Frontend) Close() error {
	return nil
}

// Frames returns the number of rendered frames.
func (f *Frontend) Frames() int {
	return f.frames
}

// Dump writes the last frame as DisplayHeight lines of '#' for lit and '.'
// for dark pixels.
func (f *Frontend) Dump(w io.Writer) error {
	buf := bufio.NewWriter(w)
	line := make([]byte, chip8.DisplayWidth+1)
	line[chip8.DisplayWidth] = '\n'

	for y := range chip8.DisplayHeight {
		row := f.display[y*chip8.DisplayWidth : (y+1)*chip8.DisplayWidth]
		for x, pixel := range row {
			line[x] = pixelOff
			if pixel != 0 {
				line[x] = pixelOn
			}
		}
		if _, err := buf.Write(line); err != nil {
			return fmt.Errorf("writing display row: %w", err)
		}
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flushing display dump: %w", err)
	}
	return nil
}
