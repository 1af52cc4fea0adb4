// Package terminal implements a frontend rendering the display with block
// characters in a terminal and reading the keypad from stdin in raw mode.
package terminal

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03

	// terminals do not report key releases, a pressed key is held for this
	// many frames after its last key press or repeat.
	latchFrames = 8

	chunkBuffer = 64
)

// ANSI control sequences.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// keymap maps the left side of a QWERTY keyboard onto the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keymap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Frontend is a terminal frontend.
type Frontend struct {
	logger  *log.Logger
	out     io.Writer
	console *console

	chunks chan []byte
	latch  [chip8.NumKeys]int
	quit   bool
	frame  bytes.Buffer
}

// New switches the terminal to raw mode and starts reading key presses.
// Close has to be called to restore the terminal.
func New(logger *log.Logger) (*Frontend, error) {
	f := newFrontend(logger, os.Stdout)

	console, err := openConsole(os.Stdin, f.chunks)
	if err != nil {
		return nil, err
	}
	f.console = console

	if _, err := io.WriteString(f.out, clearScreen+hideCursor); err != nil {
		_ = console.close()
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	return f, nil
}

func newFrontend(logger *log.Logger, out io.Writer) *Frontend {
	return &Frontend{
		logger: logger,
		out:    out,
		chunks: make(chan []byte, chunkBuffer),
	}
}

// PollInput processes all input read since the last call and updates the
// key state of the machine.
func (f *Frontend) PollInput(keys runner.KeySetter) bool {
	for drained := false; !drained; {
		select {
		case chunk := <-f.chunks:
			f.handleInput(chunk)
		default:
			drained = true
		}
	}

	for key := range f.latch {
		_ = keys.SetKey(key, f.latch[key] > 0)
		if f.latch[key] > 0 {
			f.latch[key]--
		}
	}
	return f.quit
}

// handleInput processes one read from stdin. A lone escape byte is the
// escape key, escape sequences of cursor or function keys are ignored.
func (f *Frontend) handleInput(chunk []byte) {
	if len(chunk) > 1 && chunk[0] == keyEscape {
		return
	}

	for _, b := range chunk {
		switch b {
		case keyEscape, keyCtrlC:
			f.quit = true
			continue
		}

		key, ok := keymap[toLower(b)]
		if !ok {
			continue
		}
		f.latch[key] = latchFrames
		f.logger.Debug("Key pressed", log.Int("key", key))
	}
}

// Render draws the display using half block characters, every text line
// shows two display rows.
func (f *Frontend) Render(display []byte) error {
	if len(display) != chip8.DisplaySize {
		return fmt.Errorf("unexpected display size %d", len(display))
	}

	f.frame.Reset()
	f.frame.WriteString(cursorHome)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		top := display[y*chip8.DisplayWidth : (y+1)*chip8.DisplayWidth]
		bottom := display[(y+1)*chip8.DisplayWidth : (y+2)*chip8.DisplayWidth]
		for x := range chip8.DisplayWidth {
			f.frame.WriteRune(halfBlock(top[x] != 0, bottom[x] != 0))
		}
		// raw mode does not translate newlines
		f.frame.WriteString("\r\n")
	}

	if _, err := f.out.Write(f.frame.Bytes()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Close restores the terminal.
func (f *Frontend) Close() error {
	if _, err := io.WriteString(f.out, showCursor); err != nil {
		return fmt.Errorf("restoring cursor: %w", err)
	}
	if f.console == nil {
		return nil
	}
	return f.console.close()
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
