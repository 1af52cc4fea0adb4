// Package desktop implements a windowed frontend based on ebiten.
package desktop

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	windowTitle   = "retrochip8"
	overlayHeight = 20
	bytesPerPixel = 4
)

var (
	pixelOn      = [bytesPerPixel]byte{0xE0, 0xF0, 0xE0, 0xFF}
	pixelOff     = [bytesPerPixel]byte{0x10, 0x18, 0x10, 0xFF}
	overlayColor = color.RGBA{R: 0xFF, G: 0xC0, B: 0x40, A: 0xFF}
)

// Frontend renders the display into a window and reads the keypad from
// the keyboard.
type Frontend struct {
	logger *log.Logger
	scale  int
	tps    int
	debug  bool

	pixels []byte // RGBA framebuffer
	image  *ebiten.Image

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New returns a new desktop frontend.
func New(logger *log.Logger, opts options.Program) *Frontend {
	f := &Frontend{
		logger: logger,
		scale:  opts.Scale,
		tps:    opts.FramesPerSecond,
		debug:  opts.Debug,
		pixels: make([]byte, chip8.DisplaySize*bytesPerPixel),
	}
	_ = f.Render(make([]byte, chip8.DisplaySize))
	return f
}

// Run opens the window and executes the runner once per ebiten tick until
// the window is closed, the context is cancelled or the runner stops.
func (f *Frontend) Run(ctx context.Context, r *runner.Runner) error {
	width, height := f.screenSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetTPS(f.tps)

	g := &game{
		ctx:      ctx,
		frontend: f,
		runner:   r,
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return ctx.Err()
}

// PollInput reads the keypad state. It returns true if Escape was pressed or
// the window is being closed.
func (f *Frontend) PollInput(keys runner.KeySetter) bool {
	for key, ebitenKey := range keymap {
		_ = keys.SetKey(key, ebiten.IsKeyPressed(ebitenKey))
	}
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || ebiten.IsWindowBeingClosed()
}

// Render converts the display into the RGBA framebuffer shown by the next Draw.
func (f *Frontend) Render(display []byte) error {
	if len(display) != chip8.DisplaySize {
		return fmt.Errorf("unexpected display size %d", len(display))
	}

	for i, cell := range display {
		pixel := pixelOff
		if cell != 0 {
			pixel = pixelOn
		}
		copy(f.pixels[i*bytesPerPixel:], pixel[:])
	}
	return nil
}

// Close does nothing, the window is closed when Run returns.
func (f *Frontend) Close() error {
	return nil
}

func (f *Frontend) screenSize() (int, int) {
	width := chip8.DisplayWidth * f.scale
	height := chip8.DisplayHeight * f.scale
	if f.debug {
		height += overlayHeight
	}
	return width, height
}

func (f *Frontend) draw(screen *ebiten.Image, machine *chip8.Machine) {
	if f.image == nil {
		f.image = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}
	f.image.WritePixels(f.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(f.scale), float64(f.scale))
	screen.DrawImage(f.image, op)

	if f.debug {
		face := basicfont.Face7x13
		baselineY := chip8.DisplayHeight*f.scale + face.Ascent + 3
		text.Draw(screen, statusLine(machine), face, 4, baselineY, overlayColor)
	}
}

// copyState copies a register dump to the clipboard.
func (f *Frontend) copyState(machine *chip8.Machine) {
	f.clipboardOnce.Do(func() {
		f.clipboardOK = clipboard.Init() == nil
	})
	if !f.clipboardOK {
		f.logger.Warn("Clipboard is not available")
		return
	}

	clipboard.Write(clipboard.FmtText, []byte(machine.State().String()))
	f.logger.Info("Register dump copied to clipboard")
}

// statusLine returns the debug overlay text.
func statusLine(machine *chip8.Machine) string {
	state := machine.State()
	instruction := "-"
	high, errHigh := machine.ReadMemory(state.PC)
	low, errLow := machine.ReadMemory(state.PC + 1)
	if errHigh == nil && errLow == nil {
		instruction = chip8.Disassemble(uint16(high)<<8 | uint16(low))
	}

	return fmt.Sprintf("PC:%03X I:%03X SP:%X DT:%02X ST:%02X %s",
		state.PC, state.I, state.SP, state.DelayTimer, state.SoundTimer, instruction)
}

// game implements ebiten.Game.
type game struct {
	ctx      context.Context
	frontend *Frontend
	runner   *runner.Runner
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.frontend.copyState(g.runner.Machine())
	}

	stop, err := g.runner.Tick()
	if err != nil {
		return err
	}
	if stop {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.frontend.draw(screen, g.runner.Machine())
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.frontend.screenSize()
}
