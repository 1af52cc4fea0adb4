// Package runner drives the interpreter from the host side: it polls input,
// executes a frame worth of cycles, forwards beeps and renders the display.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// KeySetter receives the key state collected by a frontend.
type KeySetter interface {
	SetKey(key int, pressed bool) error
}

// Frontend presents the machine to the user.
type Frontend interface {
	// PollInput updates the key state and returns whether the user asked to quit.
	PollInput(keys KeySetter) (quit bool)
	// Render presents the framebuffer, one byte of 0 or 1 per pixel in row-major order.
	Render(display []byte) error
	Close() error
}

// Beeper plays a tone when the sound timer expires.
type Beeper interface {
	Beep()
}

// Runner executes the machine frame by frame.
type Runner struct {
	logger   *log.Logger
	machine  *chip8.Machine
	frontend Frontend
	beeper   Beeper

	cyclesPerFrame  int
	framesPerSecond int
	maxCycles       uint64
	trace           bool

	frames         uint64
	unknownOpcodes set.Set[uint16]
}

// New creates a new runner for the given machine and frontend.
func New(logger *log.Logger, machine *chip8.Machine, frontend Frontend, beeper Beeper, opts options.Program) *Runner {
	return &Runner{
		logger:   logger,
		machine:  machine,
		frontend: frontend,
		beeper:   beeper,

		cyclesPerFrame:  opts.CyclesPerFrame(),
		framesPerSecond: max(opts.FramesPerSecond, 1),
		maxCycles:       opts.MaxCycles,
		trace:           opts.Trace,

		unknownOpcodes: set.New[uint16](),
	}
}

// Machine returns the machine executed by the runner.
func (r *Runner) Machine() *chip8.Machine {
	return r.machine
}

// Run executes frames at the configured frame rate until the context is
// cancelled, the frontend asks to quit or the cycle limit is reached.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.framesPerSecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		stop, err := r.Tick()
		if err != nil || stop {
			return err
		}
	}
}

// RunUnpaced executes frames as fast as possible, used when nobody watches
// the output.
func (r *Runner) RunUnpaced(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		stop, err := r.Tick()
		if err != nil || stop {
			return err
		}
	}
}

// Tick runs a single frame: input is polled, the cycles of the frame are
// executed and the display is rendered if it changed. It returns true if
// the execution should stop.
func (r *Runner) Tick() (bool, error) {
	if r.frontend.PollInput(r.machine) {
		r.logger.Debug("Quit requested by frontend")
		return true, nil
	}

	limitReached := r.Frame()

	if r.machine.PollDisplayChanged() {
		if err := r.frontend.Render(r.machine.Display()); err != nil {
			return true, fmt.Errorf("rendering display: %w", err)
		}
	}
	return limitReached, nil
}

// Frame executes the cycles of one frame. It returns true once the cycle
// limit is reached.
func (r *Runner) Frame() bool {
	r.frames++
	for range r.cyclesPerFrame {
		if r.limitReached() {
			return true
		}
		r.step()
	}
	return r.limitReached()
}

// LogSummary logs the execution counters to the given logger. Frontends
// that own the screen run with a quieter logger than the summary needs.
func (r *Runner) LogSummary(logger *log.Logger) {
	stats := r.machine.Stats()
	logger.Info("Execution finished",
		log.Int("cycles", int(stats.Cycles)),
		log.Int("frames", int(r.frames)),
		log.Int("beeps", int(stats.Beeps)),
		log.Int("faults", int(stats.Faults)),
		log.Int("unknown_opcodes", len(r.unknownOpcodes)))
}

func (r *Runner) limitReached() bool {
	return r.maxCycles > 0 && r.machine.Stats().Cycles >= r.maxCycles
}

func (r *Runner) step() {
	result := r.machine.Step()

	if r.trace && result.Instruction != nil {
		r.logger.Debug("Step",
			log.Hex("pc", result.PC),
			log.Hex("opcode", result.Opcode),
			log.String("instruction", chip8.Disassemble(result.Opcode)))
	}

	if result.Beep {
		r.beeper.Beep()
	}

	if result.Fault != nil {
		r.handleFault(result.Fault)
	}
}

// handleFault warns once about every distinct unknown opcode, other faults
// are only logged at debug level by the machine.
func (r *Runner) handleFault(fault *chip8.Fault) {
	if !errors.Is(fault, chip8.ErrUnknownOpcode) {
		return
	}
	if r.unknownOpcodes.Contains(fault.Opcode) {
		return
	}
	r.unknownOpcodes.Add(fault.Opcode)

	r.logger.Warn("Unknown opcode",
		log.Hex("opcode", fault.Opcode),
		log.Hex("pc", fault.PC))
}
