// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendDesktop  = "desktop"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Default emulation settings.
const (
	DefaultCyclesPerSecond = 600
	DefaultFramesPerSecond = 60
	DefaultScale           = 10
	DefaultVolume          = 0.2
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"frontend" usage:"frontend to use: desktop, terminal, headless (default: auto-detect)"`
	Debug    bool   `flag:"debug" usage:"enable debug logging and the debug overlay"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction"`
}

// Emulation contains options controlling the machine and its pacing.
type Emulation struct {
	CyclesPerSecond int     `flag:"cps" usage:"instructions executed per second" default:"600"`
	FramesPerSecond int     `flag:"fps" usage:"display and input refresh rate" default:"60"`
	MaxCycles       uint64  `flag:"cycles" usage:"stop after this many cycles, selects headless frontend if set"`
	Scale           int     `flag:"scale" usage:"desktop window scale factor" default:"10"`
	LegacyShift     bool    `flag:"legacy-shift" usage:"set VF to bit 4 of Vx on left shift"`
	Volume          float64 `flag:"volume" usage:"beep volume between 0 and 1, 0 disables audio" default:"0.2"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	Emulation
}

// CyclesPerFrame returns the number of cycles to execute for every frame.
// At least one cycle is executed per frame.
func (e Emulation) CyclesPerFrame() int {
	if e.FramesPerSecond <= 0 {
		return max(e.CyclesPerSecond, 1)
	}
	return max(e.CyclesPerSecond/e.FramesPerSecond, 1)
}
