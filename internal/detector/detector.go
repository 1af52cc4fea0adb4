// Package detector handles frontend detection.
package detector

import (
	"os"
	"runtime"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Detector selects the frontend from options and the environment of the process.
type Detector struct {
	logger *log.Logger

	goos       string
	getenv     func(string) string
	isTerminal func() bool
}

// New creates a new frontend detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger:     logger,
		goos:       runtime.GOOS,
		getenv:     os.Getenv,
		isTerminal: stdoutIsTerminal,
	}
}

// Detect determines the frontend to use. An explicitly specified frontend
// wins, a cycle limit selects the headless frontend. Otherwise the terminal
// frontend is used when no graphical display is available and stdout is a
// terminal, falling back to the desktop frontend.
func (d *Detector) Detect(opts options.Program) string {
	if opts.Frontend != "" {
		return opts.Frontend
	}

	frontend := d.detectFromEnvironment(opts)
	d.logger.Debug("Auto-detected frontend",
		log.String("frontend", frontend),
		log.String("os", d.goos))
	return frontend
}

func (d *Detector) detectFromEnvironment(opts options.Program) string {
	switch {
	case opts.MaxCycles > 0:
		return options.FrontendHeadless
	case !d.hasDisplay() && d.isTerminal():
		return options.FrontendTerminal
	default:
		return options.FrontendDesktop
	}
}

// hasDisplay returns whether a graphical session is available. Only X11 and
// Wayland based systems can run without one.
func (d *Detector) hasDisplay() bool {
	switch d.goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return d.getenv("DISPLAY") != "" || d.getenv("WAYLAND_DISPLAY") != ""
	default:
		return true
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
