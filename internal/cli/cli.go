// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
)

var validFrontends = []string{options.FrontendDesktop, options.FrontendTerminal, options.FrontendHeadless}

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the error message, if any, and the usage help of all flags.
func (e *UsageError) ShowUsage() {
	e.writeUsage(os.Stdout)
}

func (e *UsageError) writeUsage(w io.Writer) {
	if e.msg != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", e.msg)
	}
	_, _ = fmt.Fprintf(w, "usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(w)
		e.flags.PrintDefaults()
	}
	_, _ = fmt.Fprintln(w)
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if opts.Frontend != "" && !slices.Contains(validFrontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(validFrontends, ", "))
	}

	switch {
	case opts.CyclesPerSecond <= 0:
		return fmt.Errorf("invalid cycles per second %d, must be positive", opts.CyclesPerSecond)
	case opts.FramesPerSecond <= 0:
		return fmt.Errorf("invalid frames per second %d, must be positive", opts.FramesPerSecond)
	case opts.Scale <= 0:
		return fmt.Errorf("invalid scale %d, must be positive", opts.Scale)
	case opts.Volume < 0 || opts.Volume > 1:
		return fmt.Errorf("invalid volume %.2f, must be between 0 and 1", opts.Volume)
	}

	// trace output is logged at debug level
	if opts.Trace {
		opts.Debug = true
	}

	if opts.Frontend == options.FrontendHeadless && opts.MaxCycles == 0 {
		return fmt.Errorf("headless frontend requires a cycle limit set by -cycles")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Frontend, "frontend", "", "frontend to use (desktop/terminal/headless), auto-detected if not set")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging and the debug overlay")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")

	flags.IntVar(&opts.CyclesPerSecond, "cps", options.DefaultCyclesPerSecond, "instructions executed per second")
	flags.IntVar(&opts.FramesPerSecond, "fps", options.DefaultFramesPerSecond, "display and input refresh rate")
	flags.Uint64Var(&opts.MaxCycles, "cycles", 0, "stop after this many cycles and print the display, implies -frontend headless")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window scale factor of the desktop frontend")
	flags.BoolVar(&opts.LegacyShift, "legacy-shift", false, "set VF to bit 4 of Vx on left shift instead of the shifted out bit")
	flags.Float64Var(&opts.Volume, "volume", options.DefaultVolume, "beep volume between 0 and 1, 0 disables audio")
}
