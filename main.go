// Package main implements the main entry point for a CHIP-8 interpreter
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/frontend/desktop"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Execution cancelled")
			return
		}
		logger.Error("Execution failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	program, err := loader.New(logger).Load(opts.Input)
	if err != nil {
		return err
	}

	frontendName := detector.New(logger).Detect(opts)
	logger.Info("Running CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(program)),
		log.String("frontend", frontendName))

	frontendLogger := config.FrontendLogger(opts, frontendName)
	machine := chip8.New(frontendLogger, chip8.WithQuirks(chip8.Quirks{
		LegacyShift: opts.LegacyShift,
	}))
	if err := machine.LoadProgram(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	var sound audio.Beeper = audio.Nop{}
	if frontendName != options.FrontendHeadless {
		sound = audio.New(frontendLogger, opts.Volume)
	}
	defer func() { _ = sound.Close() }()

	switch frontendName {
	case options.FrontendDesktop:
		frontend := desktop.New(frontendLogger, opts)
		r := runner.New(frontendLogger, machine, frontend, sound, opts)
		err = frontend.Run(ctx, r)
		r.LogSummary(logger)

	case options.FrontendTerminal:
		err = runTerminal(ctx, logger, frontendLogger, machine, sound, opts)

	case options.FrontendHeadless:
		frontend := headless.New()
		r := runner.New(frontendLogger, machine, frontend, sound, opts)
		err = r.RunUnpaced(ctx)
		r.LogSummary(logger)
		if err == nil {
			err = frontend.Dump(os.Stdout)
		}

	default:
		return fmt.Errorf("unsupported frontend '%s'", frontendName)
	}
	return err
}

// runTerminal runs the machine in the terminal, the terminal state is
// restored before the execution summary is logged.
func runTerminal(ctx context.Context, logger, frontendLogger *log.Logger, machine *chip8.Machine,
	beeper runner.Beeper, opts options.Program) error {

	frontend, err := terminal.New(frontendLogger)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	r := runner.New(frontendLogger, machine, frontend, beeper, opts)
	runErr := r.Run(ctx)

	if err := frontend.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing terminal: %w", err)
	}
	r.LogSummary(logger)
	return runErr
}

// printBanner prints application version information
func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}

	versionString := buildinfo.Version(version, commit, date)
	logger.Info("retrochip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
