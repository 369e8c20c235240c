package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"subpub/config"
	"subpub/internal"
	"subpub/runtime"
	"subpub/runtime/workers"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const version = "0.0.1"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the pipeline and blocks until SIGINT or SIGTERM.
// Returning the error lets deferred cleanups run before main exits.
func run(args []string) error {
	// 1. Flags
	f, err := parseFlags(flag.NewFlagSet("subpub", flag.ContinueOnError), args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if f.version {
		fmt.Println(version)
		return nil
	}

	// 2. Configuration & Logger
	// A missing .env file is fine, the environment alone is enough
	_ = godotenv.Load()
	var cfg internal.Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if f.configFile != "" {
		cfg.ConfigFile = f.configFile
	}
	var logfile io.Writer
	if f.logFile != "" {
		file, err := openLogfile(f.logFile)
		if err != nil {
			return err
		}
		defer file.Close()
		logfile = file
	}
	log := internal.NewLogger(cfg.Verbosity(int(f.verbose), int(f.quiet)), logfile)
	if logfile != nil {
		log.Debug("Logging to file", "path", f.logFile)
	}

	// 3. Pipeline
	pipeline, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return err
	}
	log.Info("Using pipeline file", "path", cfg.ConfigFile)

	checks, bindings, err := runtime.NewLoader(log, os.Stdout, cfg.Colours).Load(pipeline)
	if err != nil {
		return fmt.Errorf("loading pipeline: %w", err)
	}
	defer runtime.Close(checks)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Run the engine under supervision until interrupted
	engine := runtime.NewEngine(log, cfg.TickInterval, checks, bindings)
	workers.NewSupervisor(log, cfg.RestartInterval).Add(engine).Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}

func openLogfile(path string) (*os.File, error) {
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening logfile: %w", err)
	}
	return file, nil
}
