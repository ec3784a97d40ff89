package agenda

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// Main is the command line entry point. Supported commands:
//
//	run            Start the directory server (default)
//	hash-password  Print the bcrypt hash of the argument, for configuration
//
// Flags override environment configuration, and -config overlays a YAML
// file on top of both.
func Main(ctx context.Context, args []string) error {
	flagSet := flag.NewFlagSet("agenda", flag.ContinueOnError)

	var (
		addr       = flagSet.String("addr", "", "Listen address (overrides AGENDA_ADDR)")
		configPath = flagSet.String("config", "", "Path to YAML config file")
		useMemory  = flagSet.Bool("mem", false, "Use the in-memory store instead of SurrealDB")
		debug      = flagSet.Bool("debug", false, "Enable debug logging")
	)

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	command := "run"
	if remaining := flagSet.Args(); len(remaining) > 0 {
		command = remaining[0]
	}

	if command == "hash-password" {
		if flagSet.NArg() < 2 {
			return fmt.Errorf("usage: agenda hash-password <password>")
		}
		hash, err := HashPassword(flagSet.Arg(1))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	}
	if command != "run" {
		return fmt.Errorf("unknown command %q", command)
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	config := ConfigFromEnv()
	if *configPath != "" {
		if err := LoadConfigFile(config, *configPath); err != nil {
			return err
		}
	}
	if *addr != "" {
		config.Addr = *addr
	}
	if *useMemory {
		config.UseMemoryStore = true
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, config, log)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
