package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/percolate/pedantic/internal/cliutil"
	"github.com/percolate/pedantic/internal/config"
	"github.com/percolate/pedantic/internal/service"
)

// ServeFlags contains flags for the serve command
type ServeFlags struct {
	Whitelist string
	Port      int
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
// The port defaults to PORT from the environment.
func SetupServeFlags(cfg *config.Config) (*flag.FlagSet, *ServeFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags := &ServeFlags{}

	fs.StringVar(&flags.Whitelist, "whitelist", "", "JSON or YAML whitelist file")
	fs.IntVar(&flags.Port, "port", cfg.Port, "listen port")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: pedantic serve [--whitelist=FILE] [--port=N] SCHEMA_PATH\n\n")
		cliutil.Writef(fs.Output(), "Serve the fixture validator for an already converted schema.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nEndpoints:\n")
		cliutil.Writef(fs.Output(), "  POST /          validate a fixture (Content-Type: application/json)\n")
		cliutil.Writef(fs.Output(), "  GET  /healthz   liveness\n")
		cliutil.Writef(fs.Output(), "  GET  /metrics   Prometheus metrics\n")
	}

	return fs, flags
}

// HandleServe executes the serve command
func HandleServe(args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return runServe(ctx, config.Load(), args, os.Stderr)
}

func runServe(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs, flags := SetupServeFlags(cfg)
	fs.SetOutput(stderr)

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("serve command requires exactly one SCHEMA_PATH: %w", errUsage)
	}

	log := newLogger(cfg, stderr)
	schemaPath := fs.Arg(0)
	data, err := os.ReadFile(schemaPath) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	v, err := newValidator(data, flags.Whitelist, log)
	if err != nil {
		return err
	}
	log.Info("schema loaded", "path", schemaPath)

	return service.NewServer(v, log).ListenAndServe(ctx, listenAddr(flags.Port))
}
