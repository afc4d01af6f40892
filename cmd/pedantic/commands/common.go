// Package commands provides CLI command handlers for pedantic.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/percolate/pedantic/internal/config"
	"github.com/percolate/pedantic/raml"
	"github.com/percolate/pedantic/validator"
)

// errUsage is returned after a command printed its usage for bad arguments.
var errUsage = errors.New("invalid arguments")

// parseFlags parses args and reports whether the command should continue.
// --help is not an error.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// newLogger builds the structured logger for a command.
func newLogger(cfg *config.Config, w io.Writer) raml.Logger {
	return raml.NewSlogAdapter(cfg.NewLogger(w))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newValidator builds a validator from a converted schema and an optional
// whitelist file.
func newValidator(schema []byte, whitelistPath string, log raml.Logger) (*validator.Validator, error) {
	doc, err := validator.LoadSchema(schema)
	if err != nil {
		return nil, err
	}
	var whitelist validator.Whitelist
	if whitelistPath != "" {
		if whitelist, err = config.LoadWhitelist(whitelistPath); err != nil {
			return nil, err
		}
		log.Info("whitelist loaded", "path", whitelistPath, "entries", len(whitelist))
	}
	v := validator.New(doc, whitelist)
	v.Logger = log
	return v, nil
}

func listenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
