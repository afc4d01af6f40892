package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/internal/cliutil"
	"github.com/percolate/pedantic/internal/config"
)

// ConvertFlags contains flags for the convert command
type ConvertFlags struct {
	Quiet    bool
	KeepDocs bool
	Verbose  bool
}

// SetupConvertFlags creates and configures a FlagSet for the convert command.
// Returns the FlagSet and a ConvertFlags struct with bound flag variables.
func SetupConvertFlags() (*flag.FlagSet, *ConvertFlags) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	flags := &ConvertFlags{}

	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no status message on success")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no status message on success")
	fs.BoolVar(&flags.KeepDocs, "keep-docs", false, "keep the top-level documentation key")
	fs.BoolVar(&flags.Verbose, "v", false, "log include resolution and timing to stderr")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: pedantic convert [flags] <ramlPath> <jsonPath>\n\n")
		cliutil.Writef(fs.Output(), "Convert a RAML document (file or URL) to JSON. The top-level\n")
		cliutil.Writef(fs.Output(), "documentation key is removed and the output is indented by two spaces.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  pedantic convert index.raml schema.json\n")
		cliutil.Writef(fs.Output(), "  pedantic convert -q https://example.com/api/index.raml schema.json\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Conversion successful\n")
		cliutil.Writef(fs.Output(), "  1    Missing arguments, or the document could not be loaded or written\n")
	}

	return fs, flags
}

// HandleConvert executes the convert command
func HandleConvert(args []string) error {
	return runConvert(context.Background(), args, os.Stderr)
}

func runConvert(ctx context.Context, args []string, stderr io.Writer) error {
	fs, flags := SetupConvertFlags()
	fs.SetOutput(stderr)

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("convert command requires <ramlPath> and <jsonPath>: %w", errUsage)
	}
	src, dst := fs.Arg(0), fs.Arg(1)

	c := converter.New()
	if flags.KeepDocs {
		c.StripKeys = []string{}
	}
	if flags.Verbose {
		cfg := config.Load()
		cfg.LogLevel = slog.LevelDebug
		c.Logger = newLogger(cfg, stderr)
	}

	result, err := c.Convert(ctx, src, dst)
	if err != nil {
		return err
	}
	if flags.Verbose {
		c.Logger.Info("conversion complete",
			"raml_version", result.RAMLVersion,
			"includes", result.IncludeCount,
			"load_time", result.LoadTime)
	}

	cliutil.Reporter{W: stderr, Quiet: flags.Quiet}.Printf("Converted RAML to JSON in '%s'.\n", dst)
	return nil
}
