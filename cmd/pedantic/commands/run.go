package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/internal/cliutil"
	"github.com/percolate/pedantic/internal/config"
	"github.com/percolate/pedantic/internal/schemacache"
	"github.com/percolate/pedantic/internal/service"
	"github.com/percolate/pedantic/raml"
	"github.com/percolate/pedantic/validator"
)

// RunFlags contains flags for the run command
type RunFlags struct {
	Whitelist string
	Port      int
}

// SetupRunFlags creates and configures a FlagSet for the run command.
func SetupRunFlags(cfg *config.Config) (*flag.FlagSet, *RunFlags) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	flags := &RunFlags{}

	fs.StringVar(&flags.Whitelist, "whitelist", "", "URL of a JSON or YAML whitelist")
	fs.IntVar(&flags.Port, "port", cfg.Port, "listen port")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: pedantic run [--whitelist=URL] [--port=N] <raml_url>\n\n")
		cliutil.Writef(fs.Output(), "Fetch and convert a RAML document, then serve the fixture validator.\n")
		cliutil.Writef(fs.Output(), "Converted schemas are cached for PEDANTIC_CACHE_TTL in PEDANTIC_CACHE_DIR,\n")
		cliutil.Writef(fs.Output(), "or in Redis when PEDANTIC_REDIS_ADDR is set.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  pedantic run https://example.com/api/index.raml\n")
		cliutil.Writef(fs.Output(), "  pedantic run --whitelist=https://example.com/api/whitelist.json --port=8080 https://example.com/api/index.raml\n")
	}

	return fs, flags
}

// HandleRun executes the run command
func HandleRun(args []string) error {
	ctx, stop := signalContext()
	defer stop()
	return runRun(ctx, config.Load(), args, os.Stderr)
}

func runRun(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs, flags := SetupRunFlags(cfg)
	fs.SetOutput(stderr)

	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("run command requires exactly one RAML URL: %w", errUsage)
	}

	log := newLogger(cfg, stderr)
	v, cleanup, err := prepareRun(ctx, cfg, fs.Arg(0), flags.Whitelist, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return service.NewServer(v, log).ListenAndServe(ctx, listenAddr(flags.Port))
}

// prepareRun loads the converted schema through the cache and downloads the
// whitelist. cleanup releases the cache store.
func prepareRun(ctx context.Context, cfg *config.Config, ramlURL, whitelistURL string, log raml.Logger) (*validator.Validator, func(), error) {
	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	conv := converter.New()
	conv.Logger = log
	conv.ParserOptions = []raml.Option{raml.WithHTTPClient(httpClient)}

	cache := &schemacache.Cache{Store: store, Converter: conv, Logger: log}
	schema, err := cache.Schema(ctx, ramlURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	whitelistPath := ""
	if whitelistURL != "" {
		whitelistPath = filepath.Join(cfg.CacheDir, schemacache.Key(whitelistURL)+".json")
		fetcher := schemacache.NewFetcher()
		fetcher.HTTPClient = httpClient
		fetcher.Logger = log
		if err := fetcher.Fetch(ctx, whitelistURL, whitelistPath); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("downloading whitelist: %w", err)
		}
	}

	v, err := newValidator(schema, whitelistPath, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return v, cleanup, nil
}

func openStore(ctx context.Context, cfg *config.Config, log raml.Logger) (schemacache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return schemacache.NewFileStore(cfg.CacheDir, cfg.CacheTTL), func() {}, nil
	}
	store, err := schemacache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis schema cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}, nil
}
