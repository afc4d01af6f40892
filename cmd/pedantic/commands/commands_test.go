package commands

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/percolate/pedantic/internal/config"
)

const apiRAML = `#%RAML 0.8
title: Widgets
documentation:
  - title: Intro
    content: Removed on conversion.
/widgets:
  get:
    responses:
      200:
        body:
          application/json:
            schema: |
              {"type": "object", "properties": {"id": {"type": "integer"}}}
`

// testConfig returns a quiet configuration caching in a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		CacheTTL:    config.DefaultCacheTTL,
		CacheDir:    t.TempDir(),
		LogLevel:    slog.LevelError,
		LogFormat:   "text",
		HTTPTimeout: config.DefaultHTTPTimeout,
	}
}

// newAPIServer serves apiRAML at /index.raml and whitelist at
// /whitelist.json, counting RAML requests.
func newAPIServer(t *testing.T, whitelist string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	mux := http.NewServeMux()
	mux.HandleFunc("/index.raml", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(apiRAML))
	})
	mux.HandleFunc("/whitelist.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(whitelist))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hits
}
