package service

import (
	"io"
	"log/slog"

	"github.com/percolate/pedantic/raml"
)

func newBufferLogger(w io.Writer) raml.Logger {
	return raml.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
