// Package cliutil provides output helpers shared by the pedantic commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// Reporter writes human-facing status lines. Quiet mode and a nil writer
// suppress all output.
type Reporter struct {
	W     io.Writer
	Quiet bool
}

// Printf writes one status line unless the reporter is quiet.
func (r Reporter) Printf(format string, args ...any) {
	if r.Quiet || r.W == nil {
		return
	}
	Writef(r.W, format, args...)
}
