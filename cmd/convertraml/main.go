// Command convertraml converts index.raml in the working directory to
// schema.json.
package main

import (
	"context"
	"io"
	"os"

	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/internal/cliutil"
)

const (
	sourceFile = "index.raml"
	outputFile = "schema.json"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run converts sourceFile to outputFile and reports the outcome. The error
// has already been reported when it is returned.
func run(ctx context.Context, stdout, stderr io.Writer) error {
	if _, err := converter.ConvertFile(ctx, sourceFile, outputFile); err != nil {
		cliutil.Writef(stderr, "Error parsing: %v\n", err)
		return err
	}
	cliutil.Writef(stdout, "Converted RAML to JSON in '%s'.\n", outputFile)
	return nil
}
