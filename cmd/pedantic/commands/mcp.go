package commands

import (
	"os"

	"github.com/percolate/pedantic/internal/cliutil"
	"github.com/percolate/pedantic/internal/mcpserver"
)

// HandleMCP runs the MCP server over stdio until the client disconnects.
func HandleMCP(args []string) error {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		printMCPUsage()
		return nil
	}
	ctx, stop := signalContext()
	defer stop()
	return mcpserver.Run(ctx)
}

func printMCPUsage() {
	cliutil.Writef(os.Stderr, "Usage: pedantic mcp\n\n")
	cliutil.Writef(os.Stderr, "Run the MCP server over stdio, exposing the convert_raml and\n")
	cliutil.Writef(os.Stderr, "validate_fixture tools. Configure it with PEDANTIC_* environment variables.\n")
}
