// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes pedantic capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/percolate/pedantic"
)

const serverInstructions = `pedantic MCP server. Converts RAML API descriptions to JSON and validates recorded API fixtures against the converted schema.

Configuration: defaults are configurable via PEDANTIC_* environment variables set in your MCP client config.

Key settings:
- PEDANTIC_MAX_INLINE_SIZE (default: 10MB) - maximum size of inline RAML or schema content
- PEDANTIC_ALLOW_PRIVATE_IPS (default: false) - allow fetching RAML from private, loopback and link-local addresses
- PEDANTIC_HTTP_TIMEOUT (default: 30s) - timeout for remote RAML documents and includes

Caching: Converted schemas passed to validate_fixture are cached per session. File entries use path+mtime as key, content entries a SHA-256 hash.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := newServer()
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "pedantic", Version: pedantic.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_raml",
		Description: "Convert a RAML 0.8 API description to JSON. Resolves !include directives, applies resource types and traits, and removes the top-level documentation key. Provide exactly one of file, url, or content. Use output to write the JSON to a file instead of returning it inline.",
	}, handleConvertRAML)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_fixture",
		Description: "Validate a recorded API fixture (path_info, method, query_string, request, status_code, response) against a converted RAML schema. Provide the schema as a converted JSON file or content, or a RAML document to convert first. An optional whitelist exempts endpoints the schema does not describe.",
	}, handleValidateFixture)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
