package main

import (
	"fmt"
	"os"

	"github.com/percolate/pedantic"
	"github.com/percolate/pedantic/cmd/pedantic/commands"
	"github.com/percolate/pedantic/internal/cliutil"
)

// commandNames lists every top-level command, used for typo suggestions.
var commandNames = []string{"convert", "serve", "run", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		cliutil.Writef(os.Stdout, "pedantic v%s\n", pedantic.Version())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "convert":
		err = commands.HandleConvert(args)
	case "serve":
		err = commands.HandleServe(args)
	case "run":
		err = commands.HandleRun(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			cliutil.Writef(os.Stderr, "Did you mean '%s'?\n", s)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		cliutil.Writef(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// suggestCommand returns the command closest to input within an edit
// distance of 2, or "" when nothing is close enough.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`pedantic - RAML conversion and API fixture validation

Usage:
  pedantic <command> [options]

Commands:
  convert     Convert a RAML document to JSON
  serve       Serve the fixture validator for a converted schema
  run         Fetch, convert and cache a RAML document, then serve the validator
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  pedantic convert index.raml schema.json
  pedantic serve --whitelist=whitelist.json schema.json
  pedantic run --port=8080 https://example.com/api/index.raml

Run 'pedantic <command> --help' for more information on a command.`)
}
