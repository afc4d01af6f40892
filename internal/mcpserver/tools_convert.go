package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/percolate/pedantic/converter"
)

type convertInput struct {
	RAML     ramlInput `json:"raml"                jsonschema:"The RAML document to convert"`
	Output   string    `json:"output,omitempty"    jsonschema:"File path to write the JSON document. If omitted the document is returned inline."`
	KeepDocs bool      `json:"keep_docs,omitempty" jsonschema:"Keep the top-level documentation key"`
}

type convertOutput struct {
	RAMLVersion  string   `json:"raml_version"`
	StrippedKeys []string `json:"stripped_keys,omitempty"`
	IncludeCount int      `json:"include_count"`
	WrittenTo    string   `json:"written_to,omitempty"`
	Document     string   `json:"document,omitempty"`
}

func handleConvertRAML(ctx context.Context, _ *mcp.CallToolRequest, input convertInput) (*mcp.CallToolResult, convertOutput, error) {
	c := converter.New()
	if input.KeepDocs {
		c.StripKeys = []string{}
	}

	result, err := input.RAML.convert(ctx, c, input.Output)
	if err != nil {
		return errResult(err), convertOutput{}, nil
	}

	output := convertOutput{
		RAMLVersion:  result.RAMLVersion,
		StrippedKeys: result.StrippedKeys,
		IncludeCount: result.IncludeCount,
		WrittenTo:    result.OutputPath,
	}
	if input.Output == "" {
		output.Document = string(result.Output)
	}
	return nil, output, nil
}
