package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/validator"
)

type validateFixtureInput struct {
	Schema    *schemaInput   `json:"schema,omitempty"    jsonschema:"The converted JSON schema. Mutually exclusive with raml."`
	RAML      *ramlInput     `json:"raml,omitempty"      jsonschema:"A RAML document to convert before validating. Mutually exclusive with schema."`
	Fixture   map[string]any `json:"fixture"             jsonschema:"The fixture object: path_info, method, query_string, request, status_code, response"`
	Whitelist string         `json:"whitelist,omitempty" jsonschema:"Inline whitelist (JSON or YAML list of {path, method, code} entries)"`
}

type validateFixtureOutput struct {
	Valid       bool   `json:"valid"`
	Whitelisted bool   `json:"whitelisted,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Error       string `json:"error,omitempty"`
	Report      string `json:"report,omitempty"`
}

func handleValidateFixture(ctx context.Context, _ *mcp.CallToolRequest, input validateFixtureInput) (*mcp.CallToolResult, validateFixtureOutput, error) {
	schema, err := input.loadSchema(ctx)
	if err != nil {
		return errResult(err), validateFixtureOutput{}, nil
	}

	var whitelist validator.Whitelist
	if input.Whitelist != "" {
		if whitelist, err = validator.ParseWhitelist([]byte(input.Whitelist)); err != nil {
			return errResult(err), validateFixtureOutput{}, nil
		}
	}

	if input.Fixture == nil {
		return errResult(errors.New("fixture is required")), validateFixtureOutput{}, nil
	}
	fixture, err := validator.ParseFixture(input.Fixture)
	if err != nil {
		// A malformed fixture is a validation outcome, not a tool failure.
		return nil, validateFixtureOutput{Error: err.Error()}, nil
	}

	result, err := validator.New(schema, whitelist).Check(fixture)
	var sve *pedanticerrors.SchemaValidationError
	switch {
	case err == nil:
		return nil, validateFixtureOutput{
			Valid:       true,
			Whitelisted: result.Whitelisted,
			Warning:     result.Warning,
		}, nil
	case errors.As(err, &sve):
		return nil, validateFixtureOutput{Error: "schema validation failed", Report: sve.Report}, nil
	case errors.Is(err, pedanticerrors.ErrUndefinedSchema):
		return nil, validateFixtureOutput{Error: err.Error()}, nil
	default:
		return errResult(err), validateFixtureOutput{}, nil
	}
}

func (in validateFixtureInput) loadSchema(ctx context.Context) (map[string]any, error) {
	switch {
	case in.Schema != nil && in.RAML != nil:
		return nil, errors.New("schema and raml are mutually exclusive")
	case in.Schema != nil:
		return in.Schema.load()
	case in.RAML != nil:
		result, err := in.RAML.convert(ctx, converter.New(), "")
		if err != nil {
			return nil, err
		}
		return validator.LoadSchema(result.Output)
	default:
		return nil, fmt.Errorf("one of schema or raml must be provided")
	}
}
