package mcpserver

// petsRAML is a small RAML document shared by the tool tests.
const petsRAML = `#%RAML 0.8
title: Pets
baseUri: http://localhost/api
documentation:
  - title: Intro
    content: Not part of the schema.
/pets:
  get:
    queryParameters:
      limit:
        type: integer
    responses:
      200:
        body:
          application/json:
            schema: |
              {"type": "object", "properties": {"name": {"type": "string"}}, "additionalProperties": false}
`

func petFixture() map[string]any {
	return map[string]any{
		"path_info":    "/pets",
		"method":       "GET",
		"query_string": "limit=5",
		"status_code":  200,
		"response":     map[string]any{"name": "rex"},
	}
}
