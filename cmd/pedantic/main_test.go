package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"conert", "convert"},
		{"convrt", "convert"},
		{"serv", "serve"},
		{"sever", "serve"},
		{"rnu", "run"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far, no suggestion
		{"xyz", ""},
		{"foobar", ""},
		{"conversion", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestCommand(tt.input))
		})
	}
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("run", "run"))
	assert.Equal(t, 3, editDistance("", "run"))
	assert.Equal(t, 1, editDistance("serve", "serv"))
	assert.Equal(t, 2, editDistance("mpc", "mcp"))
}
