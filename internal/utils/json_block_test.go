package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "object surrounded by prose",
			input: "Here you go:\n{\"a\": 1, \"b\": {\"c\": 2}}\nThanks.",
			want:  `{"a": 1, "b": {"c": 2}}`,
			found: true,
		},
		{
			name:  "no braces at all",
			input: "I could not find any invoice data.",
			found: false,
		},
		{
			name:  "first group is not JSON",
			input: "Template {name} was used. Result: {\"name\": \"ACME\"}",
			want:  `{"name": "ACME"}`,
			found: true,
		},
		{
			name:  "first of two valid objects wins",
			input: `{"first": true} and {"second": true}`,
			want:  `{"first": true}`,
			found: true,
		},
		{
			name:  "braces inside strings do not count",
			input: `Answer: {"note": "use } and { freely", "ok": 1} done`,
			want:  `{"note": "use } and { freely", "ok": 1}`,
			found: true,
		},
		{
			name:  "stray closing brace before the object",
			input: "} oops {\"x\": [1, 2, 3]}",
			want:  `{"x": [1, 2, 3]}`,
			found: true,
		},
		{
			name:  "stray quote in an earlier prose group",
			input: "I used {curly \"quotes} style. Result: {\"a\": 1}",
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "null is not an object",
			input: "Result: {null} then nothing",
			found: false,
		},
		{
			name:  "unbalanced object",
			input: `{"a": {"b": 1}`,
			found: false,
		},
		{
			name:  "fenced code block",
			input: "```json\n{\"invoices\": [{\"invoice_number\": \"INV-1\"}]}\n```",
			want:  `{"invoices": [{"invoice_number": "INV-1"}]}`,
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONObject(t *testing.T) {
	obj, err := DecodeJSONObject(`{"n": 9999999999999999, "s": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9999999999999999"), obj["n"])
	assert.Equal(t, "x", obj["s"])

	for _, input := range []string{"", "null", "[1]", `{"a": 1} trailing`, `{"a": 1}{"b": 2}`, `{"a":`} {
		_, err := DecodeJSONObject(input)
		assert.Error(t, err, input)
	}

	_, err = DecodeJSONObject("  {\"a\": 1}\n ")
	assert.NoError(t, err)
}
