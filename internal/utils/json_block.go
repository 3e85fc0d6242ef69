package utils

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var errNotObject = errors.New("not a JSON object")

// ExtractJSONBlock scans text left to right for the first balanced top-level
// {...} span that parses as a JSON object. Spans that do not parse are skipped
// and scanning resumes after them. Braces inside JSON strings are ignored; if
// that finds nothing, the text is scanned again counting every brace.
func ExtractJSONBlock(text string) (string, bool) {
	if block, ok := scanJSONBlock(text, true); ok {
		return block, true
	}
	// a stray quote in prose would otherwise hide every later object
	return scanJSONBlock(text, false)
}

func scanJSONBlock(text string, stringAware bool) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			// strings only matter inside a candidate span
			if stringAware && depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				block := text[start : i+1]
				if _, err := DecodeJSONObject(block); err == nil {
					return block, true
				}
				start = -1
			}
		}
	}

	return "", false
}

// DecodeJSONObject parses s as exactly one JSON object. Numbers are kept as
// json.Number so large integers survive unchanged.
func DecodeJSONObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return obj, nil
}
