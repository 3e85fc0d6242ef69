package core

import (
	"strings"

	"github.com/mikey/llm-mail-extractor/internal/utils"
)

// NormalizeOutput turns raw model output into structured data.
// It tries a whole-string parse, then the first parseable embedded JSON
// object, and finally gives up with an empty mapping. It never fails.
// Numbers are returned as json.Number.
func NormalizeOutput(raw string) (map[string]any, ParseMode) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") {
		if data, err := utils.DecodeJSONObject(trimmed); err == nil {
			return data, ParseModeDirect
		}
	}

	if block, ok := utils.ExtractJSONBlock(raw); ok {
		if data, err := utils.DecodeJSONObject(block); err == nil {
			return data, ParseModeBlock
		}
	}

	return map[string]any{}, ParseModeNone
}
