package attachment

import (
	"path/filepath"
	"strings"
)

// Format is the closed set of attachment formats the extractor understands
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	FormatDOCX
	FormatXLSX
	FormatText
)

var formatNames = map[Format]string{
	FormatUnsupported: "unsupported",
	FormatPDF:         "pdf",
	FormatDOCX:        "docx",
	FormatXLSX:        "xlsx",
	FormatText:        "text",
}

var formatsByExtension = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".xlsx": FormatXLSX,
	".txt":  FormatText,
	".csv":  FormatText,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnsupported]
}

// FormatFromFilename resolves the format from the lowercased file extension
func FormatFromFilename(filename string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if format, ok := formatsByExtension[ext]; ok {
		return format
	}
	return FormatUnsupported
}
