package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"invoice.pdf", FormatPDF},
		{"INVOICE.PDF", FormatPDF},
		{" statement.docx ", FormatDOCX},
		{"ledger.xlsx", FormatXLSX},
		{"notes.txt", FormatText},
		{"export.CSV", FormatText},
		{"legacy.doc", FormatUnsupported},
		{"legacy.xls", FormatUnsupported},
		{"photo.png", FormatUnsupported},
		{"README", FormatUnsupported},
		{"", FormatUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromFilename(tt.filename))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "pdf", FormatPDF.String())
	assert.Equal(t, "unsupported", FormatUnsupported.String())
	assert.Equal(t, "unsupported", Format(42).String())
}
