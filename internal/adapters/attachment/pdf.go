package attachment

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText reads the text layer page by page. Pages the library cannot
// decode contribute nothing.
func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := 0
	func() {
		defer func() { _ = recover() }()
		pages = reader.NumPage()
	}()

	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		func() {
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				return
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return
			}
			texts = append(texts, text)
		}()
	}

	return strings.Join(texts, "\n"), nil
}
