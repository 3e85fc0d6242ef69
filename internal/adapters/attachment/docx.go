package attachment

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// docxText returns the paragraph text of a DOCX document in document order,
// one paragraph per line. Table cell paragraphs are included.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	for _, file := range zr.File {
		if file.Name != docxBody {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
		}
		defer rc.Close()
		return docxParagraphs(rc)
	}

	return "", errors.New("DOCX archive has no " + docxBody)
}

func docxParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				if inPara {
					current.WriteString("\t")
				}
			case "br", "cr":
				if inPara {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
