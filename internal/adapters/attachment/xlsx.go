package attachment

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxText lists every non-empty cell value in sheet, row, cell order
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var cells []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				cells = append(cells, cell)
			}
		}
	}

	return strings.Join(cells, "\n"), nil
}
