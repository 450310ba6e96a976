package repository

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook stores address columns by header name, never by position, so the
// sheets survive operators inserting extra columns in a spreadsheet editor.

// headerIndex maps trimmed header names to their 0-based column index.
// The first occurrence wins on duplicate names.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

// missingColumns returns the required column names absent from the index
func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// cellAt returns the trimmed cell value at the given column, or "" when the
// row is shorter than the header (excelize drops trailing empty cells)
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// cellName converts 1-based column and row numbers to an A1-style reference
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}
