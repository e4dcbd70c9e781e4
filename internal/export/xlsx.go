package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/akolanti/FormFlow/internal/normalizer"
)

const (
	extractionSheet = "Extraction"
	rawTextSheet    = "Raw Text"
)

// XLSX builds a workbook with the normalized rows and, when there is any, the
// raw text one line per row.
func XLSX(rows []normalizer.Row, rawText string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", extractionSheet); err != nil {
		return nil, err
	}

	for i, h := range []string{"Field", "Value", "Confidence"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(extractionSheet, cell, h)
	}

	for i, r := range rows {
		line := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			_ = f.SetCellValue(extractionSheet, cell, v)
		}
		write(1, r.Field)
		write(2, r.Value)
		if r.Confidence != nil {
			write(3, confidenceCell(r.Confidence))
		}
	}
	_ = f.SetColWidth(extractionSheet, "A", "A", 36)
	_ = f.SetColWidth(extractionSheet, "B", "B", 60)
	_ = f.SetColWidth(extractionSheet, "C", "C", 12)

	if strings.TrimSpace(rawText) != "" {
		if _, err := f.NewSheet(rawTextSheet); err != nil {
			return nil, err
		}
		for i, text := range strings.Split(rawText, "\n") {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			_ = f.SetCellValue(rawTextSheet, cell, strings.TrimRight(text, "\r"))
		}
		_ = f.SetColWidth(rawTextSheet, "A", "A", 100)
	}

	if index, err := f.GetSheetIndex(extractionSheet); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// confidenceCell keeps numeric confidences numeric in the sheet.
func confidenceCell(c any) any {
	switch v := c.(type) {
	case float64, string, bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}
