// Package report renders decode history into downloadable workbooks.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"vehicle-decoder/internal/service"
)

const sheetName = "Lookups"

var headers = []string{"Time", "Kind", "Query", "Region", "Status", "Year", "Make", "Model", "Error"}

// BuildLookupWorkbook renders lookups into a single-sheet xlsx workbook
// and returns the serialized file.
func BuildLookupWorkbook(lookups []service.LookupInfo) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, lookup := range lookups {
		values := []any{
			lookup.CreatedAt.Format(time.RFC3339),
			lookup.Kind,
			lookup.Query,
			deref(lookup.Region),
			lookup.Status,
			deref(lookup.Year),
			deref(lookup.Make),
			deref(lookup.Model),
			deref(lookup.Error),
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", rowIdx+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
