package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"vehicle-decoder/internal/service"
)

func stringPtr(s string) *string {
	return &s
}

func TestBuildLookupWorkbook(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	lookups := []service.LookupInfo{
		{
			ID:         "a",
			Kind:       "vin",
			Query:      "1HGCR2F3XFA027534",
			Normalized: "1HGCR2F3XFA027534",
			Status:     "ok",
			Year:       stringPtr("2015"),
			Make:       stringPtr("HONDA"),
			Model:      stringPtr("Accord"),
			CreatedAt:  createdAt,
		},
		{
			ID:         "b",
			Kind:       "plate",
			Query:      "7TVL123",
			Normalized: "7TVL123",
			Region:     stringPtr("CA"),
			Status:     "error",
			Error:      stringPtr("plate not found"),
			CreatedAt:  createdAt,
		},
	}

	data, err := BuildLookupWorkbook(lookups)
	if err != nil {
		t.Fatalf("BuildLookupWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	checks := []struct {
		cell     string
		expected string
	}{
		{"A1", "Time"},
		{"B1", "Kind"},
		{"I1", "Error"},
		{"B2", "vin"},
		{"C2", "1HGCR2F3XFA027534"},
		{"F2", "2015"},
		{"G2", "HONDA"},
		{"B3", "plate"},
		{"D3", "CA"},
		{"E3", "error"},
		{"I3", "plate not found"},
		{"D2", ""},
	}

	for _, check := range checks {
		got, err := f.GetCellValue(sheetName, check.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", check.cell, err)
		}
		if got != check.expected {
			t.Errorf("cell %s = %q, want %q", check.cell, got, check.expected)
		}
	}
}

func TestBuildLookupWorkbookEmpty(t *testing.T) {
	data, err := BuildLookupWorkbook(nil)
	if err != nil {
		t.Fatalf("BuildLookupWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("row count = %d, want header row only", len(rows))
	}
}
