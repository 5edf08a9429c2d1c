package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"vehicle-decoder/internal/domain/vehicle"
)

func TestNewLookupFullRow(t *testing.T) {
	car := &vehicle.Vehicle{Year: "2015", Make: "HONDA", Model: "Accord"}
	raw := map[string]any{"CarMake": "HONDA"}

	row, err := NewLookup(vehicle.LookupKindPlate, "7TV-L123", "7TVL123", "CA", vehicle.LookupStatusOK, "", car, raw)
	if err != nil {
		t.Fatalf("NewLookup returned error: %v", err)
	}

	if row.ID == uuid.Nil {
		t.Error("row has no ID")
	}
	if row.Kind != vehicle.LookupKindPlate || row.Query != "7TV-L123" || row.Normalized != "7TVL123" {
		t.Errorf("row identity = %q/%q/%q", row.Kind, row.Query, row.Normalized)
	}
	if row.Region == nil || *row.Region != "CA" {
		t.Errorf("row region = %v, want CA", row.Region)
	}
	if row.Error != nil {
		t.Errorf("row error = %q, want NULL", *row.Error)
	}
	if row.Year == nil || *row.Year != "2015" {
		t.Errorf("row year = %v, want 2015", row.Year)
	}
	if row.Make == nil || *row.Make != "HONDA" {
		t.Errorf("row make = %v, want HONDA", row.Make)
	}
	if row.Model == nil || *row.Model != "Accord" {
		t.Errorf("row model = %v, want Accord", row.Model)
	}
	if !strings.Contains(string(row.RawResult), "CarMake") {
		t.Errorf("raw result = %s, want the provider body", row.RawResult)
	}
	if row.CreatedAt.IsZero() {
		t.Error("row has no creation time")
	}
}

func TestNewLookupEmptyOptionalsStayNull(t *testing.T) {
	row, err := NewLookup(vehicle.LookupKindVIN, "VIN123", "VIN123", "", vehicle.LookupStatusError, "decode failed", nil, nil)
	if err != nil {
		t.Fatalf("NewLookup returned error: %v", err)
	}

	if row.Region != nil {
		t.Errorf("row region = %q, want NULL", *row.Region)
	}
	if row.Year != nil || row.Make != nil || row.Model != nil {
		t.Error("row carries vehicle columns without a vehicle")
	}
	if row.Error == nil || *row.Error != "decode failed" {
		t.Errorf("row error = %v, want the failure text", row.Error)
	}
	if len(row.RawResult) != 0 {
		t.Errorf("raw result = %s, want empty", row.RawResult)
	}
}

func TestNewLookupPartialVehicle(t *testing.T) {
	car := &vehicle.Vehicle{Make: "KIA"}

	row, err := NewLookup(vehicle.LookupKindPlate, "ABC123", "ABC123", "NV", vehicle.LookupStatusOK, "", car, nil)
	if err != nil {
		t.Fatalf("NewLookup returned error: %v", err)
	}

	if row.Make == nil || *row.Make != "KIA" {
		t.Errorf("row make = %v, want KIA", row.Make)
	}
	if row.Year != nil || row.Model != nil {
		t.Error("empty vehicle fields produced non-NULL columns")
	}
}

func TestNewLookupUnencodableRaw(t *testing.T) {
	_, err := NewLookup(vehicle.LookupKindVIN, "VIN123", "VIN123", "", vehicle.LookupStatusOK, "", nil, make(chan int))
	if err == nil {
		t.Fatal("NewLookup accepted a raw body that cannot be encoded")
	}
}
