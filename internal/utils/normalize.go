package utils

import (
	"strings"
)

// NormalizeVIN uppercases and trims a VIN as entered by a user. This is
// the form sent to the decode provider and stored in history.
func NormalizeVIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizePlate produces the canonical index form of a plate: spaces
// and dashes removed, uppercased. Used as the history key; provider
// queries receive the plate with only trimming and uppercasing applied.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
