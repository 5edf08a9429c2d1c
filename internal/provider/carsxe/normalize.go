package carsxe

import (
	"math"
	"strconv"
	"strings"

	"vehicle-decoder/internal/domain/vehicle"
)

// Outcome is the tagged result of normalizing a plate decode response.
// Exactly one branch is set: Vehicle when the provider reported success,
// Raw when it did not. The raw branch carries the provider's body
// unchanged so the caller can surface the provider's own error payload.
type Outcome struct {
	Vehicle *vehicle.Vehicle
	Raw     RawResult
}

// Succeeded reports whether the provider returned a decoded vehicle.
func (o Outcome) Succeeded() bool {
	return o.Vehicle != nil
}

// Normalize maps a plate decode response into the canonical record. A
// response without a truthy "success" field passes through on the Raw
// branch; only the fields listed here are ever mapped, everything else
// the provider sends is ignored.
func Normalize(raw RawResult) Outcome {
	if !truthy(raw["success"]) {
		return Outcome{Raw: raw}
	}
	return Outcome{Vehicle: &vehicle.Vehicle{
		Year:        str(raw["RegistrationYear"]),
		Make:        str(raw["CarMake"]),
		Model:       str(raw["CarModel"]),
		BodyStyle:   str(raw["BodyStyle"]),
		Engine:      str(raw["EngineSize"]),
		Assembly:    str(raw["Assembly"]),
		Description: str(raw["Description"]),
	}}
}

// ErrorMessage extracts the provider's own failure text from a
// passthrough body, falling back to a generic message.
func ErrorMessage(raw RawResult) string {
	for _, key := range []string{"error", "message"} {
		if msg := str(raw[key]); msg != "" {
			return msg
		}
	}
	return "plate lookup failed"
}

// truthy interprets the provider's loose success flag: JSON booleans,
// "true"-ish strings and non-zero numbers all count.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false") && t != "0"
	case float64:
		return t != 0
	default:
		return false
	}
}

// str renders a loosely typed response value as a string. Numeric years
// arrive as JSON numbers from some providers and are formatted without
// a fractional part when whole.
func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
