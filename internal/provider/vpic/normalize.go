package vpic

import (
	"strings"

	"vehicle-decoder/internal/domain/vehicle"
)

// Normalize converts a raw DecodeVinValues result into the canonical
// vehicle record. Fields the upstream left empty stay unset on the
// record, so serialization drops them instead of emitting "" markers.
func Normalize(vin string, raw RawResult) vehicle.Vehicle {
	v := vehicle.Vehicle{
		VIN:       vin,
		Year:      raw["ModelYear"],
		Make:      raw["Make"],
		Model:     raw["Model"],
		BodyStyle: raw["BodyClass"],
		Engine:    engineDescription(raw["EngineCylinders"], raw["DisplacementL"], raw["FuelTypePrimary"]),
		Assembly:  raw["PlantCountry"],
	}

	// Series is the preferred description; an empty Series falls
	// through to Trim.
	if series := raw["Series"]; series != "" {
		v.Description = series
	} else {
		v.Description = raw["Trim"]
	}
	return v
}

// engineDescription assembles a short engine summary such as
// "6-cyl 3.5L Gasoline". Unknown parts are skipped; when nothing is
// known the summary is empty.
func engineDescription(cylinders, displacement, fuel string) string {
	parts := make([]string, 0, 3)
	if cylinders != "" {
		parts = append(parts, cylinders+"-cyl")
	}
	if displacement != "" {
		parts = append(parts, displacement+"L")
	}
	if fuel != "" {
		parts = append(parts, fuel)
	}
	return strings.Join(parts, " ")
}
