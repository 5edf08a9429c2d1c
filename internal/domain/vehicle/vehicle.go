// Package vehicle defines the canonical vehicle record produced by the
// decode pipelines and the event shape broadcast to live feeds.
package vehicle

import "time"

// Vehicle is the normalized record assembled from a provider response.
// Every field is optional: no provider returns every attribute, and the
// JSON form drops empty fields so partial knowledge is represented by
// omission rather than by empty strings.
type Vehicle struct {
	VIN         string `json:"vin,omitempty"`
	Year        string `json:"year,omitempty"`
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	BodyStyle   string `json:"body_style,omitempty"`
	Engine      string `json:"engine,omitempty"`
	Assembly    string `json:"assembly,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsZero reports whether no field of the record is set.
func (v Vehicle) IsZero() bool {
	return v == Vehicle{}
}

// Lookup kinds. Every decode attempt is one of these.
const (
	LookupKindVIN   = "vin"
	LookupKindPlate = "plate"
)

// Lookup statuses as recorded in history and broadcast to feeds.
const (
	LookupStatusOK    = "ok"
	LookupStatusError = "error"
)

// LookupEvent is broadcast to connected feed clients after a decode
// attempt resolves, whether it succeeded or not.
type LookupEvent struct {
	Kind    string    `json:"kind"`
	Query   string    `json:"query"`
	Region  string    `json:"region,omitempty"`
	Status  string    `json:"status"`
	Vehicle *Vehicle  `json:"vehicle,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
