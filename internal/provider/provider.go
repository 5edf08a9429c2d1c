// Package provider holds the pieces shared by the outbound decode
// clients: the error type both adapters return and the kinds the HTTP
// layer maps onto status codes.
//
// Both adapters follow the same convention: (result, error). A response
// body in which the upstream reports its own failure (for example a
// plate decoder answering success=false) is data, not an error, and is
// returned to the caller unchanged.
package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	// KindNotConfigured means the provider cannot be used because its
	// credentials or endpoint were never supplied.
	KindNotConfigured ErrorKind = "not_configured"
	// KindNetwork covers transport failures: DNS, refused connections,
	// timeouts.
	KindNetwork ErrorKind = "network"
	// KindStatus means the provider answered with a non-2xx status.
	KindStatus ErrorKind = "status"
	// KindBadResponse means the provider answered 2xx but the body did
	// not have the expected shape.
	KindBadResponse ErrorKind = "bad_response"
)

// Error is the unified failure type returned by the decode adapters.
type Error struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// NewError builds a provider error of the given kind.
func NewError(provider string, kind ErrorKind, message string) *Error {
	return &Error{Provider: provider, Kind: kind, Message: message}
}

// NewStatusError builds a provider error for an unexpected HTTP status.
func NewStatusError(provider string, statusCode int, message string) *Error {
	return &Error{Provider: provider, Kind: KindStatus, StatusCode: statusCode, Message: message}
}

// KindOf returns the kind of err if it is (or wraps) a provider Error.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// NotConfigured reports whether err means a provider was never
// configured. Callers treat this as a disabled feature, not a fault.
func NotConfigured(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotConfigured
}
