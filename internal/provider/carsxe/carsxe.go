// Package carsxe implements the license plate decode adapter for
// CarsXE-style plate decoding APIs.
//
// Plate decoding is an optional feature: the API key is injected from
// configuration, and when it is absent the client reports not-configured
// instead of failing service startup.
package carsxe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vehicle-decoder/internal/provider"
)

const (
	// DefaultBaseURL is the public plate decoder endpoint.
	DefaultBaseURL = "https://api.carsxe.com/platedecoder"

	// DefaultTimeout bounds a single decode request end to end.
	DefaultTimeout = 10 * time.Second

	providerName = "carsxe"
)

// ErrNotConfigured is returned when plate decoding was never configured
// with an API key. Callers degrade the feature instead of treating this
// as a fault.
var ErrNotConfigured = provider.NewError(providerName, provider.KindNotConfigured, "plate decoding is not configured: missing API key")

// RawResult is a plate decoder response body, kept loosely typed because
// failure bodies carry provider-specific shapes that pass through to the
// caller unchanged.
type RawResult map[string]any

// Client calls the plate decoding endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a plate decode client. An empty API key yields
// ErrNotConfigured; the caller keeps the nil client and the feature
// stays off.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Decode looks up a plate and state pair and returns the response body
// as is, success or not. A nil receiver returns ErrNotConfigured rather
// than panicking so callers can hold an optional client.
func (c *Client) Decode(ctx context.Context, plate, state string) (RawResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("plate", plate)
	query.Set("state", state)
	query.Set("format", "json")
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, c.redactKey(fmt.Sprintf("failed to build request: %v", err)))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, c.redactKey(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewStatusError(providerName, resp.StatusCode, "unexpected status from plate decoder")
	}

	var raw RawResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, provider.NewError(providerName, provider.KindBadResponse, fmt.Sprintf("failed to parse plate decoder response: %v", err))
	}
	return raw, nil
}

// redactKey masks the API key anywhere it appears in provider error
// text. Transport errors quote the full request URL, key parameter
// included, and that text reaches response bodies and logs.
func (c *Client) redactKey(msg string) string {
	if c.apiKey == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, c.apiKey, "REDACTED")
	if escaped := url.QueryEscape(c.apiKey); escaped != c.apiKey {
		msg = strings.ReplaceAll(msg, escaped, "REDACTED")
	}
	return msg
}
