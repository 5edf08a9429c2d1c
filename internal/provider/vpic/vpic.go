// Package vpic implements the VIN decode adapter for the NHTSA vPIC
// vehicles API. It issues DecodeVinValues requests and normalizes the
// flat result object into the canonical vehicle record.
package vpic

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
	// DefaultBaseURL is the public vPIC vehicles API root.
	DefaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles"

	// DefaultTimeout bounds a single decode request end to end.
	DefaultTimeout = 10 * time.Second

	providerName = "vpic"
)

// RawResult is the first element of a DecodeVinValues response: one flat
// object mapping field names to string values. Fields the upstream does
// not know arrive as empty strings.
type RawResult map[string]string

type decodeValuesResponse struct {
	Count   int         `json:"Count"`
	Message string      `json:"Message"`
	Results []RawResult `json:"Results"`
}

// Client calls the vPIC VIN decoding endpoint. The zero value is not
// usable; construct with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a vPIC client. Empty baseURL and non-positive timeout
// fall back to the public endpoint and the default timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Decode fetches the decoded values for a VIN. modelYear is optional;
// when present it is passed upstream to improve decoding accuracy.
// The first element of the response's Results array is returned as is.
func (c *Client) Decode(ctx context.Context, vin, modelYear string) (RawResult, error) {
	endpoint := fmt.Sprintf("%s/DecodeVinValues/%s", c.baseURL, url.PathEscape(vin))

	query := url.Values{}
	query.Set("format", "json")
	if modelYear != "" {
		query.Set("modelyear", modelYear)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, provider.NewStatusError(providerName, resp.StatusCode, "unexpected status from vPIC API")
	}

	var decoded decodeValuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, provider.NewError(providerName, provider.KindBadResponse, fmt.Sprintf("failed to parse vPIC response: %v", err))
	}
	if len(decoded.Results) == 0 {
		return nil, provider.NewError(providerName, provider.KindBadResponse, "unexpected response structure from vPIC API")
	}
	return decoded.Results[0], nil
}
