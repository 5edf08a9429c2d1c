package carsxe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vehicle-decoder/internal/provider"
)

func TestNewClientWithoutKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		client, err := NewClient(DefaultBaseURL, key, time.Second)
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("NewClient with key %q: err = %v, want ErrNotConfigured", key, err)
		}
		if client != nil {
			t.Errorf("NewClient with key %q returned non-nil client", key)
		}
	}
}

func TestNilClientDecode(t *testing.T) {
	var client *Client
	_, err := client.Decode(context.Background(), "ABC123", "CA")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("nil client Decode: err = %v, want ErrNotConfigured", err)
	}
	if !provider.NotConfigured(err) {
		t.Error("provider.NotConfigured(err) = false, want true")
	}
}

func TestDecodeRequestShape(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		json.NewEncoder(w).Encode(RawResult{"success": true, "CarMake": "KIA"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret-key", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw, err := client.Decode(context.Background(), "7TVL123", "CA")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	expected := map[string]string{
		"plate":  "7TVL123",
		"state":  "CA",
		"format": "json",
		"key":    "secret-key",
	}
	for key, want := range expected {
		if gotQuery[key] != want {
			t.Errorf("query param %s = %q, want %q", key, gotQuery[key], want)
		}
	}
	if raw["CarMake"] != "KIA" {
		t.Errorf("CarMake = %v, want %q", raw["CarMake"], "KIA")
	}
}

func TestDecodeFailureBodyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RawResult{"success": false, "error": "plate not found"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw, err := client.Decode(context.Background(), "XX0000", "NV")
	if err != nil {
		t.Fatalf("Decode returned error for success=false body: %v", err)
	}
	if raw["error"] != "plate not found" {
		t.Errorf("error field = %v, want body passed through", raw["error"])
	}
}

func TestDecodeUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Decode(context.Background(), "ABC123", "CA")

	var pe *provider.Error
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *provider.Error", err)
	}
	if pe.Kind != provider.KindStatus {
		t.Errorf("error kind = %q, want %q", pe.Kind, provider.KindStatus)
	}
	if pe.StatusCode != http.StatusForbidden {
		t.Errorf("status code = %d, want %d", pe.StatusCode, http.StatusForbidden)
	}
}

func TestDecodeTransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL, "sk-live-secret", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Decode(context.Background(), "ABC123", "CA")
	if err == nil {
		t.Fatal("Decode returned nil error against a closed server")
	}

	kind, ok := provider.KindOf(err)
	if !ok || kind != provider.KindNetwork {
		t.Fatalf("error kind = %q, want %q", kind, provider.KindNetwork)
	}
	if strings.Contains(err.Error(), "sk-live-secret") {
		t.Errorf("error text leaks the API key: %v", err)
	}
	if !strings.Contains(err.Error(), "REDACTED") {
		t.Errorf("error text does not mask the key parameter: %v", err)
	}
}

func TestDecodeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Decode(context.Background(), "ABC123", "CA")

	kind, ok := provider.KindOf(err)
	if !ok {
		t.Fatalf("error type = %T, want *provider.Error", err)
	}
	if kind != provider.KindBadResponse {
		t.Errorf("error kind = %q, want %q", kind, provider.KindBadResponse)
	}
}
