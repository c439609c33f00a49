//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

const defaultReservationsHTTPBase = "http://localhost:48081"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	return c.doJSONWithAPIKey(t, method, path, body, reservationsCallerAPIKey())
}

func (c *httpClient) doJSONWithAPIKey(t *testing.T, method, path string, body any, apiKey string) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	return resp, bodyBytes
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		req, _ := http.NewRequest(http.MethodGet, baseURL+"/health", nil)
		req.Header.Set("X-Request-ID", fmt.Sprintf("wait-http-%d", time.Now().UnixNano()))
		req.Header.Set("X-API-Key", reservationsCallerAPIKey())
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func TestReservationsE2E(t *testing.T) {
	httpBase := os.Getenv("RESERVATIONS_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultReservationsHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("HTTPMissingRequestID", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, httpBase+"/health", nil)
		if err != nil {
			t.Fatalf("new request failed: %v", err)
		}
		req.Header.Set("X-API-Key", reservationsCallerAPIKey())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing x-request-id, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPUnauthorizedMissingAPIKey", func(t *testing.T) {
		resp, _ := client.doJSONWithAPIKey(t, http.MethodGet, "/health", nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for missing x-api-key, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPForbiddenInsufficientAccess", func(t *testing.T) {
		resp, _ := client.doJSONWithAPIKey(t, http.MethodGet, "/health", nil, reservationsNoAccessAPIKey())
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 for insufficient access, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPValidationInitiate", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodPost, "/reservations/initiate", map[string]any{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid initiate request, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPInitiateUnknownProperty", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/reservations/initiate", map[string]any{
			"property_id": 999999,
			"buyer_id":    "e2e-buyer",
			"gateway":     "esewa",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPVerifyUnknownPayment", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/reservations/esewa/verify", map[string]any{
			"payment_id":  999999,
			"buyer_id":    "e2e-buyer",
			"gateway_ref": "e2e-ref",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPCancelNotFound", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodDelete, "/reservations/999999", map[string]any{"reason": "e2e"})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPReservationLifecycle", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPut, "/properties/424242", map[string]any{
			"listing_kind": "sale",
			"price_cents":  1_000_000,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for property sync, got %d body=%s", resp.StatusCode, string(body))
		}

		resp, body = client.doJSON(t, http.MethodGet, "/reservations/424242", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var payload types.ReservationResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal reservation failed: %v body=%s", err, string(body))
		}
		if payload.Property == nil || payload.Property.Id != 424242 {
			t.Fatalf("unexpected property payload: %+v", payload.Property)
		}

		resp, body = client.doJSON(t, http.MethodDelete, "/reservations/424242", map[string]any{"reason": "e2e cleanup"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for cancel, got %d body=%s", resp.StatusCode, string(body))
		}
	})
}
