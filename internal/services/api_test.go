package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	tu "github.com/desertthunder/spindle/internal/testing"
)

type payload struct {
	Value string `json:"value"`
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Nil HTTP Client", func(t *testing.T) {
			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)

			if c.http != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.limiter != nil {
				t.Error("expected no limiter for rps <= 0")
			}
		})

		t.Run("With Rate Limit", func(t *testing.T) {
			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 5)

			if c.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Authenticated", func(t *testing.T) {
		c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
		if err := c.Authenticated(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}

		c = NewClient(nil, tu.StaticTokens{Err: errors.New("not authenticated")}, 0)
		if err := c.Authenticated(); err == nil {
			t.Error("expected error from token source")
		}
	})

	t.Run("Call", func(t *testing.T) {
		t.Run("Successful Request Decodes JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer tok" {
					t.Errorf("expected bearer token, got %s", r.Header.Get("Authorization"))
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(payload{Value: "hello"})
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       server.URL,
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if !res.OK() {
				t.Fatalf("expected success, got %q", res.Err)
			}
			if res.Data == nil || res.Data.Value != "hello" {
				t.Errorf("expected decoded payload, got %+v", res.Data)
			}
		})

		t.Run("No Content Returns Empty Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       server.URL,
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if !res.OK() {
				t.Fatalf("expected success, got %q", res.Err)
			}
			if res.Data != nil {
				t.Error("expected nil data for 204 response")
			}
		})

		t.Run("Non-2xx Carries Error Label", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       server.URL,
				ErrLabel:  "Failed to fetch player state",
				ParseJSON: true,
			})

			if res.OK() {
				t.Fatal("expected failure for 404")
			}
			if res.Err != "Failed to fetch player state" {
				t.Errorf("expected error label, got %q", res.Err)
			}
			if res.Data != nil {
				t.Error("expected nil data on failure")
			}
		})

		t.Run("Transport Failure Carries Underlying Message", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			c := NewClient(client, tu.StaticTokens{Token: "tok"}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       "http://example.com",
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if res.OK() {
				t.Fatal("expected failure for transport error")
			}
		})

		t.Run("Token Failure Short-Circuits", func(t *testing.T) {
			requested := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requested = true
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Err: errors.New("not authenticated")}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       server.URL,
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if res.OK() {
				t.Fatal("expected failure without a token")
			}
			if res.Err != "not authenticated" {
				t.Errorf("expected token error message, got %q", res.Err)
			}
			if requested {
				t.Error("expected no request to be made")
			}
		})

		t.Run("Body Is JSON Encoded", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}
				var data map[string]any
				if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				if data["device_ids"] == nil {
					t.Errorf("expected device_ids in body, got %v", data)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
			st := send(context.Background(), c, CallOpts{
				Method:   http.MethodPut,
				URL:      server.URL,
				Body:     map[string]any{"device_ids": []string{"d1"}},
				ErrLabel: "Failed to transfer playback",
			})

			if !st.OK() {
				t.Fatalf("expected success, got %q", st.Err)
			}
		})

		t.Run("Malformed JSON Carries Error Label", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 0)
			res := Call[payload](context.Background(), c, CallOpts{
				Method:    http.MethodGet,
				URL:       server.URL,
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if res.OK() {
				t.Fatal("expected failure for malformed JSON")
			}
			if res.Err != "Failed to fetch" {
				t.Errorf("expected error label, got %q", res.Err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			c := NewClient(nil, tu.StaticTokens{Token: "tok"}, 1)
			res := Call[payload](ctx, c, CallOpts{
				Method:    http.MethodGet,
				URL:       "http://example.com",
				ErrLabel:  "Failed to fetch",
				ParseJSON: true,
			})

			if res.OK() {
				t.Error("expected failure for canceled context")
			}
		})
	})

	t.Run("Result", func(t *testing.T) {
		if !(Result[payload]{}).OK() {
			t.Error("expected empty result to be OK")
		}
		if (Result[payload]{Err: "boom"}).OK() {
			t.Error("expected result with error to not be OK")
		}
		if !(Status{}).OK() {
			t.Error("expected empty status to be OK")
		}
		if (Status{Err: "boom"}).OK() {
			t.Error("expected status with error to not be OK")
		}
	})
}
