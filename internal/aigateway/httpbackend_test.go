package aigateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPBackendCompleteDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}
		var req httpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Purpose != "parse" {
			t.Errorf("Purpose = %q, want parse", req.Purpose)
		}
		json.NewEncoder(w).Encode(httpResponse{Text: "ok", CostMicros: 42})
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, "secret", nil)
	got, err := backend.Complete(context.Background(), "prompt", PurposeParse)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != "ok" || got.CostMicros != 42 {
		t.Errorf("Complete = %+v, want {ok 42}", got)
	}
}

func TestHTTPBackendCompleteMapsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, "", nil)
	_, err := backend.Complete(context.Background(), "prompt", PurposeParse)
	if _, ok := err.(*RateLimitError); !ok {
		t.Fatalf("err = %v (%T), want *RateLimitError", err, err)
	}
}

func TestHTTPBackendCompleteSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, "", nil)
	if _, err := backend.Complete(context.Background(), "prompt", PurposeParse); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
