package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"veriscan/internal/api"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestProcessSendsImageBytes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/documents" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("filename"); got != "scan.jpg" {
			t.Errorf("unexpected filename %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "image-bytes" {
			t.Errorf("unexpected body %q", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.ProcessResponse{Document: api.Document{ID: "doc-1"}})
	})

	resp, err := c.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Document.ID != "doc-1" {
		t.Errorf("unexpected document id %q", resp.Document.ID)
	}
}

func TestVerifyEncodesSubmission(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/doc-1/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req api.VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Fields["uid"] != "246109002" {
			t.Errorf("unexpected submission %+v", req.Fields)
		}
		json.NewEncoder(w).Encode(api.VerifyResponse{Accepted: true, State: "verified", Persisted: true})
	})

	resp, err := c.Verify(context.Background(), "doc-1", map[string]string{"uid": "246109002"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !resp.Accepted || resp.State != "verified" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestListEncodesStateFilter(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		states := r.URL.Query()["state"]
		if len(states) != 2 || states[0] != "verified" || states[1] != "rejected" {
			t.Errorf("unexpected state filter %v", states)
		}
		json.NewEncoder(w).Encode(api.DocumentListResponse{})
	})
	if _, err := c.List(context.Background(), "verified", "rejected"); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestErrorPayloadBecomesAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "document not found: doc-9"})
	})

	_, err := c.Get(context.Background(), "doc-9")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.NotFound() {
		t.Errorf("expected not-found error, got %+v", apiErr)
	}
	if apiErr.Message != "document not found: doc-9" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestNewNormalizesAddress(t *testing.T) {
	c := New("127.0.0.1:7319")
	if c.base != "http://127.0.0.1:7319" {
		t.Errorf("unexpected base %q", c.base)
	}
	c = New("http://localhost:7319/")
	if c.base != "http://localhost:7319" {
		t.Errorf("unexpected base %q", c.base)
	}
}
