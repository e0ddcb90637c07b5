package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"veriscan/internal/api"
)

// APIError carries the HTTP status and error message returned by the daemon.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon error (%d): %s", e.StatusCode, e.Message)
}

// NotFound reports whether the daemon answered 404.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Client provides HTTP access to the daemon API.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the daemon at the given address. The address may
// be a bare host:port or a full http URL.
func New(address string) *Client {
	base := strings.TrimRight(strings.TrimSpace(address), "/")
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var status api.DaemonStatus
	return c.do(ctx, http.MethodGet, "/api/status", nil, "", &status)
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, "", &status)
	return status, err
}

// Process uploads a document image for extraction.
func (c *Client) Process(ctx context.Context, filename string, image []byte) (api.ProcessResponse, error) {
	var resp api.ProcessResponse
	path := "/api/documents?filename=" + url.QueryEscape(filename)
	err := c.do(ctx, http.MethodPost, path, bytes.NewReader(image), "application/octet-stream", &resp)
	return resp, err
}

// List returns documents, optionally filtered by state.
func (c *Client) List(ctx context.Context, states ...string) (api.DocumentListResponse, error) {
	var resp api.DocumentListResponse
	path := "/api/documents"
	if len(states) > 0 {
		query := url.Values{}
		for _, state := range states {
			query.Add("state", state)
		}
		path += "?" + query.Encode()
	}
	err := c.do(ctx, http.MethodGet, path, nil, "", &resp)
	return resp, err
}

// Get returns one document by ID.
func (c *Client) Get(ctx context.Context, id string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, "", &resp)
	return resp, err
}

// Verify submits operator values for reconciliation. A reconciled outcome
// whose durable save failed still comes back as a response: Persisted is
// false and PersistenceError names the failure.
func (c *Client) Verify(ctx context.Context, id string, values map[string]string) (api.VerifyResponse, error) {
	var resp api.VerifyResponse
	err := c.doJSON(ctx, "/api/documents/"+url.PathEscape(id)+"/verify", api.VerifyRequest{Fields: values}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
			var failed api.VerifyResponse
			if jsonErr := json.Unmarshal(apiErr.Body, &failed); jsonErr == nil && failed.PersistenceError != "" {
				return failed, nil
			}
		}
		return resp, err
	}
	return resp, nil
}

// EditField records a corrected value for one field.
func (c *Client) EditField(ctx context.Context, id, kind, value string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	path := fmt.Sprintf("/api/documents/%s/fields/%s/edit", url.PathEscape(id), url.PathEscape(kind))
	err := c.doJSON(ctx, path, api.FieldEditRequest{Value: value}, &resp)
	return resp, err
}

// AcceptField marks one field as reviewed and correct.
func (c *Client) AcceptField(ctx context.Context, id, kind string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	path := fmt.Sprintf("/api/documents/%s/fields/%s/accept", url.PathEscape(id), url.PathEscape(kind))
	err := c.doJSON(ctx, path, struct{}{}, &resp)
	return resp, err
}

// RejectField flags one field as wrong pending resubmission.
func (c *Client) RejectField(ctx context.Context, id, kind string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	path := fmt.Sprintf("/api/documents/%s/fields/%s/reject", url.PathEscape(id), url.PathEscape(kind))
	err := c.doJSON(ctx, path, struct{}{}, &resp)
	return resp, err
}

// Reject terminally rejects a document.
func (c *Client) Reject(ctx context.Context, id, reason string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	err := c.doJSON(ctx, "/api/documents/"+url.PathEscape(id)+"/reject", api.RejectRequest{Reason: reason}, &resp)
	return resp, err
}

// Flush retries persisting a document whose save previously failed.
func (c *Client) Flush(ctx context.Context, id string) error {
	var resp map[string]bool
	return c.doJSON(ctx, "/api/documents/"+url.PathEscape(id)+"/flush", struct{}{}, &resp)
}

// Report generates and returns the report artifacts for a document.
func (c *Client) Report(ctx context.Context, id string) (api.ReportResponse, error) {
	var resp api.ReportResponse
	err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id)+"/report", nil, "", &resp)
	return resp, err
}

func (c *Client) doJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data), Body: data}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
