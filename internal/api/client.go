// Package api provides the HTTP gateway the CLI uses to talk to the
// notewire backend. It defines the API client, a middleware chain for
// cross-cutting request concerns (request IDs, token injection,
// unauthorized handling), and helpers for bearer token parsing.
//
// All requests pass through the middleware chain, so callers never
// attach credentials themselves and never handle forced logout.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	nwerrors "notewire/cli/internal/errors"
)

// ErrNotSignedIn reports an operation that needs a session when none
// exists. It carries the unauthorized kind so callers branch the same
// way they would for a server-side 401.
var ErrNotSignedIn = nwerrors.New(nwerrors.Unauthorized, "not signed in")

// APIError describes a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s", e.Status)
}

// Client executes JSON requests against the backend through the
// configured middleware chain.
type Client struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.notewire.dev")
	baseURL string
	// doer is the transport wrapped with the middleware chain
	doer Doer
}

// New creates a Client for the given base URL. Middlewares wrap the
// transport outermost-first, so the first middleware sees the request
// first and the response last.
func New(baseURL string, timeout time.Duration, mws ...Middleware) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := &http.Client{Timeout: timeout}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    Chain(base, mws...),
	}
}

// BaseURL returns the normalized base URL this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with a JSON body and decodes the JSON
// response into out. A nil body sends no payload; a nil out discards
// the response body.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// DeleteJSON issues a DELETE request and decodes the JSON response into out.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Do executes a raw request through the middleware chain. The response
// body is the caller's to close. Most callers want the JSON verbs.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, */*")
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, nwerrors.Wrap(nwerrors.Network, method+" "+path, err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nwerrors.Wrap(nwerrors.Network, method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// ErrorFromResponse turns a non-2xx response into the error the JSON
// verbs would return, consuming the body. Callers using Do directly
// use it to keep error semantics uniform.
func ErrorFromResponse(resp *http.Response) error {
	apiErr := newAPIError(resp)
	op := ""
	if resp.Request != nil {
		op = resp.Request.Method + " " + resp.Request.URL.Path
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nwerrors.Wrap(nwerrors.Unauthorized, op, apiErr)
	}
	return apiErr
}

// newAPIError builds an APIError from a non-2xx response, pulling the
// message out of common JSON error envelopes when present.
func newAPIError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(b) == 0 {
		return e
	}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(b, &envelope); jsonErr == nil {
		switch {
		case envelope.Error != "":
			e.Message = envelope.Error
			return e
		case envelope.Message != "":
			e.Message = envelope.Message
			return e
		}
	}
	e.Message = strings.TrimSpace(string(b))
	return e
}
