// Package client implements the outbound HTTP client for the CMS API.
//
// The client resolves every request path against a single base URL, attaches
// a bearer token from the credential store when asked to, and normalizes all
// failures into apperr.RequestError. It performs no retries and no local
// authorization gate: a missing token still sends the request and the server
// is the sole enforcer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
)

// TokenSource yields the current bearer token, if any. The credential store
// satisfies this; tests substitute fixed tokens.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a TokenSource holding a fixed token. An empty value means
// no token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() (string, bool) {
	return string(t), t != ""
}

// Client issues JSON requests against the CMS API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New creates a client for the given base URL. tokens may be nil when no
// authenticated path will be used.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one HTTP exchange and decodes the JSON response into out.
// body, when non-nil, is JSON-encoded and sent with a JSON content type.
// When requiresAuth is set and a token is available, an
// "Authorization: Bearer" header is attached; an absent token sends the
// request unauthenticated.
//
// Non-2xx responses yield a *apperr.RequestError whose message is the
// server's "message" field when the body parses as JSON, or the status text
// otherwise. There is no retry: every failure surfaces immediately.
func (c *Client) Request(ctx context.Context, method, path string, body any, requiresAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requiresAuth && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.NewRequestError(resp.StatusCode, errorMessage(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, requiresAuth bool, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, requiresAuth, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, requiresAuth bool, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, requiresAuth, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, requiresAuth bool, out any) error {
	return c.Request(ctx, http.MethodPut, path, body, requiresAuth, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, requiresAuth bool) error {
	return c.Request(ctx, http.MethodDelete, path, nil, requiresAuth, nil)
}

// errorMessage extracts the server-supplied message from an error response,
// falling back to the HTTP status text when the body is not the expected
// JSON shape.
func errorMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(resp.StatusCode)
}
