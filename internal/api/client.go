// Package api is the REST boundary of the console: a thin JSON client
// for the pousada backend plus the gatekeeper that authenticates
// outgoing requests and centrally reacts to session-ending failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the pousada backend REST API.
// It handles JSON marshaling and error classification; authentication
// is applied transparently by the Gatekeeper transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL (including the /api
// prefix). The transport is normally the Gatekeeper; passing nil uses
// the default transport.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, result)
	return err
}

// GetWithHeader is Get but also returns the response headers, for
// endpoints that carry pagination metadata in X-Total-Count.
func (c *Client) GetWithHeader(ctx context.Context, path string, query url.Values, result interface{}) (http.Header, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, result)
	return err
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	_, err := c.do(ctx, http.MethodPut, path, nil, body, result)
	return err
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) error {
	_, err := c.do(ctx, http.MethodPatch, path, nil, body, result)
	return err
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// GetBytes performs a GET and returns the raw response body, used for
// binary payloads such as PDF receipts and reports.
func (c *Client) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: backendMessage(data)}
	}

	return data, nil
}

// do is the core HTTP method: builds the request, executes it through
// the gatekeeper transport, classifies failures, and decodes JSON.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, &APIError{
			Status:  resp.StatusCode,
			Message: backendMessage(respBody),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return resp.Header, nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return resp.Header, fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return resp.Header, nil
}

// backendMessage extracts the human-readable message from an error
// body. The backend uses either "error" or "message".
func backendMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(body))
}
