package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTool makes HTTP requests on behalf of a workflow: fetching data
// from REST APIs or posting to webhooks.
//
// Arguments:
//   - url: target URL (required)
//   - method: "GET" or "POST", defaults to "GET"
//   - headers: optional map of request headers
//   - body: optional request body string, for POST
//
// The result is the response body, truncated to maxBody bytes. Responses
// with status 400 and above are errors.
type HTTPTool struct {
	client  *http.Client
	maxBody int64
}

// NewHTTPTool creates an HTTP tool with a 15 second timeout and a 64 KiB
// response cap. Pass a custom client to override transport or timeout.
func NewHTTPTool(client *http.Client) *HTTPTool {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPTool{client: client, maxBody: 64 * 1024}
}

// Name returns the tool identifier.
func (h *HTTPTool) Name() string {
	return "http_request"
}

// Description returns the one-line summary used in prompts.
func (h *HTTPTool) Description() string {
	return "Fetch a URL with GET or POST and return the response body"
}

// Call executes the request described by args.
func (h *HTTPTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	urlStr, ok := args["url"].(string)
	if !ok || urlStr == "" {
		return "", fmt.Errorf("url parameter required (string)")
	}

	method := "GET"
	if m, ok := args["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	if method != http.MethodGet && method != http.MethodPost {
		return "", fmt.Errorf("unsupported HTTP method: %s (supported: GET, POST)", method)
	}

	var body io.Reader
	if bodyStr, ok := args["body"].(string); ok && bodyStr != "" {
		body = bytes.NewBufferString(bodyStr)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if headers, ok := args["headers"].(map[string]interface{}); ok {
		for key, value := range headers {
			if valueStr, ok := value.(string); ok {
				req.Header.Set(key, valueStr)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return string(respBody), nil
}
