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

	"github.com/lakehouselib/lakehouse"
)

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends req with the session's bearer token and decodes the response
// body into out when out is not nil. A status of 400 or above is returned as
// an *APIError; transport and decoding failures wrap
// lakehouse.ErrRequestTransport and lakehouse.ErrResponseParse.
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", lakehouse.ErrRequestTransport, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", lakehouse.ErrResponseParse, err)
	}
	return nil
}

const noErrorDetails = "No error details provided"

// parseAPIError builds an *APIError from a failed response. The detail is the
// JSON "detail" field when present, otherwise the raw body text.
func parseAPIError(statusCode int, body []byte) error {
	return &APIError{StatusCode: statusCode, Detail: errorDetail(body)}
}

func errorDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err == nil {
				return compact.String()
			}
			return string(raw)
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return noErrorDetails
}

// APIError is a failed API call.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", ErrAPIRequest, e.StatusCode, e.Detail)
}

// Is reports whether target is ErrAPIRequest or an *APIError with the same
// StatusCode.
func (e *APIError) Is(target error) bool {
	if target == ErrAPIRequest {
		return true
	}
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the token is missing or invalid (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the user lacks permission (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
