package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// transport issues authenticated requests against a storage endpoint.
// baseURL and headers are fixed at construction, so a transport is safe
// for concurrent use. It performs no retries and imposes no timeout
// beyond the http.Client default.
type transport struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

func newTransport(baseURL string, headers map[string]string) *transport {
	return &transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    mergeHeaders(defaultHeaders(), headers),
		httpClient: &http.Client{},
	}
}

// withHeaders returns a copy of the transport with extra headers merged
// into every request. The receiver is left untouched.
func (t *transport) withHeaders(headers map[string]string) *transport {
	return &transport{
		baseURL:    t.baseURL,
		headers:    mergeHeaders(t.headers, headers),
		httpClient: t.httpClient,
	}
}

// newRequest builds a request for path below the endpoint carrying the
// merged header set. Per-call override headers win on key collision.
func (t *transport) newRequest(ctx context.Context, method, path string, body io.Reader, override map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range mergeHeaders(t.headers, override) {
		req.Header.Set(k, v)
	}
	return req, nil
}

// newJSONRequest marshals body and builds a request carrying it.
func (t *transport) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return t.newRequest(ctx, method, path, bytes.NewReader(buf), nil)
}

// do sends req and, when out is non-nil, decodes the JSON response
// into it. A 2xx body that fails to decode is an error. A 4xx/5xx
// response comes back as an [*Error]; transport failures are returned
// as-is from the HTTP client.
func (t *transport) do(req *http.Request, out any) error {
	body, err := t.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// doRaw sends req and returns the response body verbatim, with the
// same status and transport error handling as do.
func (t *transport) doRaw(req *http.Request) ([]byte, error) {
	return t.send(req)
}

func (t *transport) send(req *http.Request) ([]byte, error) {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, body)
	}
	return body, nil
}

// newError decodes the service error body ({statusCode, error,
// message}) into a [*Error], falling back to the raw body when the
// service did not send JSON.
func newError(status int, body []byte) *Error {
	se := &Error{StatusCode: status}

	var payload struct {
		ErrorCode string `json:"error"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Message != "" || payload.ErrorCode != "") {
		se.ErrorCode = payload.ErrorCode
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.ErrorCode
		}
		return se
	}

	se.Message = strings.TrimSpace(string(body))
	if se.Message == "" {
		se.Message = http.StatusText(status)
	}
	return se
}
