package appgridlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"

	"github.com/willibrandon/appgridlog/selflog"
)

// maxErrorBody caps how much of a failed response is kept in a TransportError.
const maxErrorBody = 4 << 10

// Transport performs the HTTP calls behind Dispatch and FetchRemoteLogLevel.
// Implementations must return *TransportError for network failures and
// non-success responses.
type Transport interface {
	// Get fetches url and returns the response body.
	Get(ctx context.Context, url string, opts Options) ([]byte, error)

	// Post sends body as JSON to url.
	Post(ctx context.Context, url string, opts Options, body any) error
}

// HTTPTransport is the net/http Transport. The zero value is ready to use.
type HTTPTransport struct {
	// Client is used when Options.HTTPClient is nil.
	Client *http.Client
}

// Get implements Transport.
func (t HTTPTransport) Get(ctx context.Context, url string, opts Options) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}
	setHeaders(req, opts)

	return t.do(req, opts)
}

// Post implements Transport.
func (t HTTPTransport) Post(ctx context.Context, url string, opts Options, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &SerializationError{What: "request body", Err: err}
	}

	var reader io.Reader = bytes.NewReader(payload)
	if opts.Compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(payload); err != nil {
			return &SerializationError{What: "compressed body", Err: err}
		}
		if err := gz.Close(); err != nil {
			return &SerializationError{What: "compressed body", Err: err}
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return &TransportError{Method: http.MethodPost, URL: url, Err: err}
	}
	setHeaders(req, opts)
	req.Header.Set("Content-Type", "application/json")
	if opts.Compress {
		req.Header.Set("Content-Encoding", "gzip")
	}

	_, err = t.do(req, opts)
	return err
}

func (t HTTPTransport) do(req *http.Request, opts Options) ([]byte, error) {
	resp, err := t.client(opts).Do(req)
	if err != nil {
		selflog.Printf("[transport] %s %s failed: %v", req.Method, req.URL, err)
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		selflog.Printf("[transport] %s %s returned status %d", req.Method, req.URL, resp.StatusCode)
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       errorMessage(body),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

func (t HTTPTransport) client(opts Options) *http.Client {
	switch {
	case opts.HTTPClient != nil:
		return opts.HTTPClient
	case t.Client != nil:
		return t.Client
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func setHeaders(req *http.Request, opts Options) {
	req.Header.Set("Accept", "application/json")
	if opts.AppKey != "" {
		req.Header.Set("X-Application-Id", opts.AppKey)
	}
	if opts.UserID != "" {
		req.Header.Set("X-User-Id", opts.UserID)
	}
}

// errorMessage prefers the "message" or "error" field of a JSON error body.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(bytes.TrimSpace(body))
}
