package appgridlog

import (
	"context"
	"encoding/json"
	"net/http"
)

type logLevelResponse struct {
	LogLevel string `json:"logLevel"`
}

// FetchRemoteLogLevel returns the logLevel field reported by
// GET {AppGridURL}/application/log/level. There is no local fallback: any
// validation, transport or decoding failure is returned.
func FetchRemoteLogLevel(ctx context.Context, opts Options) (string, error) {
	level, _, err := fetchRemoteLevel(ctx, opts)
	return level, err
}

// FetchRemoteSeverity is FetchRemoteLogLevel parsed into a Severity.
func FetchRemoteSeverity(ctx context.Context, opts Options) (Severity, error) {
	name, url, err := fetchRemoteLevel(ctx, opts)
	if err != nil {
		return Off, err
	}
	level, err := ParseSeverity(name)
	if err != nil {
		return Off, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}
	return level, nil
}

// fetchRemoteLevel also returns the URL queried so callers report the same
// address in later errors.
func fetchRemoteLevel(ctx context.Context, opts Options) (level, url string, err error) {
	validated, err := opts.Validate()
	if err != nil {
		return "", "", err
	}

	url = levelURL(validated)
	body, err := validated.Transport.Get(ctx, url, validated)
	if err != nil {
		return "", url, err
	}

	var resp logLevelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", url, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}
	return resp.LogLevel, url, nil
}

// levelURL expects validated options.
func levelURL(opts Options) string {
	return opts.AppGridURL + "/application/log/level"
}
