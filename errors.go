package appgridlog

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid appgrid configuration")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("appgrid transport failure")

	// ErrSerialization is matched by every *SerializationError.
	ErrSerialization = errors.New("appgrid event encoding failure")
)

// ConfigurationError reports malformed or incomplete Options.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("appgrid: invalid options: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// TransportError reports a network failure or a non-success HTTP response.
// StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("appgrid: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("appgrid: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("appgrid: %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// SerializationError reports a failure to encode an event.
type SerializationError struct {
	What string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("appgrid: failed to encode %s: %v", e.What, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }
