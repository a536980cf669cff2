// Package selflog is the diagnostic side channel for appgridlog.
//
// The library never writes to stdout or stderr on its own. Outgoing request
// descriptions, debug-hook output and transport failures are routed here and
// dropped unless an output is configured:
//
//	selflog.Enable(os.Stderr)
//	defer selflog.Disable()
//
// or with a callback:
//
//	selflog.EnableFunc(func(line string) { t.Log(line) })
//
// Lines look like:
//
//	2025-01-29T15:30:45Z [appgrid] AppGrid: sendEvent request: https://appgrid.example/application/log/error
//
// Setting APPGRIDLOG_SELFLOG to "stderr", "stdout" or a file path enables
// output at startup.
package selflog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// EnvVar names the environment variable read at startup.
const EnvVar = "APPGRIDLOG_SELFLOG"

type output struct {
	w  io.Writer
	fn func(string)
}

var current atomic.Pointer[output]

// Enable writes diagnostics to w. Wrap non-thread-safe writers with Sync.
func Enable(w io.Writer) {
	if w == nil {
		return
	}
	current.Store(&output{w: w})
}

// EnableFunc passes each formatted diagnostic line to fn.
func EnableFunc(fn func(string)) {
	if fn == nil {
		return
	}
	current.Store(&output{fn: fn})
}

// Disable discards diagnostics.
func Disable() {
	current.Store(nil)
}

// IsEnabled reports whether an output is configured.
func IsEnabled() bool {
	return current.Load() != nil
}

// Printf records a diagnostic. By convention format starts with the
// component in brackets, e.g. "[transport] POST failed: %v".
func Printf(format string, args ...any) {
	out := current.Load()
	if out == nil {
		return
	}

	line := time.Now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)
	if out.fn != nil {
		out.fn(line)
		return
	}
	fmt.Fprintln(out.w, line)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sync serializes writes to w.
func Sync(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

func init() {
	switch dest := os.Getenv(EnvVar); dest {
	case "":
	case "stderr":
		Enable(os.Stderr)
	case "stdout":
		Enable(os.Stdout)
	default:
		if f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			Enable(Sync(f))
		}
	}
}
