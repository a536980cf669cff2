package appgridlog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Attribute keys SlogHandler lifts out of a record into the event itself.
// All other attributes are sent as one metadata object.
const (
	SlogKeyFacilityCode = "facilityCode"
	SlogKeyErrorCode    = "errorCode"
	SlogKeyDim1         = "dim1"
	SlogKeyDim2         = "dim2"
	SlogKeyDim3         = "dim3"
	SlogKeyDim4         = "dim4"
)

// SlogHandler implements slog.Handler by sending each record to AppGrid.
type SlogHandler struct {
	logger *Logger
	attrs  []slog.Attr
	groups []string
}

// NewSlogHandler creates a handler that sends records through logger.
func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger is slog.New(NewSlogHandler(logger)).
func NewSlogLogger(logger *Logger) *slog.Logger {
	return slog.New(NewSlogHandler(logger))
}

// Enabled reports whether the configured level lets the record through.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsEnabled(SeverityFromSlog(level))
}

// Handle sends the record. Transport failures are returned to slog.
func (h *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	event := LogEventOptions{Message: record.Message}
	props := make(map[string]any)

	apply := func(key string, v slog.Value) {
		value := slogValue(v)
		switch key {
		case SlogKeyFacilityCode:
			if n, ok := asInt(value); ok {
				event.FacilityCode = n
				return
			}
		case SlogKeyErrorCode:
			if n, ok := asInt(value); ok {
				event.ErrorCode = n
				return
			}
		case SlogKeyDim1:
			event.Dim1 = value
			return
		case SlogKeyDim2:
			event.Dim2 = value
			return
		case SlogKeyDim3:
			event.Dim3 = value
			return
		case SlogKeyDim4:
			event.Dim4 = value
			return
		}
		props[key] = value
	}

	for _, attr := range h.attrs {
		apply(attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		if !attr.Equal(slog.Attr{}) {
			apply(h.formatKey(attr.Key), attr.Value)
		}
		return true
	})

	var metadata []any
	if len(props) > 0 {
		metadata = append(metadata, props)
	}
	return h.logger.Log(ctx, SeverityFromSlog(record.Level), event, metadata...)
}

// WithAttrs returns a handler that adds attrs to every record. Keys are
// prefixed with the groups open at this point.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, attr := range attrs {
		prefixed = append(prefixed, slog.Attr{Key: h.formatKey(attr.Key), Value: attr.Value})
	}
	return &SlogHandler{logger: h.logger, attrs: prefixed, groups: h.groups}
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, len(h.groups)+1)
	copy(groups, h.groups)
	groups[len(h.groups)] = name
	return &SlogHandler{logger: h.logger, attrs: h.attrs, groups: groups}
}

func (h *SlogHandler) formatKey(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// SeverityFromSlog maps slog levels onto the four emission severities.
func SeverityFromSlog(level slog.Level) Severity {
	switch {
	case level < slog.LevelInfo:
		return Debug
	case level < slog.LevelWarn:
		return Info
	case level < slog.LevelError:
		return Warn
	default:
		return Error
	}
}

// SlogDebugLogger adapts logger to the DebugLogger hook. Messages are
// written at slog's debug level.
func SlogDebugLogger(logger *slog.Logger) DebugLogger {
	return func(msg string, args ...any) {
		if len(args) == 0 {
			logger.Debug(msg)
			return
		}
		logger.Debug(msg, "details", fmt.Sprint(args...))
	}
}

func slogValue(v slog.Value) any {
	v = v.Resolve()
	if v.Kind() != slog.KindGroup {
		return v.Any()
	}
	group := make(map[string]any, len(v.Group()))
	for _, attr := range v.Group() {
		group[attr.Key] = slogValue(attr.Value)
	}
	return group
}

// asInt reports false for values that do not fit in an int, leaving them
// in metadata.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
