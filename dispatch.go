package appgridlog

import (
	"context"
	"fmt"
)

// DispatchFunc sends one event at a fixed severity.
type DispatchFunc func(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error

// dispatchTable is built once and never mutated. Off has no entry.
var dispatchTable = buildDispatchTable()

func buildDispatchTable() map[Severity]DispatchFunc {
	table := make(map[Severity]DispatchFunc, len(emissionSeverities))
	for _, s := range emissionSeverities {
		table[s] = levelDispatcher(s)
	}
	return table
}

func levelDispatcher(severity Severity) DispatchFunc {
	return func(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error {
		validated, err := opts.Validate()
		if err != nil {
			return err
		}
		if validated.Level().Rank() > severity.Rank() {
			return nil
		}

		logEvent, err := BuildEvent(event, metadata)
		if err != nil {
			return err
		}
		validated.DebugLogger("Sending AppGrid log message:", logEvent)
		return sendEvent(ctx, validated, severity, logEvent)
	}
}

// Dispatcher returns the send function for severity. It reports false for
// Off and unknown severities.
func Dispatcher(severity Severity) (DispatchFunc, bool) {
	fn, ok := dispatchTable[severity]
	return fn, ok
}

// Dispatch sends event at severity unless the configured level suppresses it.
// Suppression returns nil without any network call.
func Dispatch(ctx context.Context, severity Severity, opts Options, event LogEventOptions, metadata ...any) error {
	fn, ok := Dispatcher(severity)
	if !ok {
		return fmt.Errorf("appgrid: cannot send events at severity %s", severity)
	}
	return fn(ctx, opts, event, metadata...)
}

// LogDebug sends event at debug severity.
func LogDebug(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error {
	return dispatchTable[Debug](ctx, opts, event, metadata...)
}

// LogInfo sends event at info severity.
func LogInfo(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error {
	return dispatchTable[Info](ctx, opts, event, metadata...)
}

// LogWarn sends event at warn severity.
func LogWarn(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error {
	return dispatchTable[Warn](ctx, opts, event, metadata...)
}

// LogError sends event at error severity.
func LogError(ctx context.Context, opts Options, event LogEventOptions, metadata ...any) error {
	return dispatchTable[Error](ctx, opts, event, metadata...)
}

// sendEvent expects validated options.
func sendEvent(ctx context.Context, opts Options, severity Severity, event LogEvent) error {
	url := opts.AppGridURL + "/application/log/" + severity.String()
	opts.DebugLogger("AppGrid: sendEvent request: " + url)
	return opts.Transport.Post(ctx, url, opts, event)
}
