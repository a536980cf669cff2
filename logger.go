// Package appgridlog sends application log events to an AppGrid service.
//
// Events are filtered on the client against a configured minimum level,
// encoded into a {code, message, dimensions} payload and POSTed to
// {AppGridURL}/application/log/{level}. Nothing is batched, queued or
// retried: each call is exactly one HTTP request, or none when suppressed.
//
//	logger, err := appgridlog.New(appgridlog.Options{
//	    AppGridURL: "https://appgrid.example.com",
//	    AppKey:     "my-app",
//	    LogLevel:   "warn",
//	})
//	...
//	err = logger.Error(ctx, appgridlog.LogEventOptions{
//	    Message:      "playback failed",
//	    FacilityCode: 1,
//	    ErrorCode:    2,
//	    Dim4:         appgridlog.CurrentTimeOfDay(),
//	}, appgridlog.WithStack(err))
//
// The package-level LogDebug, LogInfo, LogWarn and LogError functions do the
// same with options passed on every call.
package appgridlog

import "context"

// Logger binds validated Options to the level functions.
type Logger struct {
	opts Options
}

// New validates opts once and returns a Logger using them. The UserID
// generated during validation is kept for the Logger's lifetime.
func New(opts Options) (*Logger, error) {
	validated, err := opts.Validate()
	if err != nil {
		return nil, err
	}
	return &Logger{opts: validated}, nil
}

// Options returns the validated options.
func (l *Logger) Options() Options {
	return l.opts
}

// IsEnabled reports whether events at severity would currently be sent.
func (l *Logger) IsEnabled(severity Severity) bool {
	return severity.CanEmit() && severity.IsEnabled(l.opts.Level())
}

// Log sends event at severity.
func (l *Logger) Log(ctx context.Context, severity Severity, event LogEventOptions, metadata ...any) error {
	return Dispatch(ctx, severity, l.opts, event, metadata...)
}

// Debug sends event at debug severity.
func (l *Logger) Debug(ctx context.Context, event LogEventOptions, metadata ...any) error {
	return LogDebug(ctx, l.opts, event, metadata...)
}

// Info sends event at info severity.
func (l *Logger) Info(ctx context.Context, event LogEventOptions, metadata ...any) error {
	return LogInfo(ctx, l.opts, event, metadata...)
}

// Warn sends event at warn severity.
func (l *Logger) Warn(ctx context.Context, event LogEventOptions, metadata ...any) error {
	return LogWarn(ctx, l.opts, event, metadata...)
}

// Error sends event at error severity.
func (l *Logger) Error(ctx context.Context, event LogEventOptions, metadata ...any) error {
	return LogError(ctx, l.opts, event, metadata...)
}

// RemoteLevel fetches the level configured on the AppGrid service.
func (l *Logger) RemoteLevel(ctx context.Context) (string, error) {
	return FetchRemoteLogLevel(ctx, l.opts)
}
