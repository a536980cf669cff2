package appgridlog

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/willibrandon/appgridlog/selflog"
)

const (
	// DefaultLogLevel applies when Options.LogLevel is empty.
	DefaultLogLevel = "info"

	// DefaultTimeout bounds each HTTP call made by HTTPTransport.
	DefaultTimeout = 30 * time.Second
)

// DebugLogger receives local diagnostics about outgoing events.
type DebugLogger func(msg string, args ...any)

// Options configures where and how events are sent. Options are read-only
// input to every call and are never retained.
type Options struct {
	// AppGridURL is the base URL of the AppGrid service.
	AppGridURL string `mapstructure:"url" validate:"required,url"`

	// AppKey identifies the application and is sent as X-Application-Id.
	AppKey string `mapstructure:"app_key"`

	// UserID is sent as X-User-Id. A random UUID is used when empty.
	UserID string `mapstructure:"user_id" validate:"omitempty,max=128"`

	// LogLevel is the minimum severity sent: debug, info, warn, error or off.
	LogLevel string `mapstructure:"log_level" validate:"required,severity"`

	// LevelSwitch, when set, overrides LogLevel at call time.
	LevelSwitch *LevelSwitch `mapstructure:"-" validate:"-"`

	// DebugLogger receives outgoing request descriptions.
	// Defaults to writing through selflog.
	DebugLogger DebugLogger `mapstructure:"-" validate:"-"`

	// Timeout bounds each HTTP call. Defaults to DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Compress gzips request bodies.
	Compress bool `mapstructure:"compress"`

	// HTTPClient overrides the client used by HTTPTransport.
	HTTPClient *http.Client `mapstructure:"-" validate:"-"`

	// Transport performs the HTTP calls. Defaults to HTTPTransport.
	Transport Transport `mapstructure:"-" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		_, err := ParseSeverity(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("appgridlog: register severity validation: %v", err))
	}
	return v
}

// Validate checks o and returns a copy with defaults filled in. Failures
// are returned as *ConfigurationError.
func (o Options) Validate() (Options, error) {
	if o.LogLevel == "" {
		o.LogLevel = DefaultLogLevel
	}
	if err := validate.Struct(o); err != nil {
		return Options{}, &ConfigurationError{Err: err}
	}

	o.AppGridURL = strings.TrimRight(o.AppGridURL, "/")
	if o.UserID == "" {
		o.UserID = uuid.NewString()
	}
	if o.DebugLogger == nil {
		o.DebugLogger = selflogDebugLogger
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Transport == nil {
		o.Transport = HTTPTransport{}
	}
	return o, nil
}

// Level returns the minimum severity in effect for this call.
func (o Options) Level() Severity {
	if o.LevelSwitch != nil {
		return o.LevelSwitch.Level()
	}
	level, err := ParseSeverity(o.LogLevel)
	if err != nil {
		return Off
	}
	return level
}

func selflogDebugLogger(msg string, args ...any) {
	if !selflog.IsEnabled() {
		return
	}
	if len(args) == 0 {
		selflog.Printf("[appgrid] %s", msg)
		return
	}
	selflog.Printf("[appgrid] %s %s", msg, fmt.Sprint(args...))
}
