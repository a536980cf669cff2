// Package configuration loads appgridlog Options from a config file and the
// environment.
//
// Keys (file or APPGRID_-prefixed environment variable):
//
//	url        APPGRID_URL        AppGrid base URL (required)
//	app_key    APPGRID_APP_KEY    sent as X-Application-Id
//	user_id    APPGRID_USER_ID    sent as X-User-Id
//	log_level  APPGRID_LOG_LEVEL  debug, info, warn, error or off (default info)
//	timeout    APPGRID_TIMEOUT    per-request timeout, e.g. "10s" (default 30s)
//	compress   APPGRID_COMPRESS   gzip request bodies (default false)
//
// Environment variables take precedence over the file.
package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/willibrandon/appgridlog"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "APPGRID"

// Keys lists every configuration key.
var Keys = []string{"url", "app_key", "user_id", "log_level", "timeout", "compress"}

// NewViper returns a viper instance with defaults, the optional config file
// and environment bindings applied. An empty configPath searches for
// appgrid.{yaml,json,toml} in the working directory and $HOME/.config/appgrid;
// a missing file is only an error when configPath is explicit.
func NewViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("log_level", appgridlog.DefaultLogLevel)
	v.SetDefault("timeout", appgridlog.DefaultTimeout)
	v.SetDefault("compress", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("appgrid")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/appgrid")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range Keys {
		envVar := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	return v, nil
}

// Unmarshal decodes and validates the options held by v.
func Unmarshal(v *viper.Viper) (appgridlog.Options, error) {
	var opts appgridlog.Options
	if err := v.Unmarshal(&opts); err != nil {
		return appgridlog.Options{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validated, err := opts.Validate()
	if err != nil {
		return appgridlog.Options{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return validated, nil
}

// Load is NewViper followed by Unmarshal.
func Load(configPath string) (appgridlog.Options, error) {
	v, err := NewViper(configPath)
	if err != nil {
		return appgridlog.Options{}, err
	}
	return Unmarshal(v)
}
