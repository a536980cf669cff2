package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willibrandon/appgridlog"
	"github.com/willibrandon/appgridlog/configuration"
)

type rootFlags struct {
	configFile string
	verbose    bool
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "appgridlog",
		Short:         "Send log events to AppGrid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := configuration.NewViper(flags.configFile)
			if err != nil {
				return err
			}
			for flag, key := range map[string]string{
				"url":       "url",
				"app-key":   "app_key",
				"user-id":   "user_id",
				"log-level": "log_level",
				"timeout":   "timeout",
				"compress":  "compress",
			} {
				if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
					return fmt.Errorf("error binding flag %s: %w", flag, err)
				}
			}
			flags.v = v
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: ./appgrid.yaml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "print outgoing requests")
	pf.String("url", "", "AppGrid base URL")
	pf.String("app-key", "", "application id sent as X-Application-Id")
	pf.String("user-id", "", "user id sent as X-User-Id")
	pf.String("log-level", appgridlog.DefaultLogLevel, "minimum level sent (debug|info|warn|error|off)")
	pf.Duration("timeout", appgridlog.DefaultTimeout, "per-request timeout")
	pf.Bool("compress", false, "gzip request bodies")

	root.AddCommand(newSendCmd(flags), newLevelCmd(flags))
	return root
}

func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (f *rootFlags) options(cmd *cobra.Command) (appgridlog.Options, error) {
	opts, err := configuration.Unmarshal(f.v)
	if err != nil {
		return appgridlog.Options{}, err
	}
	opts.DebugLogger = appgridlog.SlogDebugLogger(f.logger(cmd))
	return opts, nil
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	var (
		level     string
		event     appgridlog.LogEventOptions
		dims      [4]string
		timeOfDay bool
		metadata  []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one log event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			severity, err := appgridlog.ParseSeverity(level)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			for i, dim := range dims {
				if dim != "" {
					setDim(&event, i, dim)
				}
			}
			if timeOfDay {
				event.Dim4 = appgridlog.TimeOfDay(time.Now())
			}

			items := make([]any, len(metadata))
			for i, m := range metadata {
				items[i] = m
			}

			logger := flags.logger(cmd)
			if err := appgridlog.Dispatch(cmd.Context(), severity, opts, event, items...); err != nil {
				return err
			}
			if !severity.IsEnabled(opts.Level()) {
				logger.Info("event suppressed by configured level", "level", severity, "configured", opts.Level())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&level, "level", "l", "info", "event severity (debug|info|warn|error)")
	f.StringVarP(&event.Message, "message", "m", "", "event message")
	f.IntVar(&event.FacilityCode, "facility", 0, "facility code")
	f.IntVar(&event.ErrorCode, "code", 0, "error code")
	f.StringVar(&dims[0], "dim1", "", "dimension 1")
	f.StringVar(&dims[1], "dim2", "", "dimension 2")
	f.StringVar(&dims[2], "dim3", "", "dimension 3")
	f.StringVar(&dims[3], "dim4", "", "dimension 4")
	f.BoolVar(&timeOfDay, "time-of-day", false, "set dim4 to the current time-of-day bucket")
	f.StringArrayVar(&metadata, "meta", nil, "metadata item (repeatable)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func setDim(event *appgridlog.LogEventOptions, i int, value string) {
	switch i {
	case 0:
		event.Dim1 = value
	case 1:
		event.Dim2 = value
	case 2:
		event.Dim3 = value
	case 3:
		event.Dim4 = value
	}
}

func newLevelCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "level",
		Short: "Print the log level configured on AppGrid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			level, err := appgridlog.FetchRemoteLogLevel(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), level)
			return nil
		},
	}
}
