package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/api"
	"github.com/roach88/rchart/internal/config"
	"github.com/roach88/rchart/internal/metrics"
	"github.com/roach88/rchart/internal/store"
)

// env is everything a command needs once flags are parsed: configuration,
// a logger on stderr, the open store and the request boundary.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	reg   *prometheus.Registry
	store *store.Store
	api   *api.Boundary
	out   *OutputFormatter
}

// loadConfig applies flag overrides on top of env vars and the config file.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Database != "" {
		abs, err := filepath.Abs(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --db path", err)
		}
		cfg.DBFile = abs
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// openEnv loads configuration and opens the store through the boundary, so
// an open failure is reported like any other command failure.
func openEnv(cmd *cobra.Command, opts *RootOptions) (*env, error) {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg: cfg,
		log: newLogger(cmd.ErrOrStderr(), cfg),
		reg: prometheus.NewRegistry(),
		out: out,
	}
	e.api = api.New(api.Options{Logger: &e.log})
	rec := metrics.New(e.reg)

	e.log.Debug().Str("path", cfg.DBPath()).Str("driver", cfg.DBDriver).Msg("opening database")
	st, err := api.Invoke(cmd.Context(), e.api, "open", func(context.Context) (*store.Store, error) {
		return store.Open(cfg.DBPath(), store.Options{
			Driver:        cfg.DBDriver,
			EncryptionKey: cfg.DBKey,
			Logger:        &e.log,
			Metrics:       rec,
		})
	})
	if err != nil {
		return nil, e.fail(err)
	}
	e.store = st
	return e, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Error().Err(err).Msg("error closing database")
	}
}

// fail prints a boundary error in the output format and converts it to an
// exit error. Other errors pass through unchanged.
func (e *env) fail(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	_ = e.out.Error(string(apiErr.Code), apiErr.Message, apiErr.RequestID)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Message))
}

// invoke runs fn through the boundary on behalf of a command.
func invoke[T any](cmd *cobra.Command, e *env, command string, fn func(context.Context) (T, error)) (T, error) {
	v, err := api.Invoke(cmd.Context(), e.api, command, fn)
	if err != nil {
		return v, e.fail(err)
	}
	return v, nil
}

// withEnv adapts a command body that needs an open store to cobra's RunE.
func withEnv(opts *RootOptions, fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, opts)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

// notFound builds the store error a command returns when a lookup yields
// nothing, so the boundary reports NOT_FOUND.
func notFound(op, what string, id int64) error {
	return &store.Error{Kind: store.KindNotFound, Op: op, Err: fmt.Errorf("%s %d does not exist", what, id)}
}
