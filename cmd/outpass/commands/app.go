// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/config"
	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/shell"
)

// App carries the process environment every command runs in. Tests
// replace the streams, the configuration and the credential store.
type App struct {
	Context context.Context

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Config, when set, is used instead of --config or OUTPASS_CONFIG.
	Config *config.Config

	// Store, when set, replaces the configured credential store. The
	// caller owns it.
	Store credstore.Store

	HTTPClient *http.Client

	// Color enables ANSI styling of text output.
	Color bool

	// Logger, when set, replaces the command logger.
	Logger *slog.Logger
}

// NewApp returns an App bound to the process streams.
func NewApp(ctx context.Context) *App {
	return &App{
		Context: ctx,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Color:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (a *App) context() context.Context {
	if a.Context == nil {
		return context.Background()
	}
	return a.Context
}

// clientFlags are accepted by every command that talks to the service.
type clientFlags struct {
	ConfigPath string `json:"-" flag:"config"    desc:"configuration file (default: $OUTPASS_CONFIG)"`
	LogLevel   string `json:"-" flag:"log-level" desc:"override log.level (debug, info, warn, error)"`
}

// connection is one connected command invocation.
type connection struct {
	app    *App
	shell  *shell.Shell
	config *config.Config
	logger *slog.Logger

	closeStore func() error
}

func (a *App) loadConfig(flags clientFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case a.Config != nil:
		copied := *a.Config
		cfg = &copied
	case flags.ConfigPath != "":
		cfg, err = config.LoadFile(flags.ConfigPath)
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func (a *App) logger(level, command string) *slog.Logger {
	logger := a.Logger
	if logger == nil {
		logger = cli.NewCommandLogger(level)
	}
	return logger.With("command", command)
}

// connect loads the configuration, opens the credential store and
// starts a shell over it. The caller must Close the connection.
func (a *App) connect(flags clientFlags, command string) (*connection, error) {
	return a.connectWith(flags, command, nil)
}

// connectWith is connect with notifications delivered to sink (and the
// log) instead of the console.
func (a *App) connectWith(flags clientFlags, command string, sink notify.Sink) (*connection, error) {
	cfg, err := a.loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logger := a.logger(cfg.Log.Level, command)

	store := a.Store
	closeStore := func() error { return nil }
	if store == nil {
		backend, err := credstore.Open(credstore.Options{
			Backend:      cfg.Store.Backend,
			Path:         cfg.StorePath(),
			IdentityPath: cfg.IdentityPath(),
			Logger:       logger.With("component", "credstore"),
		})
		if err != nil {
			return nil, cli.FromError(err)
		}
		store = backend
		closeStore = backend.Close
	}

	if sink == nil {
		sink = &consoleSink{out: a.Stderr, logger: logger}
	} else {
		sink = notify.Tee(sink, notify.NewLogger(logger))
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		closeStore()
		return nil, cli.Validation("%w", err)
	}
	running, err := shell.New(a.context(), shell.Config{
		Store:      store,
		BaseURL:    cfg.API.BaseURL,
		ContentURL: cfg.API.ContentURL,
		Timeout:    timeout,
		HTTPClient: a.HTTPClient,
		Notify:     sink,
		Logger:     logger,
	})
	if err != nil {
		closeStore()
		return nil, cli.Internal("%w", err)
	}
	logger.Debug("connected",
		"api", cfg.API.BaseURL,
		"store", cfg.Store.Backend,
		"workspace", running.Router.Workspace())
	return &connection{
		app:        a,
		shell:      running,
		config:     cfg,
		logger:     logger,
		closeStore: closeStore,
	}, nil
}

func (r *connection) Close() {
	r.shell.Close()
	if err := r.closeStore(); err != nil {
		r.logger.Warn("closing credential store", "error", err)
	}
}

func (r *connection) ctx() context.Context {
	return r.app.context()
}

// role returns the logged-in role as a tool error when logged out.
func (r *connection) role() (session.Role, error) {
	role, err := r.shell.Role(r.ctx())
	if err != nil {
		return "", cli.FromError(err)
	}
	return role, nil
}

// requireRole refuses the command unless the session holds one of
// roles.
func (r *connection) requireRole(command string, roles ...session.Role) (session.Role, error) {
	role, err := r.role()
	if err != nil {
		return "", err
	}
	for _, allowed := range roles {
		if role == allowed {
			return role, nil
		}
	}
	return "", cli.Forbidden("%s is not available to the %s role", command, role)
}

// consoleSink prints notifications on stderr. Errors are logged only;
// the failing command returns them and main prints them once.
type consoleSink struct {
	out    io.Writer
	logger *slog.Logger
}

func (s *consoleSink) Notify(notification notify.Notification) {
	if notification.Level == notify.Error {
		s.logger.Debug("notification", "title", notification.Title, "message", notification.Message)
		return
	}
	if notification.Message == "" {
		fmt.Fprintln(s.out, notification.Title)
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n", notification.Title, notification.Message)
}
