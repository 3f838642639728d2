// Package app wires configuration, backend, tools and the console into a
// runnable interactive session.
package app

import (
	"context"
	"errors"
	"io"

	"shellmind/internal/client"
	"shellmind/internal/config"
	"shellmind/internal/logging"
	"shellmind/internal/session"
	"shellmind/internal/ui"
)

// App is the interactive application.
type App struct {
	cfg     *config.Config
	console *ui.Console
	client  client.Client
	session *session.Session
	closers []io.Closer
}

// New builds an App for workDir.
func New(ctx context.Context, cfg *config.Config, workDir string) (*App, error) {
	return NewBuilder(cfg, workDir).Build(ctx)
}

// Run prints the banner and runs the session until exit.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.session == nil {
		return errNotBuilt
	}
	defer a.Close()

	a.console.Banner(a.cfg.Version, a.client.Model())
	logging.Info("session started", "session_id", a.session.ID(), "model", a.client.Model(), "api_type", a.cfg.API.Type)

	err := a.session.Run(ctx)
	logging.Info("session ended", "session_id", a.session.ID(), "turns", a.session.History().Len())
	return err
}

// Session returns the underlying session.
func (a *App) Session() *session.Session {
	return a.session
}

// Close releases every component in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Prompt sends a single request without history or tools and writes the
// raw reply to w.
func Prompt(ctx context.Context, cfg *config.Config, text string, w io.Writer) error {
	c, err := client.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	reply, err := c.Generate(ctx, text, nil)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, reply+"\n")
	return err
}
