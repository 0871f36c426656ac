package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/msomdec/taskboard/internal/client"
	"github.com/msomdec/taskboard/internal/repository/sqlite"
	"github.com/msomdec/taskboard/internal/store"
)

var (
	errNotLoggedIn     = errors.New("not logged in (run: taskctl login)")
	errSessionRejected = errors.New("session expired, please log in again")
)

// app is the composition root of one taskctl invocation.
type app struct {
	db      *sqlite.DB
	api     *client.Client
	session *store.SessionStore
	tasks   *store.TaskStore

	stdin *os.File
	out   io.Writer
}

func newApp(ctx context.Context, apiURL, statePath string, stdin *os.File, out io.Writer) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(statePath), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sqlite.New(statePath)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateClient(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state database: %w", err)
	}

	storage := db.Storage()
	api := client.New(apiURL, storage)
	a := &app{
		db:      db,
		api:     api,
		session: store.NewSessionStore(api, storage),
		tasks:   store.NewTaskStore(api),
		stdin:   stdin,
		out:     out,
	}
	api.OnUnauthenticated(func() {
		a.session.HandleUnauthenticated()
		a.tasks.Reset()
	})

	a.session.LoadUser(ctx)
	slog.Debug("session loaded", "authenticated", a.session.IsAuthenticated(), "state", statePath)
	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("close state database", "error", err)
	}
}

// requireAuth gates commands that need a session.
func (a *app) requireAuth() error {
	if err := a.session.RequireAuth(); err != nil {
		return errNotLoggedIn
	}
	return nil
}

// taskFailure turns the task store's recorded error into a command error.
// A rejected session takes precedence.
func (a *app) taskFailure() error {
	if !a.session.IsAuthenticated() {
		return errSessionRejected
	}
	if msg := a.tasks.State().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

// sessionFailure reports the session store's recorded error, or err.
func (a *app) sessionFailure(err error) error {
	if msg := a.session.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}
