// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell assembles the client runtime: one credential store, the
// session manager over it, the workspace router observing the manager,
// and the portal transport reporting authorization failures back to the
// manager. The profile gate guards the router.
//
// Subscription order is fixed: the router resets before any other
// observer (the gate, the notification sink) sees a change, so every
// observer reads the new workspace.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/workspace"
	"github.com/bureau-foundation/outpass/portal"
)

// ErrLoggedOut is returned by operations that need a session.
var ErrLoggedOut = errors.New("not logged in")

// Config configures a Shell.
type Config struct {
	// Store is the credential store. Required; the caller closes it.
	Store credstore.Store

	BaseURL    string
	ContentURL string
	Timeout    time.Duration
	HTTPClient *http.Client

	// Notify receives user notifications. Optional.
	Notify notify.Sink

	Logger *slog.Logger
}

// Shell is a running client.
type Shell struct {
	Sessions *session.Manager
	Router   *workspace.Router
	Portal   *portal.Client
	Gate     *profile.Gate

	notify      notify.Sink
	logger      *slog.Logger
	unsubscribe []func()
}

// New wires the runtime and mounts the router on the workspace of the
// stored session.
func New(ctx context.Context, config Config) (*Shell, error) {
	if config.Store == nil {
		return nil, errors.New("shell: Config.Store is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	manager := session.NewManager(config.Store, logger.With("component", "session"))
	client, err := portal.New(portal.Config{
		BaseURL:      config.BaseURL,
		ContentURL:   config.ContentURL,
		Store:        config.Store,
		Timeout:      config.Timeout,
		HTTPClient:   config.HTTPClient,
		Invalidation: manager,
		Logger:       logger.With("component", "portal"),
	})
	if err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}

	shell := &Shell{
		Sessions: manager,
		Router:   workspace.NewRouter(logger.With("component", "router")),
		Portal:   client,
		Gate:     profile.NewGate(),
		notify:   notify.OrDiscard(config.Notify),
		logger:   logger,
	}
	shell.unsubscribe = append(shell.unsubscribe,
		manager.Subscribe(shell.Router.OnSessionChange),
		manager.Subscribe(shell.onSessionChange),
	)
	shell.Router.SetGuard(shell.Gate.Guard)
	shell.Router.Mount(workspace.For(manager.Current(ctx)))
	return shell, nil
}

func (s *Shell) onSessionChange(change session.Change) {
	s.Gate.SetProfile(nil)
	if change.Cause == session.CauseInvalidated {
		s.notify.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Session expired",
			Message: "Please log in again.",
		})
	}
}

// Close detaches the shell's observers from the session manager.
func (s *Shell) Close() {
	for _, cancel := range s.unsubscribe {
		cancel()
	}
	s.unsubscribe = nil
}

// Session resolves the stored session.
func (s *Shell) Session(ctx context.Context) session.Session {
	return s.Sessions.Current(ctx)
}

// Role returns the logged-in role, or ErrLoggedOut.
func (s *Shell) Role(ctx context.Context) (session.Role, error) {
	current := s.Session(ctx)
	if !current.LoggedIn {
		return "", ErrLoggedOut
	}
	return current.Role, nil
}

// Login authenticates against role's login endpoint and persists the
// session. The router moves to the role's workspace.
func (s *Shell) Login(ctx context.Context, role session.Role, credentials portal.Credentials) (session.Session, error) {
	token, err := s.Portal.Login(ctx, role, credentials)
	if err != nil {
		return session.Session{}, err
	}
	return s.Sessions.Login(ctx, role, token)
}

// Logout clears the session. The router returns to the auth workspace.
func (s *Shell) Logout(ctx context.Context) error {
	return s.Sessions.Logout(ctx)
}

// LoadStudentProfile fetches the student's profile and hands it to the
// gate.
func (s *Shell) LoadStudentProfile(ctx context.Context) (profile.Student, error) {
	student, err := s.Portal.StudentProfile(ctx)
	if err != nil {
		return nil, err
	}
	s.Gate.SetProfile(student)
	return student, nil
}

// CheckStudentAction loads the profile when the gate has none and
// checks action against it.
func (s *Shell) CheckStudentAction(ctx context.Context, action profile.Action) error {
	role, err := s.Role(ctx)
	if err != nil {
		return err
	}
	if role != session.Student {
		return nil
	}
	if s.Gate.Profile() == nil {
		if _, err := s.LoadStudentProfile(ctx); err != nil {
			return err
		}
	}
	return s.Gate.Check(action)
}

// SubmitOutpass files request once the profile gate allows it.
func (s *Shell) SubmitOutpass(ctx context.Context, request outpass.NewRequest) error {
	if err := s.CheckStudentAction(ctx, profile.CreateOutpass); err != nil {
		return err
	}
	if err := s.Portal.SubmitOutpass(ctx, request); err != nil {
		s.notify.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Failed to submit outpass",
			Message: portal.MessageOf(err),
		})
		return err
	}
	s.notify.Notify(notify.Notification{Level: notify.Success, Title: "Outpass submitted successfully"})
	return nil
}

// PendingQueue returns the approval queue of role.
func (s *Shell) PendingQueue(role session.Role, confirm outpass.Confirmer) (*outpass.Queue, error) {
	return outpass.NewQueue(outpass.QueueConfig{
		Role:    role,
		Fetch:   s.Portal.PendingFetcher(role),
		Act:     s.Portal.Actor(role),
		Confirm: confirm,
		Notify:  s.notify,
		Logger:  s.logger.With("component", "queue"),
	})
}

// HistoryQueue returns the read-only outpass list of role.
func (s *Shell) HistoryQueue(role session.Role) (*outpass.Queue, error) {
	return outpass.NewQueue(outpass.QueueConfig{
		Role:   role,
		Fetch:  s.Portal.HistoryFetcher(role),
		Notify: s.notify,
		Logger: s.logger.With("component", "queue"),
	})
}

// StudentDashboard is the student landing screen's data.
type StudentDashboard struct {
	Profile Settled[profile.Student]
	Notices Settled[[]portal.Notice]
}

// LoadStudentDashboard fetches the profile and the notices together.
// A fetched profile also feeds the gate.
func (s *Shell) LoadStudentDashboard(ctx context.Context) StudentDashboard {
	profileResult, noticesResult := Both(ctx, s.Portal.StudentProfile,
		func(ctx context.Context) ([]portal.Notice, error) {
			return s.Portal.Notices(ctx, session.Student)
		})
	if profileResult.OK() {
		s.Gate.SetProfile(profileResult.Value)
	}
	s.reportFailures(profileResult.Err, noticesResult.Err)
	return StudentDashboard{Profile: profileResult, Notices: noticesResult}
}

// AdminDashboard is the admin landing screen's data.
type AdminDashboard struct {
	Profile Settled[portal.Member]
	Stats   Settled[portal.Stats]
}

// LoadAdminDashboard fetches the admin profile and the counts together.
func (s *Shell) LoadAdminDashboard(ctx context.Context) AdminDashboard {
	profileResult, statsResult := Both(ctx,
		func(ctx context.Context) (portal.Member, error) {
			return s.Portal.MemberProfile(ctx, session.Admin)
		},
		s.Portal.AdminStats)
	s.reportFailures(profileResult.Err, statsResult.Err)
	return AdminDashboard{Profile: profileResult, Stats: statsResult}
}

func (s *Shell) reportFailures(errs ...error) {
	for _, err := range errs {
		if err == nil || portal.IsInvalidated(err) {
			continue
		}
		s.notify.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Failed to load dashboard",
			Message: portal.MessageOf(err),
		})
	}
}
