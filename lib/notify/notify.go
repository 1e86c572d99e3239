// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify carries short, non-blocking user notifications
// ("Outpass approved", "Network error, try again") from the core to
// whatever presentation is attached.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Level is the severity of a notification.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Notification is one message for the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Sink accepts notifications. Implementations must not block the caller.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify calls f.
func (f SinkFunc) Notify(notification Notification) { f(notification) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// OrDiscard returns sink, or Discard when sink is nil.
func OrDiscard(sink Sink) Sink {
	if sink == nil {
		return Discard
	}
	return sink
}

// Logger writes notifications to a structured logger: errors at warn,
// everything else at info.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger sink writing to logger.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Notify logs the notification.
func (l *Logger) Notify(notification Notification) {
	level := slog.LevelInfo
	if notification.Level == Error {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, notification.Title,
		"kind", string(notification.Level),
		"message", notification.Message,
	)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

// Notify records the notification.
func (r *Recorder) Notify(notification Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification)
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notifications)
}

// Levels returns the level of each recorded notification.
func (r *Recorder) Levels() []Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	levels := make([]Level, len(r.notifications))
	for index, notification := range r.notifications {
		levels[index] = notification.Level
	}
	return levels
}

// Channel delivers notifications to a buffered channel for an event
// loop to drain. When the buffer is full the notification is dropped so
// that Notify never blocks.
type Channel struct {
	C chan Notification
}

// NewChannel returns a Channel buffering size notifications.
func NewChannel(size int) *Channel {
	return &Channel{C: make(chan Notification, size)}
}

// Notify enqueues the notification unless the buffer is full.
func (c *Channel) Notify(notification Notification) {
	select {
	case c.C <- notification:
	default:
	}
}

// Tee returns a sink forwarding to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var targets []Sink
	for _, sink := range sinks {
		if sink != nil {
			targets = append(targets, sink)
		}
	}
	return SinkFunc(func(notification Notification) {
		for _, sink := range targets {
			sink.Notify(notification)
		}
	})
}
