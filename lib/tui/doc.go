// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements the outpass workspace viewer, a bubbletea
// program over a running [shell.Shell].
//
// The viewer has a navigation pane listing the screens of the mounted
// workspace (the active tab's screens for students), a content pane
// showing the current screen, and a status line with the most recent
// notification. The router decides what is on screen: the viewer asks
// it to navigate and reloads whenever it reports a screen, so a session
// invalidated mid-fetch lands the viewer on the logged-out workspace
// without any special casing.
//
// Approve and reject on the approval screens open a [ConfirmModal];
// nothing is submitted until it is accepted, and the list is re-fetched
// afterwards rather than edited locally.
//
// The package also holds the shared rendering pieces used by the CLI:
// the color [Theme], status badges, notice markdown rendering, and
// ANSI-aware overlay splicing.
package tui
