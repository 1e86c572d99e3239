// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/outpass"
)

// Theme is the color palette of the viewer. All colors are ANSI 256
// codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Outpass status badges.
	StatusPending        lipgloss.Color
	StatusStaffApproved  lipgloss.Color
	StatusWardenApproved lipgloss.Color
	StatusApproved       lipgloss.Color
	StatusRejected       lipgloss.Color

	// Emergency marks emergency outpasses in every list.
	Emergency lipgloss.Color

	// Notification levels.
	NotifyInfo    lipgloss.Color
	NotifySuccess lipgloss.Color
	NotifyError   lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	AccentColor      lipgloss.Color
	HelpText         lipgloss.Color
	LinkForeground   lipgloss.Color

	ModalBackground lipgloss.Color
}

// StatusColor returns the badge color of an outpass status. Unknown
// statuses use FaintText.
func (theme Theme) StatusColor(status outpass.Status) lipgloss.Color {
	switch status {
	case outpass.StatusPending:
		return theme.StatusPending
	case outpass.StatusStaffApproved:
		return theme.StatusStaffApproved
	case outpass.StatusWardenApproved:
		return theme.StatusWardenApproved
	case outpass.StatusApproved:
		return theme.StatusApproved
	case outpass.StatusRejected:
		return theme.StatusRejected
	default:
		return theme.FaintText
	}
}

// NotifyColor returns the color of a notification level.
func (theme Theme) NotifyColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.Success:
		return theme.NotifySuccess
	case notify.Error:
		return theme.NotifyError
	default:
		return theme.NotifyInfo
	}
}

// StatusBadge renders the label of status in its color.
func (theme Theme) StatusBadge(status outpass.Status) string {
	return lipgloss.NewStyle().
		Foreground(theme.StatusColor(status)).
		Bold(true).
		Render(status.Label())
}

// DefaultTheme is the dark-terminal scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:        lipgloss.Color("214"), // amber
	StatusStaffApproved:  lipgloss.Color("75"),  // blue
	StatusWardenApproved: lipgloss.Color("141"), // purple
	StatusApproved:       lipgloss.Color("114"), // green
	StatusRejected:       lipgloss.Color("196"), // red

	Emergency: lipgloss.Color("196"),

	NotifyInfo:    lipgloss.Color("75"),
	NotifySuccess: lipgloss.Color("114"),
	NotifyError:   lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	AccentColor:      lipgloss.Color("220"),
	HelpText:         lipgloss.Color("241"),
	LinkForeground:   lipgloss.Color("75"),

	ModalBackground: lipgloss.Color("237"),
}
