// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmKeys are the bindings of the confirmation modal.
type ConfirmKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys accept y/enter and refuse n/esc.
var DefaultConfirmKeys = ConfirmKeys{
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc", "q"),
		key.WithHelp("n", "cancel"),
	),
}

// ConfirmResult is the state of a confirmation modal.
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmAccepted
	ConfirmDeclined
)

// ConfirmModal asks a yes/no question before a state-changing action.
// Destructive modals (reject, delete) draw their confirm label in the
// error color.
type ConfirmModal struct {
	Title        string
	Message      string
	ConfirmLabel string
	Destructive  bool

	keys   ConfirmKeys
	theme  Theme
	result ConfirmResult
}

// NewConfirmModal returns a pending modal.
func NewConfirmModal(title, message, confirmLabel string, destructive bool, theme Theme) ConfirmModal {
	return ConfirmModal{
		Title:        title,
		Message:      message,
		ConfirmLabel: confirmLabel,
		Destructive:  destructive,
		keys:         DefaultConfirmKeys,
		theme:        theme,
	}
}

// Update consumes a key press and reports the resulting state.
func (modal *ConfirmModal) Update(message tea.KeyMsg) ConfirmResult {
	if modal.result != ConfirmPending {
		return modal.result
	}
	switch {
	case key.Matches(message, modal.keys.Confirm):
		modal.result = ConfirmAccepted
	case key.Matches(message, modal.keys.Cancel):
		modal.result = ConfirmDeclined
	}
	return modal.result
}

// Result returns the current state.
func (modal ConfirmModal) Result() ConfirmResult {
	return modal.result
}

// View renders the modal box.
func (modal ConfirmModal) View() string {
	confirmColor := modal.theme.NotifySuccess
	if modal.Destructive {
		confirmColor = modal.theme.NotifyError
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(modal.theme.HeaderForeground).Render(modal.Title)
	body := lipgloss.NewStyle().Foreground(modal.theme.NormalText).Render(modal.Message)
	confirm := lipgloss.NewStyle().Bold(true).Foreground(confirmColor).
		Render("[" + modal.keys.Confirm.Help().Key + "] " + modal.ConfirmLabel)
	cancel := lipgloss.NewStyle().Foreground(modal.theme.HelpText).
		Render("[" + modal.keys.Cancel.Help().Key + "] Cancel")

	content := strings.Join([]string{title, "", body, "", confirm + "   " + cancel}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		Background(modal.theme.ModalBackground).
		Padding(1, 2).
		Render(content)
}
