// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/workspace"
)

// chromeHeight is the rows outside the body: header, separator, status
// line and help bar.
const chromeHeight = 4

// maxColumnWidth caps every column but the last.
const maxColumnWidth = 28

func (model Model) bodyHeight() int {
	return max(model.height-chromeHeight, 1)
}

// contentHeaderHeight is the rows the content pane spends above its row
// list: the title line and, when there are rows, the body block.
func (model Model) contentHeaderHeight() int {
	height := 1
	if model.content.Body != "" && len(model.content.Rows) > 0 {
		height += min(len(splitLines(model.content.Body)), model.bodyHeight()/2) + 1
	}
	return height
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	navigation := model.renderNavigation()
	divider := model.renderDivider()
	contentPane := model.renderContent()
	body := lipgloss.JoinHorizontal(lipgloss.Top, navigation, divider, contentPane)

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))

	output := strings.Join([]string{
		model.renderHeader(),
		body,
		separator,
		model.renderStatus(),
		model.renderHelp(),
	}, "\n")

	if model.confirm != nil {
		output = Center(output, model.confirm.View(), model.width, model.height)
	}
	return output
}

// renderHeader shows the workspace and, in a tabbed workspace, the tab
// bar with the active tab highlighted.
func (model Model) renderHeader() string {
	router := model.shell.Router
	current := router.Workspace()
	label := "Logged out"
	if role, ok := current.Role(); ok {
		label = role.DisplayName()
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).
		Render(" outpass · " + label)

	graph := router.Graph()
	if graph.Tabbed() {
		active := router.ActiveTab()
		var tabs []string
		for index, tab := range graph.Tabs {
			text := fmt.Sprintf(" %d %s ", index+1, tabLabel(tab.Name))
			style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
			if tab.Name == active {
				style = lipgloss.NewStyle().Bold(true).
					Foreground(model.theme.SelectedForeground).
					Background(model.theme.SelectedBackground)
			}
			tabs = append(tabs, style.Render(text))
		}
		header += "   " + strings.Join(tabs, " ")
	}
	return Truncate(header, model.width)
}

func tabLabel(name workspace.TabName) string {
	return strings.TrimSuffix(string(name), "Tab")
}

func (model Model) renderNavigation() string {
	width := navigationWidth - 1
	height := model.bodyHeight()
	screens := model.navigationScreens()
	graph := model.shell.Router.Graph()

	start, end := model.navViewport.Visible()
	lines := make([]string, 0, height)
	for index := start; index < end && index < len(screens); index++ {
		screen := screens[index]
		marker := "  "
		if screen == model.screen {
			marker = "• "
		}
		text := marker + screenTitle(screen)
		if screen == graph.Landing {
			text += " ⌂"
		}
		if _, gated := profile.ActionFor(screen); gated {
			text += " ◆"
		}
		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if index == model.navCursor && model.focus == FocusNavigation {
			style = style.Bold(true).
				Foreground(model.theme.SelectedForeground).
				Background(model.theme.SelectedBackground)
		}
		lines = append(lines, style.Render(padRight(Truncate(text, width), width)))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderDivider() string {
	style := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	lines := make([]string, model.bodyHeight())
	for index := range lines {
		lines[index] = style.Render("│")
	}
	return strings.Join(lines, "\n")
}

func (model Model) contentWidth() int {
	return max(model.width-navigationWidth-1, 10)
}

func (model Model) renderContent() string {
	width := model.contentWidth()
	height := model.bodyHeight()
	lines := make([]string, 0, height)

	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.AccentColor).
		Render(model.content.Title)
	if model.focus == FocusSearch || model.query != "" {
		title += lipgloss.NewStyle().Foreground(model.theme.HelpText).
			Render(fmt.Sprintf("   / %s", model.query))
		if model.focus == FocusSearch {
			title += "▏"
		}
	}
	lines = append(lines, " "+Truncate(title, width-1))

	switch {
	case model.loading:
		lines = append(lines, model.faint(" Loading..."))

	case model.loadErr != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.NotifyError).
			Render(" "+Truncate(model.loadErr.Error(), width-1)))

	case len(model.content.Rows) == 0:
		bodyLines := splitLines(model.content.Body)
		if len(bodyLines) == 0 && model.content.Empty != "" {
			bodyLines = []string{model.content.Empty}
		}
		start := min(model.bodyOffset, len(bodyLines))
		for _, line := range bodyLines[start:] {
			if len(lines) >= height {
				break
			}
			lines = append(lines, " "+Truncate(line, width-1))
		}

	default:
		if model.content.Body != "" {
			bodyLines := splitLines(model.content.Body)
			limit := model.contentHeaderHeight() - 2
			for _, line := range bodyLines[:min(limit, len(bodyLines))] {
				lines = append(lines, " "+Truncate(line, width-1))
			}
			lines = append(lines, "")
		}
		lines = append(lines, model.renderRows(width)...)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	for index, line := range lines[:height] {
		lines[index] = padRight(line, width)
	}
	return strings.Join(lines[:height], "\n")
}

// renderRows lays out the visible rows in aligned columns with a
// scrollbar on the right. Outpass rows lead with a status badge.
func (model Model) renderRows(width int) []string {
	if len(model.rows) == 0 {
		return []string{model.faint(" No matches.")}
	}

	rowsWidth := width - 2
	widths := columnWidths(model.rows)
	start, end := model.rowViewport.Visible()
	scrollbar := strings.Split(model.rowViewport.Scrollbar(model.theme, model.focus == FocusContent), "\n")

	lines := make([]string, 0, end-start)
	for index := start; index < end; index++ {
		current := model.rows[index]
		var cells []string
		if current.Record != nil {
			badge := model.theme.StatusBadge(current.Record.Status)
			if current.Record.Emergency() {
				badge += lipgloss.NewStyle().Bold(true).Foreground(model.theme.Emergency).Render(" !")
			}
			cells = append(cells, badge)
		}
		for column, cell := range current.Columns {
			if column < len(current.Columns)-1 {
				cell = padRight(Truncate(cell, widths[column]), widths[column])
			}
			cells = append(cells, cell)
		}
		text := " " + Truncate(strings.Join(cells, "  "), rowsWidth-1)
		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if index == model.rowCursor && model.focus != FocusNavigation {
			style = style.Foreground(model.theme.SelectedForeground).
				Background(model.theme.SelectedBackground)
		}
		line := style.Render(padRight(text, rowsWidth))
		if offset := index - start; offset < len(scrollbar) {
			line += " " + scrollbar[offset]
		}
		lines = append(lines, line)
	}
	return lines
}

// columnWidths sizes each column to its widest cell, capped at
// maxColumnWidth.
func columnWidths(rows []row) []int {
	var widths []int
	for _, current := range rows {
		for column, cell := range current.Columns {
			if column >= len(widths) {
				widths = append(widths, 0)
			}
			widths[column] = min(max(widths[column], ansi.StringWidth(cell)), maxColumnWidth)
		}
	}
	return widths
}

func padRight(text string, width int) string {
	if gap := width - ansi.StringWidth(text); gap > 0 {
		return text + strings.Repeat(" ", gap)
	}
	return text
}

func (model Model) faint(text string) string {
	return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(text)
}

// renderStatus shows the latest notification in its level's color.
func (model Model) renderStatus() string {
	if !model.hasStatus {
		return ""
	}
	text := model.status.Title
	if model.status.Message != "" {
		text += ": " + model.status.Message
	}
	return lipgloss.NewStyle().Bold(true).
		Foreground(model.theme.NotifyColor(model.status.Level)).
		Render(" " + Truncate(text, model.width-1))
}

func (model Model) renderHelp() string {
	focus := "NAV"
	switch model.focus {
	case FocusContent:
		focus = "CONTENT"
	case FocusSearch:
		focus = "SEARCH"
	case FocusConfirm:
		focus = "CONFIRM"
	}
	help := fmt.Sprintf(" [%s] q quit  ↑↓ move  enter open  ⌫ back  tab focus  / search  R refresh", focus)
	if model.shell.Router.Graph().Tabbed() {
		help += "  1-4 tabs"
	}
	if model.content.Queue != nil {
		help += "  a approve  r reject"
	}
	if len(model.rows) > 0 {
		help += fmt.Sprintf("  %d/%d", model.rowCursor+1, len(model.rows))
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(Truncate(help, model.width))
}
