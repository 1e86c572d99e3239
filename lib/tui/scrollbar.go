// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Viewport describes which rows of a list are on screen.
type Viewport struct {
	// Height is the number of screen rows available.
	Height int

	// Total is the number of rows in the list.
	Total int

	// Offset is the index of the first visible row.
	Offset int
}

// Follow returns the viewport scrolled the minimum amount needed to keep
// row visible.
func (viewport Viewport) Follow(row int) Viewport {
	if viewport.Height <= 0 {
		return viewport
	}
	if row < viewport.Offset {
		viewport.Offset = row
	}
	if row >= viewport.Offset+viewport.Height {
		viewport.Offset = row - viewport.Height + 1
	}
	maxOffset := max(viewport.Total-viewport.Height, 0)
	viewport.Offset = min(max(viewport.Offset, 0), maxOffset)
	return viewport
}

// Visible returns the half-open row range [start, end) on screen.
func (viewport Viewport) Visible() (start, end int) {
	start = viewport.Offset
	end = min(start+viewport.Height, viewport.Total)
	return start, max(end, start)
}

// Scrollbar renders a one-column bar of viewport.Height rows whose thumb
// marks the visible region. When the list fits, the thumb fills the bar.
func (viewport Viewport) Scrollbar(theme Theme, focused bool) string {
	if viewport.Height <= 0 {
		return ""
	}
	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.AccentColor
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(thumbColor).Render("┃")

	thumbSize, thumbOffset := viewport.Height, 0
	if viewport.Total > viewport.Height {
		thumbSize = max(viewport.Height*viewport.Height/viewport.Total, 1)
		scrollable := viewport.Total - viewport.Height
		thumbOffset = min(viewport.Offset*(viewport.Height-thumbSize)/scrollable, viewport.Height-thumbSize)
	}

	lines := make([]string, viewport.Height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumb
		} else {
			lines[index] = track
		}
	}
	return strings.Join(lines, "\n")
}
