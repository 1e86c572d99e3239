// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Center places box in the middle of a rendered view of the given
// size, keeping the view visible around it.
func Center(view, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, line := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(line))
	}
	anchorX := max((width-boxWidth)/2, 0)
	anchorY := max((height-len(boxLines))/2, 0)
	return Splice(view, boxLines, anchorX, anchorY)
}

// Splice replaces a rectangle of view with overlay lines, anchored at
// (anchorX, anchorY). Escape sequences on both sides of the rectangle
// survive. View lines shorter than the anchor are padded; rows past
// the end of view are appended.
func Splice(view string, overlay []string, anchorX, anchorY int) string {
	if len(overlay) == 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	for len(lines) < anchorY+len(overlay) {
		lines = append(lines, "")
	}

	for index, overlayLine := range overlay {
		row := anchorY + index
		if row < 0 {
			continue
		}
		line := lines[row]
		lineWidth := ansi.StringWidth(line)
		overlayWidth := ansi.StringWidth(overlayLine)

		var builder strings.Builder
		if lineWidth >= anchorX {
			builder.WriteString(ansi.Truncate(line, anchorX, ""))
		} else {
			builder.WriteString(line)
			builder.WriteString(strings.Repeat(" ", anchorX-lineWidth))
		}
		builder.WriteString("\x1b[0m")
		builder.WriteString(overlayLine)
		builder.WriteString("\x1b[0m")
		if end := anchorX + overlayWidth; end < lineWidth {
			builder.WriteString(ansi.TruncateLeft(line, end, ""))
		}
		lines[row] = builder.String()
	}
	return strings.Join(lines, "\n")
}

// Excerpt returns the first maxLines non-blank lines of body, each cut
// to maxWidth with an ellipsis.
func Excerpt(body string, maxWidth, maxLines int) []string {
	var result []string
	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		result = append(result, Truncate(trimmed, maxWidth))
		if len(result) >= maxLines {
			break
		}
	}
	return result
}

// Truncate cuts s to width display columns, ending in an ellipsis when
// anything was removed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
