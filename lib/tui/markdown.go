// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func parser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// RenderMarkdown renders notice content for the TUI. Output is always
// ANSI 256-color, whatever the environment detects.
func RenderMarkdown(input string, theme Theme, width int) string {
	return RenderMarkdownProfile(input, theme, width, termenv.ANSI256)
}

// RenderMarkdownProfile renders input with a fixed color profile.
// termenv.Ascii yields plain wrapped text for pipes and files.
func RenderMarkdownProfile(input string, theme Theme, width int, profile termenv.Profile) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := parser().Parser().Parse(text.NewReader(source))

	renderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	walker := &markdownWalker{
		source:   source,
		theme:    theme,
		width:    max(width, 20),
		renderer: renderer,
	}
	ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.output.String(), "\n")
}

// markdownWalker collects inline text per block and wraps it when the
// block closes.
type markdownWalker struct {
	source   []byte
	theme    Theme
	width    int
	renderer *lipgloss.Renderer

	output strings.Builder
	inline strings.Builder

	bold, italic, strike, code int

	quoteDepth int
	lists      []listLevel
	bullet     string
}

type listLevel struct {
	ordered bool
	next    int
}

func (w *markdownWalker) style() lipgloss.Style {
	return w.renderer.NewStyle()
}

func (w *markdownWalker) prefix() string {
	var builder strings.Builder
	for range w.quoteDepth {
		builder.WriteString("│ ")
	}
	for range w.lists {
		builder.WriteString("  ")
	}
	return builder.String()
}

// flush wraps the accumulated inline text as one block.
func (w *markdownWalker) flush(style *lipgloss.Style) {
	content := strings.TrimSpace(w.inline.String())
	w.inline.Reset()
	if content == "" {
		return
	}
	prefix := w.prefix()
	if w.bullet != "" && len(prefix) >= 2 {
		prefix = prefix[:len(prefix)-2]
	}
	available := max(w.width-ansi.StringWidth(prefix)-ansi.StringWidth(w.bullet), 10)
	wrapped := ansi.Wordwrap(content, available, "")
	if style != nil {
		wrapped = style.Render(wrapped)
	}
	indent := strings.Repeat(" ", ansi.StringWidth(w.bullet))
	for index, line := range strings.Split(wrapped, "\n") {
		w.output.WriteString(prefix)
		if index == 0 {
			w.output.WriteString(w.bullet)
		} else {
			w.output.WriteString(indent)
		}
		w.output.WriteString(line)
		w.output.WriteString("\n")
	}
	w.bullet = ""
}

func (w *markdownWalker) blankLine() {
	current := w.output.String()
	if current != "" && !strings.HasSuffix(current, "\n\n") {
		w.output.WriteString("\n")
	}
}

func (w *markdownWalker) writeText(value string) {
	style := w.style()
	styled := false
	if w.bold > 0 {
		style = style.Bold(true)
		styled = true
	}
	if w.italic > 0 {
		style = style.Italic(true)
		styled = true
	}
	if w.strike > 0 {
		style = style.Strikethrough(true)
		styled = true
	}
	if w.code > 0 {
		style = style.Foreground(w.theme.AccentColor)
		styled = true
	}
	if styled {
		value = style.Render(value)
	}
	w.inline.WriteString(value)
}

func (w *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch typed := node.(type) {
	case *ast.Heading:
		if entering {
			w.blankLine()
			return ast.WalkContinue, nil
		}
		style := w.style().Bold(true).Foreground(w.theme.HeaderForeground)
		if typed.Level == 1 {
			style = style.Underline(true)
		}
		w.flush(&style)
		w.output.WriteString("\n")

	case *ast.Paragraph:
		if entering {
			if len(w.lists) == 0 {
				w.blankLine()
			}
			return ast.WalkContinue, nil
		}
		w.flush(nil)

	case *ast.TextBlock:
		if !entering {
			w.flush(nil)
		}

	case *ast.Text:
		if entering {
			w.writeText(string(typed.Segment.Value(w.source)))
			if typed.HardLineBreak() {
				w.inline.WriteString("\n")
			} else if typed.SoftLineBreak() {
				w.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			w.writeText(string(typed.Value))
		}

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if typed.Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case *extast.Strikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case *ast.CodeSpan:
		if entering {
			w.code++
		} else {
			w.code--
		}

	case *ast.Link:
		if !entering {
			destination := string(typed.Destination)
			w.inline.WriteString(" " + w.style().Foreground(w.theme.LinkForeground).Render("<"+destination+">"))
		}

	case *ast.AutoLink:
		if entering {
			w.inline.WriteString(w.style().Foreground(w.theme.LinkForeground).Render(string(typed.URL(w.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if entering {
			if len(w.lists) == 0 {
				w.blankLine()
			}
			start := typed.Start
			if start == 0 {
				start = 1
			}
			w.lists = append(w.lists, listLevel{ordered: typed.IsOrdered(), next: start})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
		}

	case *ast.ListItem:
		if entering {
			level := &w.lists[len(w.lists)-1]
			if level.ordered {
				w.bullet = strconv.Itoa(level.next) + ". "
				level.next++
			} else {
				w.bullet = "• "
			}
		}

	case *ast.Blockquote:
		if entering {
			w.blankLine()
			w.quoteDepth++
		} else {
			w.quoteDepth--
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			w.blankLine()
			lines := node.Lines()
			codeStyle := w.style().Foreground(w.theme.AccentColor)
			for index := range lines.Len() {
				segment := lines.At(index)
				line := strings.TrimRight(string(segment.Value(w.source)), "\n")
				w.output.WriteString(w.prefix() + "  " + codeStyle.Render(line) + "\n")
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			w.blankLine()
			rule := strings.Repeat("─", min(w.width, 40))
			w.output.WriteString(w.style().Foreground(w.theme.BorderColor).Render(rule) + "\n")
		}
	}
	return ast.WalkContinue, nil
}
