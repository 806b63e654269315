package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"themekit/internal/palette"
	"themekit/internal/theme"
)

const (
	outputWidth = 80
	idColumn    = 16
)

var (
	styleCurrent = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Faint(true)
)

// listRow is one theme as shown by list.
type listRow struct {
	id          string
	description string
	source      string
	current     bool
	swatch      string
}

func buildRows(themes []theme.Theme, currentID string, profile termenv.Profile, dark bool) []listRow {
	rows := make([]listRow, 0, len(themes))
	for _, t := range themes {
		row := listRow{id: t.ID, description: t.Description, current: t.ID == currentID}
		if src, ok := t.Option(palette.OptionSource); ok {
			row.source, _ = src.(string)
		}
		if p, ok := palette.Of(t); ok {
			row.swatch = p.Swatch(profile, dark)
		}
		rows = append(rows, row)
	}
	return rows
}

// renderPlainList prints one theme per line, truncating ids that would break
// the column layout and wrapping descriptions under the id.
func renderPlainList(rows []listRow, width int) string {
	if width <= idColumn+4 {
		width = outputWidth
	}
	descWidth := width - idColumn - 4

	var b strings.Builder
	for _, row := range rows {
		marker := "  "
		id := ansi.Truncate(row.id, idColumn, "…")
		if row.current {
			marker = "* "
			id = styleCurrent.Render(id)
		}
		pad := idColumn - ansi.StringWidth(ansi.Strip(id))
		if pad < 0 {
			pad = 0
		}

		desc := wordwrap.String(row.description, descWidth)
		lines := strings.Split(desc, "\n")
		fmt.Fprintf(&b, "%s%s%s  %s", marker, id, strings.Repeat(" ", pad), lines[0])
		if row.swatch != "" {
			fmt.Fprintf(&b, "  %s", row.swatch)
		}
		b.WriteString("\n")
		if len(lines) > 1 {
			rest := strings.Join(lines[1:], "\n")
			b.WriteString(indent.String(rest, uint(idColumn+4)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// listMarkdown renders the rows as a markdown table for glamour.
func listMarkdown(rows []listRow, providerID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Themes for `%s`\n\n", providerID)
	b.WriteString("| | Theme | Description | Source |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, row := range rows {
		marker := ""
		id := row.id
		if row.current {
			marker = "●"
			id = "**" + id + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", marker, id, escapeCell(row.description), row.source)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// buildMarkdownRenderer returns a glamour renderer for format, falling back to
// plain word wrapping when the style is unknown or rendering fails.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

func isPlain(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "plain")
}

func describe(t theme.Theme) string {
	if t.Description == "" {
		return t.ID
	}
	return fmt.Sprintf("%s  %s", t.ID, styleMuted.Render(t.Description))
}
