package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themekit/internal/palette"
	"themekit/internal/theme"
)

func TestRenderPlainListTruncatesAndWraps(t *testing.T) {
	rows := []listRow{
		{id: "a-very-long-theme-identifier", description: "Short"},
		{id: "wrapme", description: "one two three four five six", current: true},
	}

	out := ansi.Strip(renderPlainList(rows, idColumn+4+10))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)

	assert.Contains(t, lines[0], "…")
	assert.NotContains(t, lines[0], "identifier")
	assert.True(t, strings.HasPrefix(lines[1], "* wrapme"))
	for _, line := range lines[2:] {
		assert.True(t, strings.HasPrefix(line, strings.Repeat(" ", idColumn+4)), "continuation %q is indented", line)
	}
}

func TestBuildRowsAttachesSwatches(t *testing.T) {
	themes := palette.Builtins()[:2]
	rows := buildRows(themes, themes[1].ID, termenv.TrueColor, true)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].current)
	assert.Equal(t, palette.SourceBuiltin, rows[0].source)
	assert.NotEmpty(t, rows[0].swatch)

	rows = buildRows([]theme.Theme{{ID: "bare"}}, "", termenv.TrueColor, true)
	assert.Empty(t, rows[0].swatch, "themes without a palette have no swatch")
}

func TestListMarkdownEscapesCells(t *testing.T) {
	md := listMarkdown([]listRow{{id: "x", description: "a|b", current: true}}, "app")
	assert.Contains(t, md, "## Themes for `app`")
	assert.Contains(t, md, `a\|b`)
	assert.Contains(t, md, "**x**")
}

func TestBuildMarkdownRendererPlainFallsBack(t *testing.T) {
	render := buildMarkdownRenderer("plain", 10)
	assert.Equal(t, "alpha beta\ngamma", render("alpha beta gamma"))

	render = buildMarkdownRenderer("no-such-style", 40)
	assert.NotPanics(t, func() { render("# title") })
}
