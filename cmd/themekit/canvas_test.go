package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasDrawAtPositionsLines(t *testing.T) {
	c := newCanvas(12, 4)
	c.drawAt(3, 1, "AB\nCD")

	lines := strings.Split(c.render(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, 3, strings.Index(ansi.Strip(lines[1]), "AB"))
	assert.Equal(t, 3, strings.Index(ansi.Strip(lines[2]), "CD"))
}

func TestCanvasCropsAtEdges(t *testing.T) {
	c := newCanvas(5, 2)
	c.drawAt(2, 1, "overflowing\nbelow")

	lines := strings.Split(strings.TrimRight(c.render(), "\n"), "\n")
	assert.LessOrEqual(t, len(lines), 2)
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 5)
	}
	assert.NotContains(t, ansi.Strip(strings.Join(lines, "\n")), "below")
}

func TestCanvasFillRectIgnoresEmptyArea(t *testing.T) {
	c := newCanvas(4, 2)
	c.fillRect(0, 0, 0, 2, lipgloss.NewStyle())
	c.drawAt(0, 0, "ok")
	assert.Contains(t, ansi.Strip(c.render()), "ok")

	var nilCanvas *canvas
	assert.NotPanics(t, func() {
		nilCanvas.drawAt(0, 0, "x")
		assert.Empty(t, nilCanvas.render())
	})
}
