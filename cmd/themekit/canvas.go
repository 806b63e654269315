package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// canvas composes lipgloss-rendered blocks into a cell buffer so the picker
// can place the list and the preview side by side at fixed positions.
type canvas struct {
	screen *cellbuf.Screen
	writer *cellbuf.ScreenWriter
	width  int
	height int
}

func newCanvas(width, height int) *canvas {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	screen := cellbuf.NewScreen(io.Discard, width, height, &cellbuf.ScreenOptions{
		ShowCursor: false,
		AltScreen:  false,
	})
	return &canvas{
		screen: screen,
		writer: cellbuf.NewScreenWriter(screen),
		width:  width,
		height: height,
	}
}

// fillRect paints a w×h block at x,y using style's background.
func (c *canvas) fillRect(x, y, w, h int, style lipgloss.Style) {
	if c == nil || w <= 0 || h <= 0 {
		return
	}
	block := style.Width(w).Height(h).Render("")
	c.drawAt(x, y, block)
}

// drawAt writes content starting at x,y, one line per row, cropping at the
// canvas edges.
func (c *canvas) drawAt(x, y int, content string) {
	if c == nil || c.writer == nil || content == "" {
		return
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for i, line := range lines {
		row := y + i
		if row >= c.height {
			break
		}
		if line == "" {
			continue
		}
		c.writer.PrintCropAt(x, row, line, "")
	}
}

// render returns the composed frame and releases the screen.
func (c *canvas) render() string {
	if c == nil || c.screen == nil {
		return ""
	}
	raw := cellbuf.Render(c.screen)
	_ = c.screen.Close()
	return strings.ReplaceAll(raw, "\r\n", "\n")
}
