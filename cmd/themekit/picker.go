package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"

	"themekit/internal/palette"
	"themekit/internal/theme"
)

const (
	pickerDefaultWidth  = 80
	pickerDefaultHeight = 20
	pickerListWidth     = 30
)

// picker is the Bubble Tea model behind `themekit pick`. Moving the cursor
// only previews; the controller changes on Select.
type picker struct {
	ctrl     *theme.Controller
	sub      theme.Subscription
	keys     pickerKeys
	help     help.Model
	filter   textinput.Model
	all      []theme.Theme
	matches  []theme.Theme
	cursor   int
	current  string
	status   string
	chosen   string
	width    int
	height   int
	copyText func(string) error
	profile  termenv.Profile
	dark     bool
}

func newPicker(ctrl *theme.Controller, env environment) *picker {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "filter themes"
	ti.Focus()

	m := &picker{
		ctrl:     ctrl,
		keys:     defaultPickerKeys(),
		help:     help.New(),
		filter:   ti,
		all:      ctrl.AllThemes(),
		current:  ctrl.CurrentThemeID(),
		width:    pickerDefaultWidth,
		height:   pickerDefaultHeight,
		copyText: env.copyText,
		profile:  env.profile,
		dark:     env.dark,
	}
	m.applyFilter()
	m.moveTo(m.current)
	m.sub = ctrl.Subscribe(m.onChange)
	return m
}

// onChange runs synchronously inside controller calls made from Update, so
// it may touch the model directly. newSession settles the initial load,
// applied or cancelled, before the picker subscribes.
func (m *picker) onChange(change theme.Change) {
	m.current = change.New.ID
	if change.Kind == theme.ChangeRegistry {
		m.all = m.ctrl.AllThemes()
		m.applyFilter()
	}
}

func (m *picker) close() {
	m.ctrl.Unsubscribe(m.sub)
}

func (m *picker) Init() tea.Cmd {
	return textinput.Blink
}

func (m *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.Select):
			return m.selectHighlighted()
		case key.Matches(msg, m.keys.Copy):
			m.copyHighlighted()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.filter.SetValue("")
			m.applyFilter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *picker) selectHighlighted() (tea.Model, tea.Cmd) {
	t, ok := m.highlighted()
	if !ok {
		m.status = "No theme matches the filter"
		return m, nil
	}
	if err := m.ctrl.SetTheme(t.ID); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.chosen = t.ID
	return m, tea.Quit
}

func (m *picker) copyHighlighted() {
	t, ok := m.highlighted()
	if !ok || m.copyText == nil {
		return
	}
	if err := m.copyText(t.ID); err != nil {
		m.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("Copied '%s' to clipboard.", t.ID)
}

func (m *picker) highlighted() (theme.Theme, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return theme.Theme{}, false
	}
	return m.matches[m.cursor], true
}

func (m *picker) move(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.matches)) % len(m.matches)
	m.status = ""
}

func (m *picker) moveTo(id string) {
	for i, t := range m.matches {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// applyFilter ranks themes against the filter text, keeping the highlighted
// theme under the cursor when it still matches.
func (m *picker) applyFilter() {
	prev, _ := m.highlighted()
	m.matches = rankThemes(m.all, m.filter.Value())
	m.cursor = 0
	if prev.ID != "" {
		m.moveTo(prev.ID)
	}
}

// rankThemes orders themes by fuzzy match on id and description. An empty
// query keeps registry order.
func rankThemes(themes []theme.Theme, query string) []theme.Theme {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		out := make([]theme.Theme, len(themes))
		copy(out, themes)
		return out
	}
	targets := make([]string, len(themes))
	for i, t := range themes {
		targets[i] = strings.ToLower(t.ID + " " + t.Description)
	}
	matches := fuzzy.Find(query, targets)
	ranked := make([]theme.Theme, 0, len(matches))
	for _, match := range matches {
		if match.Index >= 0 && match.Index < len(themes) {
			ranked = append(ranked, themes[match.Index])
		}
	}
	return ranked
}

func (m *picker) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = pickerDefaultWidth
	}
	if height <= 0 {
		height = pickerDefaultHeight
	}

	c := newCanvas(width, height)
	c.drawAt(0, 0, m.filter.View())

	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := height - 2 - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	listWidth := pickerListWidth
	if listWidth > width/2 {
		listWidth = width / 2
	}
	c.drawAt(0, 2, m.renderList(listWidth, bodyHeight))

	if t, ok := m.highlighted(); ok {
		m.drawPreview(c, t, listWidth+2, 2, width-listWidth-2, bodyHeight)
	}
	c.drawAt(0, height-footerHeight, footer)
	return c.render()
}

func (m *picker) renderList(width, height int) string {
	if len(m.matches) == 0 {
		return styleMuted.Render("no matches")
	}
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.matches) {
		end = len(m.matches)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		t := m.matches[i]
		marker := "  "
		if t.ID == m.current {
			marker = "● "
		}
		line := ansi.Truncate(marker+t.ID, width, "…")
		if i == m.cursor {
			line = styleCurrent.Reverse(true).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// drawPreview paints a sample screen in the highlighted theme's colours.
func (m *picker) drawPreview(c *canvas, t theme.Theme, x, y, w, h int) {
	p, ok := palette.Of(t)
	if !ok || w < 10 || m.profile == termenv.Ascii {
		c.drawAt(x, y, describe(t))
		return
	}

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(m.profile)
	r.SetHasDarkBackground(m.dark)

	c.fillRect(x, y, w, h, r.NewStyle().Background(p.Background))
	title := r.NewStyle().Bold(true).Foreground(p.Primary).Background(p.Background).Render(t.ID)
	sub := r.NewStyle().Foreground(p.TextMuted).Background(p.Background).Render(t.Description)
	c.drawAt(x+1, y, ansi.Truncate(title, w-2, "…"))
	c.drawAt(x+1, y+1, ansi.Truncate(sub, w-2, "…"))

	samples := []struct {
		label string
		color lipgloss.AdaptiveColor
	}{
		{"text", p.Text},
		{"accent", p.Accent},
		{"error", p.Error},
		{"warning", p.Warning},
		{"success", p.Success},
		{"info", p.Info},
	}
	for i, s := range samples {
		row := y + 3 + i
		if row >= y+h {
			break
		}
		line := r.NewStyle().Foreground(s.color).Background(p.Background).Render(s.label)
		c.drawAt(x+1, row, line)
	}

	if row := y + 3 + len(samples) + 1; row < y+h {
		box := r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.BorderFocused).
			Foreground(p.TextEmphasized).
			Background(p.BackgroundSecondary).
			Render("selected row")
		c.drawAt(x+1, row, box)
	}
}
