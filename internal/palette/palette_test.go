package palette

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "themekit/internal/errors"
	"themekit/internal/theme"
)

const fullPalette = `
id: harbor
description: Harbor Lights
colors:
  primary: {dark: "#82aaff", light: "#2e7de9"}
  secondary: {dark: "#c099ff", light: "#9854f1"}
  accent: "#ff966c"
  error: {dark: "#ff757f", light: "#f52a65"}
  warning: {dark: "#ff966c", light: "#b15c00"}
  success: {dark: "#c3e88d", light: "#587539"}
  info: {dark: "#7dcfff", light: "#0db9d7"}
  text: {dark: "#c8d3f5", light: "#3760bf"}
  text-muted: {dark: "#636da6", light: "#848cb5"}
  text-emphasized: {dark: "#ffc777", light: "#8c6c3e"}
  background: {dark: "#222436", light: "#e1e2e7"}
  background-secondary: {dark: "#2f334d", light: "#c8c9ce"}
  background-darker: {dark: "#1e2030", light: "#d5d6db"}
  border-normal: {dark: "#3b4261", light: "#a8aecb"}
  border-focused: {dark: "#82aaff", light: "#2e7de9"}
  border-dim: {dark: "#fff", light: "#000"}
`

func writePalette(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBuiltinsAreValidAndOrdered(t *testing.T) {
	themes := Builtins()
	require.NotEmpty(t, themes)

	_, _, err := theme.NewRegistry(themes, "tokyonight")
	require.NoError(t, err, "built-ins must form a valid registry with the default theme")

	ids := make([]string, len(themes))
	for i, th := range themes {
		ids[i] = th.ID
		p, ok := Of(th)
		require.True(t, ok, "%s carries a palette", th.ID)
		assert.NotEmpty(t, p.Primary.Dark, "%s primary", th.ID)
		assert.NotEmpty(t, p.Background.Light, "%s background", th.ID)
		src, _ := th.Option(OptionSource)
		assert.Equal(t, SourceBuiltin, src)
	}
	assert.IsIncreasing(t, ids)
	assert.Contains(t, ids, "nord")
	assert.Contains(t, ids, "dracula")
}

func TestBuiltinsReturnsCopy(t *testing.T) {
	first := Builtins()
	first[0] = theme.Theme{ID: "mutated"}
	assert.NotEqual(t, "mutated", Builtins()[0].ID)
}

func TestLoadFile(t *testing.T) {
	path := writePalette(t, t.TempDir(), "harbor.yaml", fullPalette)

	th, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "harbor", th.ID)
	assert.Equal(t, "Harbor Lights", th.Description)

	p, ok := Of(th)
	require.True(t, ok)
	assert.Equal(t, lipgloss.AdaptiveColor{Dark: "#82aaff", Light: "#2e7de9"}, p.Primary)
	assert.Equal(t, lipgloss.AdaptiveColor{Dark: "#ff966c", Light: "#ff966c"}, p.Accent, "bare string sets both variants")

	src, _ := th.Option(OptionSource)
	assert.Equal(t, SourceFile, src)
	gotPath, _ := th.Option(OptionPath)
	assert.Equal(t, path, gotPath)
}

func TestLoadFileUsesFilenameWhenIDMissing(t *testing.T) {
	contents := strings.Replace(fullPalette, "id: harbor\n", "", 1)
	path := writePalette(t, t.TempDir(), "Deep-Sea.yml", contents)

	th, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "deep-sea", th.ID)
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(writePalette(t, dir, "broken.yaml", "colors: [oops"))
	assert.ErrorContains(t, err, "parsing palette YAML")

	_, err = LoadFile(writePalette(t, dir, "missing.yaml", "id: missing\ncolors:\n  primary: \"#fff\"\n"))
	assert.ErrorContains(t, err, "color secondary")

	_, err = LoadFile(writePalette(t, dir, "named.yaml", strings.Replace(fullPalette, "#82aaff", "blue", 1)))
	assert.ErrorContains(t, err, "color primary")

	long := strings.Replace(fullPalette, "Harbor Lights", strings.Repeat("x", 40), 1)
	_, err = LoadFile(writePalette(t, dir, "long.yaml", long))
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidTheme))

	upper := strings.Replace(fullPalette, "id: harbor", "id: Harbor", 1)
	_, err = LoadFile(writePalette(t, dir, "upper.yaml", upper))
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidTheme))

	_, err = LoadFile(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDirSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writePalette(t, dir, "harbor.yaml", fullPalette)
	writePalette(t, dir, "broken.yaml", "colors: [oops")
	writePalette(t, dir, "notes.txt", "not a palette")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	themes, err := LoadDir(dir)
	require.Len(t, themes, 1)
	assert.Equal(t, "harbor", themes[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoadDirMissingOrEmpty(t *testing.T) {
	themes, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, themes)

	themes, err = LoadDir("")
	assert.NoError(t, err)
	assert.Empty(t, themes)
}

func TestMergeOverridesInPlace(t *testing.T) {
	base := []theme.Theme{{ID: "a"}, {ID: "b", Description: "old"}, {ID: "c"}}
	extra := []theme.Theme{{ID: "b", Description: "new"}, {ID: "d"}}

	got := Merge(base, extra)
	require.Len(t, got, 4)
	assert.Equal(t, "new", got[1].Description)
	assert.Equal(t, "d", got[3].ID)
	assert.Equal(t, "old", base[1].Description, "base is not modified")
}

func TestOf(t *testing.T) {
	p := Palette{Primary: lipgloss.AdaptiveColor{Dark: "#111111", Light: "#eeeeee"}}

	got, ok := Of(theme.Theme{ID: "v", Payload: p})
	assert.True(t, ok)
	assert.Equal(t, p, got)

	got, ok = Of(theme.Theme{ID: "p", Payload: &p})
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = Of(theme.Theme{ID: "n", Payload: (*Palette)(nil)})
	assert.False(t, ok)
	_, ok = Of(theme.Theme{ID: "s", Payload: "string payload"})
	assert.False(t, ok)
}

func TestSwatch(t *testing.T) {
	p, ok := Of(Builtins()[0])
	require.True(t, ok)

	assert.Empty(t, p.Swatch(termenv.Ascii, true))

	out := p.Swatch(termenv.TrueColor, true)
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, len(p.Swatches())*2, lipgloss.Width(out))
}
