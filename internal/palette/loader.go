package palette

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"themekit/internal/theme"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// yamlColor is one role in a palette file. A bare string sets both variants.
type yamlColor struct {
	Dark  string `yaml:"dark"`
	Light string `yaml:"light"`
}

func (c *yamlColor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Dark, c.Light = node.Value, node.Value
		return nil
	}
	type plain yamlColor
	return node.Decode((*plain)(c))
}

// yamlPalette is the file representation of a palette.
type yamlPalette struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Colors      struct {
		Primary             yamlColor `yaml:"primary"`
		Secondary           yamlColor `yaml:"secondary"`
		Accent              yamlColor `yaml:"accent"`
		Error               yamlColor `yaml:"error"`
		Warning             yamlColor `yaml:"warning"`
		Success             yamlColor `yaml:"success"`
		Info                yamlColor `yaml:"info"`
		Text                yamlColor `yaml:"text"`
		TextMuted           yamlColor `yaml:"text-muted"`
		TextEmphasized      yamlColor `yaml:"text-emphasized"`
		Background          yamlColor `yaml:"background"`
		BackgroundSecondary yamlColor `yaml:"background-secondary"`
		BackgroundDarker    yamlColor `yaml:"background-darker"`
		BorderNormal        yamlColor `yaml:"border-normal"`
		BorderFocused       yamlColor `yaml:"border-focused"`
		BorderDim           yamlColor `yaml:"border-dim"`
	} `yaml:"colors"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var builtins = sync.OnceValue(func() []theme.Theme {
	themes, err := loadFS(builtinFS, "builtin", SourceBuiltin)
	if err != nil {
		panic(fmt.Sprintf("palette: built-in palettes: %v", err))
	}
	return themes
})

// Builtins returns the bundled palettes as theme records, ordered by id.
func Builtins() []theme.Theme {
	src := builtins()
	out := make([]theme.Theme, len(src))
	copy(out, src)
	return out
}

// LoadFile reads one palette file. Without an id the file name is used.
func LoadFile(path string) (theme.Theme, error) {
	//nolint:gosec // G304: palette files are user supplied by design
	data, err := os.ReadFile(path)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("reading palette file: %w", err)
	}
	t, err := parse(data, filepath.Base(path))
	if err != nil {
		return theme.Theme{}, fmt.Errorf("%s: %w", path, err)
	}
	t.Options = map[string]any{OptionSource: SourceFile, OptionPath: path}
	return t, nil
}

// LoadDir loads every .yaml/.yml file in dir. A missing directory yields no
// themes. Files that fail to load are skipped and reported together in the
// returned error alongside the themes that did load.
func LoadDir(dir string) ([]theme.Theme, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading palette dir: %w", err)
	}

	var themes []theme.Theme
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !isPaletteFile(e.Name()) {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		themes = append(themes, t)
	}
	return themes, errors.Join(errs...)
}

func loadFS(fsys fs.FS, dir, source string) ([]theme.Theme, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var themes []theme.Theme
	for _, e := range entries {
		if e.IsDir() || !isPaletteFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		t, err := parse(data, e.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		t.Options = map[string]any{OptionSource: source}
		themes = append(themes, t)
	}
	return themes, nil
}

func isPaletteFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func parse(data []byte, fileName string) (theme.Theme, error) {
	var yp yamlPalette
	if err := yaml.Unmarshal(data, &yp); err != nil {
		return theme.Theme{}, fmt.Errorf("parsing palette YAML: %w", err)
	}

	id := strings.TrimSpace(yp.ID)
	if id == "" {
		id = strings.ToLower(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	}

	c := yp.Colors
	var p Palette
	roles := []struct {
		name string
		src  yamlColor
		dst  *lipgloss.AdaptiveColor
	}{
		{"primary", c.Primary, &p.Primary},
		{"secondary", c.Secondary, &p.Secondary},
		{"accent", c.Accent, &p.Accent},
		{"error", c.Error, &p.Error},
		{"warning", c.Warning, &p.Warning},
		{"success", c.Success, &p.Success},
		{"info", c.Info, &p.Info},
		{"text", c.Text, &p.Text},
		{"text-muted", c.TextMuted, &p.TextMuted},
		{"text-emphasized", c.TextEmphasized, &p.TextEmphasized},
		{"background", c.Background, &p.Background},
		{"background-secondary", c.BackgroundSecondary, &p.BackgroundSecondary},
		{"background-darker", c.BackgroundDarker, &p.BackgroundDarker},
		{"border-normal", c.BorderNormal, &p.BorderNormal},
		{"border-focused", c.BorderFocused, &p.BorderFocused},
		{"border-dim", c.BorderDim, &p.BorderDim},
	}
	for _, r := range roles {
		if !hexColor.MatchString(r.src.Dark) || !hexColor.MatchString(r.src.Light) {
			return theme.Theme{}, fmt.Errorf("color %s: want #rgb or #rrggbb for dark and light, got %q/%q",
				r.name, r.src.Dark, r.src.Light)
		}
		*r.dst = lipgloss.AdaptiveColor{Dark: r.src.Dark, Light: r.src.Light}
	}

	t := theme.Theme{ID: id, Description: strings.TrimSpace(yp.Description), Payload: p}
	if err := t.Validate(); err != nil {
		return theme.Theme{}, err
	}
	return t, nil
}
