// Package theme owns the set of selectable themes and the controller that
// switches between them.
//
// A Controller holds an ordered Registry of Theme records, exactly one of
// which is current at any time. Selections can be changed by id or by
// cycling, are fanned out to subscribers, and can be persisted through a
// persist.Store scoped by provider id:
//
//	ctrl, err := theme.New("editor", []theme.Theme{
//		{ID: "dark", Description: "Dark", Payload: darkPalette},
//		{ID: "light", Description: "Light", Payload: lightPalette},
//	}, theme.WithStore(store), theme.WithPersistOnChange(true),
//		theme.WithInitPolicy(theme.LoadFromStore{}))
//	if err != nil {
//		return err
//	}
//	ctrl.Subscribe(func(c theme.Change) { repaint(c.New) })
//	_ = ctrl.NextTheme()
package theme

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDescriptionLength bounds Theme.Description; descriptions must be shorter.
const MaxDescriptionLength = 30

// Theme is one selectable configuration. Two themes with the same ID are the
// same theme, whatever their payloads.
type Theme struct {
	ID          string
	Description string
	// Payload is opaque style data owned by the host.
	Payload any
	// Options carries optional host extension data.
	Options map[string]any
}

// Key returns the identity of the theme.
func (t Theme) Key() string {
	return t.ID
}

// Equal reports whether both records name the same theme.
func (t Theme) Equal(other Theme) bool {
	return t.ID == other.ID
}

// Option returns a named extension value.
func (t Theme) Option(name string) (any, bool) {
	if t.Options == nil {
		return nil, false
	}
	v, ok := t.Options[name]
	return v, ok
}

// clone returns t with its own Options map so registry records cannot be
// changed through copies handed to callers.
func (t Theme) clone() Theme {
	t.Options = maps.Clone(t.Options)
	return t
}

// Validate checks the id and description rules.
func (t Theme) Validate() error {
	if err := validateIdentifier("theme id", t.ID); err != nil {
		return invalidThemeError(err.Error())
	}
	if utf8.RuneCountInString(t.Description) >= MaxDescriptionLength {
		return invalidThemeError(fmt.Sprintf("description of theme %s must be shorter than %d characters", t.ID, MaxDescriptionLength))
	}
	return nil
}

func (t Theme) String() string {
	if t.Description == "" {
		return t.ID
	}
	return fmt.Sprintf("%s (%s)", t.ID, t.Description)
}

// validateIdentifier enforces the rules shared by theme and provider ids:
// non-empty, lowercase, no whitespace.
func validateIdentifier(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s must not be empty", kind)
	}
	if strings.ToLower(id) != id {
		return fmt.Errorf("%s %q must be lowercase", kind, id)
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s %q must not contain whitespace", kind, id)
	}
	return nil
}
