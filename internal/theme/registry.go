package theme

import "slices"

// Registry is an ordered, id-unique collection of themes. Insertion order
// defines cycling order and the fallback default.
//
// Registry is not safe for concurrent use; the Controller serializes access.
type Registry struct {
	themes []Theme
}

// NewRegistry validates themes and resolves the default. An empty defaultID
// selects the first theme.
func NewRegistry(themes []Theme, defaultID string) (*Registry, Theme, error) {
	if len(themes) == 0 {
		return nil, Theme{}, configurationError("at least one theme is required")
	}

	seen := make(map[string]struct{}, len(themes))
	for _, t := range themes {
		if err := t.Validate(); err != nil {
			return nil, Theme{}, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, Theme{}, duplicateIDError(t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	r := &Registry{themes: make([]Theme, len(themes))}
	for i, t := range themes {
		r.themes[i] = t.clone()
	}
	if defaultID == "" {
		return r, r.themes[0].clone(), nil
	}
	def, ok := r.Lookup(defaultID)
	if !ok {
		return nil, Theme{}, unknownDefaultIDError(defaultID)
	}
	return r, def, nil
}

// Lookup returns the stored record for id. Its Options map is a copy.
func (r *Registry) Lookup(id string) (Theme, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return Theme{}, false
	}
	return r.themes[i].clone(), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	return r.indexOf(id) >= 0
}

// Add appends t after validating it.
func (r *Registry) Add(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if r.Has(t.ID) {
		return duplicateIDError(t.ID)
	}
	r.themes = append(r.themes, t.clone())
	return nil
}

// Remove deletes id. Guarding the active theme is the caller's job.
func (r *Registry) Remove(id string) error {
	i := r.indexOf(id)
	if i < 0 {
		return unknownIDError(id)
	}
	r.themes = slices.Delete(r.themes, i, i+1)
	return nil
}

// Next returns the id following id, wrapping to the first entry.
func (r *Registry) Next(id string) (string, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return "", false
	}
	return r.themes[(i+1)%len(r.themes)].ID, true
}

// All returns a copy of the themes in insertion order.
func (r *Registry) All() []Theme {
	out := make([]Theme, len(r.themes))
	for i, t := range r.themes {
		out[i] = t.clone()
	}
	return out
}

// IDs returns the theme ids in insertion order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.themes))
	for i, t := range r.themes {
		ids[i] = t.ID
	}
	return ids
}

// Len reports the number of registered themes.
func (r *Registry) Len() int {
	return len(r.themes)
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.themes, func(t Theme) bool { return t.ID == id })
}
