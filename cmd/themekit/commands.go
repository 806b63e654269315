package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"themekit/internal/persist"
)

// entryLister is implemented by stores that can enumerate every saved scope.
type entryLister interface {
	Entries(ctx context.Context) ([]persist.Entry, error)
}

// pathReporter is implemented by stores backed by a file.
type pathReporter interface {
	Path() string
}

// storeLocation names where store keeps its data, or "" for in-memory stores.
func storeLocation(store persist.Store) string {
	if p, ok := store.(pathReporter); ok {
		return p.Path()
	}
	return ""
}

func (s *session) list() error {
	rows := buildRows(s.ctrl.AllThemes(), s.ctrl.CurrentThemeID(), s.env.profile, s.env.dark)
	if isPlain(s.opts.format) {
		_, err := fmt.Fprint(s.env.stdout, renderPlainList(rows, outputWidth))
		return err
	}
	render := buildMarkdownRenderer(s.opts.format, outputWidth)
	_, err := fmt.Fprintln(s.env.stdout, render(listMarkdown(rows, s.ctrl.ProviderID())))
	return err
}

func (s *session) current() error {
	_, err := fmt.Fprintln(s.env.stdout, describe(s.ctrl.Theme()))
	return err
}

func (s *session) set(id string) error {
	if err := s.ctrl.SetTheme(strings.TrimSpace(id)); err != nil {
		return err
	}
	return s.reportSelection()
}

func (s *session) next() error {
	s.ctrl.NextTheme()
	return s.reportSelection()
}

func (s *session) reportSelection() error {
	line := describe(s.ctrl.Theme())
	if !s.opts.PersistOnChange {
		line += styleMuted.Render("  (not saved: persist-on-change is off)")
	}
	_, err := fmt.Fprintln(s.env.stdout, line)
	return err
}

func (s *session) forget(ctx context.Context) error {
	if err := s.ctrl.ForgetSavedTheme(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.env.stdout, "Forgot saved theme for %s\n", s.ctrl.ProviderID())
	return err
}

// saved lists every saved scope when the store can enumerate them, and only
// this provider's selection otherwise.
func (s *session) saved(ctx context.Context) error {
	if loc := storeLocation(s.store); loc != "" {
		if _, err := fmt.Fprintf(s.env.stdout, "store: %s\n", loc); err != nil {
			return err
		}
	}
	lister, ok := s.store.(entryLister)
	if !ok {
		id, found, err := s.store.Load(ctx, s.ctrl.ScopeKey())
		if err != nil {
			return fmt.Errorf("read saved theme: %w", err)
		}
		if !found {
			_, err = fmt.Fprintf(s.env.stdout, "%s: nothing saved\n", s.ctrl.ScopeKey())
			return err
		}
		_, err = fmt.Fprintf(s.env.stdout, "%s: %s\n", s.ctrl.ScopeKey(), id)
		return err
	}

	entries, err := lister.Entries(ctx)
	if err != nil {
		return fmt.Errorf("list saved themes: %w", err)
	}
	if len(entries) == 0 {
		_, err = fmt.Fprintln(s.env.stdout, "nothing saved")
		return err
	}
	now := time.Now()
	for _, e := range entries {
		marker := "  "
		if e.ScopeKey == s.ctrl.ScopeKey() {
			marker = "* "
		}
		if _, err := fmt.Fprintf(s.env.stdout, "%s%-32s %-16s %s\n",
			marker, e.ScopeKey, e.ThemeID, humanize.RelTime(e.UpdatedAt, now, "ago", "from now")); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) pick() error {
	if s.env.program == nil {
		return fmt.Errorf("program factory is nil")
	}
	m := newPicker(s.ctrl, s.env)
	defer m.close()

	prog := s.env.program(m)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run picker: %w", err)
	}
	if m.chosen == "" {
		return nil
	}
	return s.reportSelection()
}
