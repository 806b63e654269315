package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"themekit/internal/debug"
	"themekit/internal/palette"
	"themekit/internal/persist"
	"themekit/internal/theme"
)

const initialLoadTimeout = 5 * time.Second

var errUsage = errors.New("missing command (try list, current, set, next, forget, saved or pick)")

// session is one CLI invocation: the opened store and the controller over it.
type session struct {
	ctrl  *theme.Controller
	store persist.Store
	opts  runtimeOptions
	env   environment
}

func run(ctx context.Context, opts runtimeOptions, args []string, env environment) error {
	if len(args) == 0 {
		return errUsage
	}
	if env.openStore == nil {
		return fmt.Errorf("store opener is nil")
	}

	store, err := env.openStore(opts.StoreBackend, opts.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	debug.Logf("opened %s store %s", opts.StoreBackend, storeLocation(store))
	if closer, ok := store.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				debug.Logger().Warn("close store", "error", err)
			}
		}()
	}

	s, err := newSession(ctx, opts, store, env)
	if err != nil {
		return err
	}
	defer s.ctrl.Wait()

	cmd, rest := args[0], args[1:]
	debug.Log("command: " + strings.Join(args, " "))
	switch cmd {
	case "list":
		return s.list()
	case "current":
		return s.current()
	case "set":
		if len(rest) != 1 {
			return fmt.Errorf("usage: themekit set <id>")
		}
		return s.set(rest[0])
	case "next":
		return s.next()
	case "forget":
		return s.forget(ctx)
	case "saved":
		return s.saved(ctx)
	case "pick":
		return s.pick()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newSession builds the registry from the built-in palettes plus any palette
// files, then waits for the saved selection to be applied.
func newSession(ctx context.Context, opts runtimeOptions, store persist.Store, env environment) (*session, error) {
	themes := palette.Builtins()
	custom, err := palette.LoadDir(opts.ThemesDir)
	if err != nil {
		debug.Logger().Warn("skipping palette files", "dir", opts.ThemesDir, "error", err)
		if env.stderr != nil {
			fmt.Fprintf(env.stderr, "Warning: %v\n", err)
		}
	}
	themes = palette.Merge(themes, custom)

	defaultID := opts.DefaultTheme
	if defaultID != "" && !containsID(themes, defaultID) {
		debug.Logger().Warn("configured default theme not found", "theme", defaultID)
		defaultID = ""
	}

	policy, err := theme.InitPolicyFrom(opts.LoadOnInit, nil)
	if err != nil {
		return nil, err
	}
	ctrl, err := theme.New(opts.ProviderID, themes,
		theme.WithDefault(defaultID),
		theme.WithStore(store),
		theme.WithPersistOnChange(opts.PersistOnChange),
		theme.WithInitPolicy(policy),
		theme.WithErrorHandler(func(err error) {
			if env.stderr != nil {
				fmt.Fprintf(env.stderr, "Warning: %v\n", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("build theme controller: %w", err)
	}

	if pending := ctrl.InitialLoad(); pending != nil {
		waitCtx, cancel := context.WithTimeout(ctx, initialLoadTimeout)
		defer cancel()
		if _, _, err := pending.Wait(waitCtx); err != nil {
			// After Cancel a late read can no longer change the selection.
			pending.Cancel()
			debug.Logger().Warn("saved theme not loaded", "scope", ctrl.ScopeKey(), "error", err)
		}
	}

	return &session{ctrl: ctrl, store: store, opts: opts, env: env}, nil
}

func containsID(themes []theme.Theme, id string) bool {
	for _, t := range themes {
		if t.ID == id {
			return true
		}
	}
	return false
}
