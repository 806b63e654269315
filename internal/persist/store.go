// Package persist stores the selected theme id for each controller scope.
//
// A Store is the only capability the theme controller needs from durable
// storage: read, write and clear one id per scope key. Reads report absence
// with ok == false rather than an error.
package persist

import (
	"context"
	"fmt"
	"strings"
)

// Store persists one theme id per scope key.
type Store interface {
	Load(ctx context.Context, scopeKey string) (id string, ok bool, err error)
	Save(ctx context.Context, scopeKey, id string) error
	Clear(ctx context.Context, scopeKey string) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const scopePrefix = "theme_provider_"

// ScopeKey derives the storage key for a provider id.
func ScopeKey(providerID string) string {
	return scopePrefix + providerID
}

// Open builds the store named by backend. Stores holding resources (SQLite)
// implement io.Closer.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		if strings.TrimSpace(path) == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		if strings.TrimSpace(path) == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store, err := OpenSQLiteStore(context.Background(), path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s, %s or %s)", backend, BackendFile, BackendSQLite, BackendMemory)
	}
}
