package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// SelectionsKey is the top-level YAML key holding one entry per scope.
const SelectionsKey = "theme-selections"

// FileStore keeps selections in a YAML file, next to whatever other settings
// the file already holds. Keys are case-insensitive, so scope keys are
// expected to be lowercase.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the YAML file at path. The file and
// its directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns ~/.themekit/config.yaml.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, ".themekit", "config.yaml"), nil
}

// Path reports the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context, scopeKey string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.read()
	if err != nil {
		return "", false, err
	}
	key := selectionKey(scopeKey)
	if !v.IsSet(key) {
		return "", false, nil
	}
	id := v.GetString(key)
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

func (s *FileStore) Save(ctx context.Context, scopeKey, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	if err != nil {
		return err
	}
	v.Set(selectionKey(scopeKey), id)
	return s.write(v)
}

func (s *FileStore) Clear(ctx context.Context, scopeKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	if err != nil {
		return err
	}
	if !v.IsSet(selectionKey(scopeKey)) {
		return nil
	}

	// viper cannot unset a key, so rebuild from the remaining settings.
	settings := v.AllSettings()
	if selections, ok := settings[SelectionsKey].(map[string]any); ok {
		delete(selections, scopeKey)
	}
	fresh := viper.New()
	fresh.SetConfigType("yaml")
	if err := fresh.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("rebuild %s: %w", s.path, err)
	}
	return s.write(fresh)
}

// read loads the current file contents. A missing or empty file yields an
// empty configuration.
func (s *FileStore) read() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	//nolint:gosec // G304: store path comes from configuration
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return v, nil
}

func (s *FileStore) write(v *viper.Viper) error {
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func selectionKey(scopeKey string) string {
	return SelectionsKey + "." + scopeKey
}
