package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name under ~/.lightway.
const ConfigFile = "config.toml"

// ConfigStore keeps lightway settings in a TOML file. Nested tables are
// flattened into dotted keys on load and rebuilt on save.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	keys map[string]any
}

// DefaultPath returns ~/.lightway/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".lightway", ConfigFile), nil
}

// NewConfigStore opens the settings file at path, or DefaultPath when path
// is empty. The file need not exist yet.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: path, keys: map[string]any{}}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.keys[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	return lookup[string](s, key)
}

func (s *ConfigStore) GetBool(key string) bool {
	return lookup[bool](s, key)
}

// GetInt accepts the int64 values go-toml decodes integers into.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.keys))
}

// Set records value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = value
	return s.write()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces the file through a rename so a failed marshal or a
// crash never leaves a truncated config behind. Caller holds mu.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nest(s.keys))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ConfigFile+".*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load rereads the file. A missing file leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.keys = map[string]any{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.keys = map[string]any{}
	flatten(tree, "", s.keys)
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

func lookup[T any](s *ConfigStore, key string) T {
	v, _ := s.Get(key)
	t, _ := v.(T)
	return t
}

// flatten copies tree into dst with dotted keys. Arrays, including arrays
// of tables, stay whole.
func flatten(tree map[string]any, prefix string, dst map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(table, k, dst)
			continue
		}
		dst[k] = v
	}
}

// nest rebuilds tables from dotted keys. A key whose prefix already holds
// a plain value is written literally.
func nest(keys map[string]any) map[string]any {
	root := map[string]any{}
	for _, key := range slices.Sorted(maps.Keys(keys)) {
		path := strings.Split(key, ".")
		table, ok := tableFor(root, path[:len(path)-1])
		if !ok {
			root[key] = keys[key]
			continue
		}
		table[path[len(path)-1]] = keys[key]
	}
	return root
}

func tableFor(root map[string]any, path []string) (map[string]any, bool) {
	cur := root
	for _, name := range path {
		next, ok := cur[name]
		if !ok {
			child := map[string]any{}
			cur[name] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}
