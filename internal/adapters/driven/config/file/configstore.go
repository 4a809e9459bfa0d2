package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/regula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDir returns ~/.regula.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".regula"), nil
}

// ConfigStore keeps the TOML config file in memory as dotted keys
// ("retrieval.top_k") and rewrites the file on every Set.
type ConfigStore struct {
	*memory.ConfigStore

	path    string
	writeMu sync.Mutex
}

// NewConfigStore opens path, or ~/.regula/config.toml when path is empty.
// A missing file is an empty config; a malformed one is an error.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{ConfigStore: memory.NewConfigStore(nil), path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value under key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	if err := s.ConfigStore.Set(key, value); err != nil {
		return err
	}
	return s.Save()
}

// Save writes the values as nested TOML tables with mode 0600.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := toml.Marshal(unflattenMap(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// Load replaces the values with the file's contents.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse config %s: %w", s.path, err)
	}
	values := make(map[string]any)
	flattenInto(values, tree, "")
	s.Replace(values)
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string { return s.path }

// flattenInto writes nested tables of tree into out as dotted keys.
// Arrays of tables stay as values.
func flattenInto(out, tree map[string]any, prefix string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(out, table, key)
			continue
		}
		out[key] = value
	}
}

// unflattenMap nests dotted keys back into tables. A key that is both a
// value and a table prefix keeps its value under the full dotted key.
func unflattenMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		if node, ok := descend(root, parts[:len(parts)-1]); ok {
			node[parts[len(parts)-1]] = flat[key]
		} else {
			root[key] = flat[key]
		}
	}
	return root
}

// descend walks path from root creating tables; it fails when a segment
// already holds a scalar.
func descend(root map[string]any, path []string) (map[string]any, bool) {
	node := root
	for _, part := range path {
		next, exists := node[part]
		if !exists {
			child := make(map[string]any)
			node[part] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}
