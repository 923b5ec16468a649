package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const (
	PrefKeyMaterialPrefix = "pbrforge.material_prefix"
	PrefKeyMaterialSuffix = "pbrforge.material_suffix"
)

// Preferences is a small persisted string key/value store.
type Preferences struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// DefaultPreferencesPath returns <user config dir>/pbrforge/preferences.toml.
func DefaultPreferencesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pbrforge", "preferences.toml"), nil
}

// LoadPreferences opens the store at path. A missing file is an empty store.
func LoadPreferences(path string) (*Preferences, error) {
	p := &Preferences{
		path:   path,
		values: make(map[string]string),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, &p.values); err != nil {
		return nil, fmt.Errorf("invalid preferences %s: %w", path, err)
	}
	return p, nil
}

func (p *Preferences) GetString(key, def string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

func (p *Preferences) SetString(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// Save writes the store back to disk, creating the parent directory.
func (p *Preferences) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.path == "" {
		return nil
	}
	data, err := toml.Marshal(p.values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}
