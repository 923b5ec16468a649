package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is looked up at the project root.
const ConfigFileName = "pbrforge.toml"

// ScalarConfig holds the material scalar defaults used when a slot has no texture.
type ScalarConfig struct {
	Metallic      float32    `toml:"metallic"`
	Smoothness    float32    `toml:"smoothness"`
	SpecularColor [4]float32 `toml:"specular_color"`
	EmissionColor [4]float32 `toml:"emission_color"`
}

// Config is the project configuration. Zero values are filled from DefaultConfig.
type Config struct {
	// AssetRoot is the folder, relative to the project root, that holds every asset.
	AssetRoot string `toml:"asset_root"`
	// Recursive makes texture discovery descend into sub-folders.
	Recursive bool `toml:"recursive"`
	// DefaultMode is used when both metalness and specular maps are present.
	DefaultMode    string       `toml:"default_mode"`
	PackSmoothness bool         `toml:"pack_smoothness"`
	LogLevel       string       `toml:"log_level"`
	Scalars        ScalarConfig `toml:"scalars"`
	// Candidates overrides the filename fragments tried for a role, keyed by role name.
	Candidates map[string][]string `toml:"candidates"`
}

func DefaultConfig() *Config {
	return &Config{
		AssetRoot:   "Assets",
		DefaultMode: "specular",
		LogLevel:    "info",
		Scalars: ScalarConfig{
			Metallic:      1,
			Smoothness:    1,
			SpecularColor: [4]float32{1, 1, 1, 1},
			EmissionColor: [4]float32{1, 1, 1, 1},
		},
		Candidates: map[string][]string{},
	}
}

// LoadConfig reads a TOML config file. A missing file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AssetRoot == "" {
		return fmt.Errorf("asset_root is required")
	}
	switch c.DefaultMode {
	case "metallic", "specular":
	default:
		return fmt.Errorf("default_mode must be metallic or specular, got %q", c.DefaultMode)
	}
	if c.Scalars.Metallic < 0 || c.Scalars.Metallic > 1 {
		return fmt.Errorf("scalars.metallic must be between 0.0 and 1.0")
	}
	if c.Scalars.Smoothness < 0 || c.Scalars.Smoothness > 1 {
		return fmt.Errorf("scalars.smoothness must be between 0.0 and 1.0")
	}
	return nil
}
