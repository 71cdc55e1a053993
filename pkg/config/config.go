// Package config loads the viewer configuration. Settings come from a
// YAML file with flag and environment overrides layered on top by the
// command; a missing file just means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted viewer configuration.
type Config struct {
	// CatalogPath is the JSONL or sqlite catalog to browse when no
	// remote endpoint is configured.
	CatalogPath string `yaml:"catalog_path"`

	// Endpoint is the base URL of a remote listing service. Empty
	// selects the bundled local engine over CatalogPath.
	Endpoint string `yaml:"endpoint"`

	// ShareBaseURL is the web link deep links are minted against.
	ShareBaseURL string `yaml:"share_base_url"`

	// PageSize is the number of listings fetched per page.
	PageSize int `yaml:"page_size"`

	// OpenOnly hides sold and archived listings by default.
	OpenOnly bool `yaml:"open_only"`

	// Debug enables the debug log file.
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CatalogPath:  "catalog.jsonl",
		ShareBaseURL: "https://nihontowatch.example/browse",
		PageSize:     50,
		OpenOnly:     true,
	}
}

// DefaultPath returns the conventional config location,
// $XDG_CONFIG_HOME/nihontowatch/config.yaml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "nihontowatch", "config.yaml")
}

// Load reads the config at path, filling unset fields from Default. An
// empty path means DefaultPath, and a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = Default().PageSize
	}
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = Default().ShareBaseURL
	}
	return cfg, nil
}
