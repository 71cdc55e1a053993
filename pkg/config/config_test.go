package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	const doc = `
catalog_path: /var/lib/nihontowatch/catalog.db
endpoint: https://api.nihontowatch.example
open_only: false
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogPath != "/var/lib/nihontowatch/catalog.db" {
		t.Errorf("expected catalog path override, got %q", cfg.CatalogPath)
	}
	if cfg.Endpoint != "https://api.nihontowatch.example" {
		t.Errorf("expected endpoint override, got %q", cfg.Endpoint)
	}
	if cfg.OpenOnly {
		t.Error("expected open_only overridden to false")
	}
	// Unset fields keep their defaults.
	if cfg.PageSize != Default().PageSize {
		t.Errorf("expected default page size, got %d", cfg.PageSize)
	}
	if cfg.ShareBaseURL != Default().ShareBaseURL {
		t.Errorf("expected default share base, got %q", cfg.ShareBaseURL)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
