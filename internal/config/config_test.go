package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Substance != "acetic_acid" {
		t.Errorf("expected substance acetic_acid, got %s", cfg.Substance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if got := cfg.EquivalenceVolume(); got != 50 {
		t.Errorf("expected equivalence volume 50, got %f", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty substance", func(c *Config) { c.Substance = "" }},
		{"zero molarity", func(c *Config) { c.Molarity = 0 }},
		{"negative volume", func(c *Config) { c.BeakerVolume = -1 }},
		{"zero titrant", func(c *Config) { c.TitrantMolarity = 0 }},
		{"zero max volume", func(c *Config) { c.MaxVolume = 0 }},
		{"one sample", func(c *Config) { c.Samples = 1 }},
		{"empty grid", func(c *Config) { c.Grid.Rows = 0 }},
		{"negative water", func(c *Config) { c.WaterLevel = -0.5 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phsim.yaml")
	if err := os.WriteFile(path, []byte("substance: ammonia\nmolarity: 0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Substance != "ammonia" || cfg.Molarity != 0.2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Grid.Columns != DefaultColumns || cfg.Samples != DefaultSamples {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("samples: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phsim.yaml")
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Store.Backend = "sqlite"

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("weak_acid", "hf_small_beaker")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Substance != "hydrofluoric_acid" {
		t.Errorf("expected hydrofluoric_acid, got %s", cfg.Substance)
	}
	if cfg.Grid.Columns != 10 || cfg.Samples != DefaultSamples {
		t.Errorf("preset not merged over defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}

	cfg.Substance = "changed"
	if GetPreset("weak_acid", "hf_small_beaker").Substance != "hydrofluoric_acid" {
		t.Error("GetPreset returned a shared pointer")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("weak_acid", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "acetic_titration") != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	for _, family := range ListFamilies() {
		names := ListPresets(family)
		if len(names) == 0 {
			t.Errorf("expected presets for %s", family)
		}
		for _, name := range names {
			if err := GetPreset(family, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", family, name, err)
			}
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent family")
	}
}
