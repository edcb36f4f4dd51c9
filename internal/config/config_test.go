package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.CacheScope != "local" {
		t.Errorf("CacheScope = %q, want %q", cfg.CacheScope, "local")
	}
	if cfg.DefaultMaxDepth != -1 {
		t.Errorf("DefaultMaxDepth = %d, want -1 (unbounded)", cfg.DefaultMaxDepth)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("OutputFormat = %q, want %q", cfg.OutputFormat, "json")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want {warn text}", cfg.Logging)
	}
}

func TestLoadWithDetailsNoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	result, err := LoadWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadWithDetails: %v", err)
	}
	if !result.UsedDefaults {
		t.Error("UsedDefaults should be true with no config file present")
	}
	if result.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty", result.ConfigPath)
	}
	if result.Config.CacheScope != "local" {
		t.Errorf("CacheScope = %q, want default 'local'", result.Config.CacheScope)
	}
}

func TestLoadWithDetailsReadsTOMLFile(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, ".dimpact")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}

	toml := `
cache_scope = "global"
ignore_dirs = ["testdata", "fixtures"]
output_format = "yaml"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(filepath.Join(cacheDir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadWithDetails: %v", err)
	}
	if result.UsedDefaults {
		t.Error("UsedDefaults should be false when a config file is present")
	}
	if result.Config.CacheScope != "global" {
		t.Errorf("CacheScope = %q, want %q", result.Config.CacheScope, "global")
	}
	if len(result.Config.IgnoreDirs) != 2 || result.Config.IgnoreDirs[0] != "testdata" {
		t.Errorf("IgnoreDirs = %v, want [testdata fixtures]", result.Config.IgnoreDirs)
	}
	if result.Config.OutputFormat != "yaml" {
		t.Errorf("OutputFormat = %q, want %q", result.Config.OutputFormat, "yaml")
	}
	if result.Config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", result.Config.Logging.Level, "debug")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DIMPACT_LOG_LEVEL", "debug")
	t.Setenv("DIMPACT_OUTPUT_FORMAT", "dot")
	t.Setenv("DIMPACT_IGNORE_DIRS", "a,b,c")

	dir := t.TempDir()
	result, err := LoadWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadWithDetails: %v", err)
	}

	if result.Config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", result.Config.Logging.Level, "debug")
	}
	if result.Config.OutputFormat != "dot" {
		t.Errorf("OutputFormat = %q, want %q", result.Config.OutputFormat, "dot")
	}
	if len(result.Config.IgnoreDirs) != 3 || result.Config.IgnoreDirs[2] != "c" {
		t.Errorf("IgnoreDirs = %v, want [a b c]", result.Config.IgnoreDirs)
	}

	var foundLevel, foundFormat, foundIgnore bool
	for _, ov := range result.EnvOverrides {
		switch ov.EnvVar {
		case "DIMPACT_LOG_LEVEL":
			foundLevel = true
		case "DIMPACT_OUTPUT_FORMAT":
			foundFormat = true
		case "DIMPACT_IGNORE_DIRS":
			foundIgnore = true
		}
	}
	if !foundLevel || !foundFormat || !foundIgnore {
		t.Errorf("EnvOverrides missing entries: %+v", result.EnvOverrides)
	}
}

func TestLoadFromExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte(`cache_scope = "global"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	result, err := LoadWithDetails(t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithDetails: %v", err)
	}
	if result.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, path)
	}
	if result.Config.CacheScope != "global" {
		t.Errorf("CacheScope = %q, want %q", result.Config.CacheScope, "global")
	}
}
