// Package config loads dimpact's repo-level configuration from
// .dimpact/config.toml via viper, applies environment variable overrides,
// and falls back to defaults when no file is present.
//
// Grounded on internal/config/config.go in SimplyLiz-CodeMCP for the
// LoadResult/EnvOverride/applyEnvOverrides shape, narrowed to dimpact's much
// smaller configuration surface and switched from SimplyLiz-CodeMCP's JSON config
// file to TOML (github.com/pelletier/go-toml/v2, wired in transitively
// through viper) per this project's ambient config format.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvOverride records one environment-variable override applied on load.
type EnvOverride struct {
	EnvVar    string
	Path      string
	Value     interface{}
	FromValue string
}

// LoggingConfig controls the CLI's structured logger.
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// Config is dimpact's complete repo-level configuration.
type Config struct {
	Version int `toml:"version" mapstructure:"version"`

	// CacheScope selects "local" or "global" persistent-store placement
	// (§4.5) when a command doesn't pass an explicit --scope flag.
	CacheScope string `toml:"cache_scope" mapstructure:"cache_scope"`

	// IgnoreDirs is merged with any --ignore-dirs flags the command line
	// supplies (SPEC_FULL §11): config entries apply always, flags add more.
	IgnoreDirs []string `toml:"ignore_dirs" mapstructure:"ignore_dirs"`

	// Language forces a single analyzer for every file regardless of
	// extension, mirroring the --language flag (§6.3). Empty means
	// extension-based dispatch.
	Language string `toml:"language" mapstructure:"language"`

	// DefaultMaxDepth is the traversal depth bound (§4.7) used when a
	// command omits --max-depth. Negative means unbounded.
	DefaultMaxDepth int `toml:"default_max_depth" mapstructure:"default_max_depth"`

	// OutputFormat is the output_format setting (json/yaml/dot/html,
	// SPEC_FULL §11). It is loaded and merged like the other keys, but no
	// command reads it: each command's --format flag keeps its own default.
	OutputFormat string `toml:"output_format" mapstructure:"output_format"`

	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns dimpact's built-in defaults, used whenever no
// config file is present.
func DefaultConfig() *Config {
	return &Config{
		Version:         1,
		CacheScope:      "local",
		IgnoreDirs:      nil,
		Language:        "",
		DefaultMaxDepth: -1,
		OutputFormat:    "json",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadResult carries the loaded config plus metadata about how it was
// produced.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	EnvOverrides []EnvOverride
	UsedDefaults bool
}

const configFileName = "config"
const configDirName = ".dimpact"

// EnvConfigPath lets a caller point at an explicit config file, bypassing
// repoRoot-relative discovery.
const EnvConfigPath = "DIMPACT_CONFIG_PATH"

// Load loads configuration for repoRoot, returning just the Config.
func Load(repoRoot string) (*Config, error) {
	result, err := LoadWithDetails(repoRoot)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadWithDetails loads configuration for repoRoot and reports how it was
// loaded: the file path used (if any), whether defaults were used, and
// which environment variables overrode the file/defaults.
func LoadWithDetails(repoRoot string) (*LoadResult, error) {
	result := &LoadResult{}

	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		cfg, err := loadFromPath(explicit)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s=%s: %w", EnvConfigPath, explicit, err)
		}
		result.Config = cfg
		result.ConfigPath = explicit
	} else {
		v := viper.New()
		setDefaults(v)
		v.SetConfigName(configFileName)
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(repoRoot, configDirName))

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				result.Config = DefaultConfig()
				result.UsedDefaults = true
			} else {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else {
			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
			result.Config = &cfg
			result.ConfigPath = v.ConfigFileUsed()
		}
	}

	result.EnvOverrides = applyEnvOverrides(result.Config)
	return result, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("cache_scope", d.CacheScope)
	v.SetDefault("language", d.Language)
	v.SetDefault("default_max_depth", d.DefaultMaxDepth)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

func loadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type envVarDef struct {
	path    string
	varType string // "string", "int", "stringlist"
}

var envVarMappings = map[string]envVarDef{
	"DIMPACT_LOG_LEVEL":         {path: "logging.level", varType: "string"},
	"DIMPACT_LOG_FORMAT":        {path: "logging.format", varType: "string"},
	"DIMPACT_CACHE_SCOPE_PREF":  {path: "cache_scope", varType: "string"},
	"DIMPACT_LANGUAGE":          {path: "language", varType: "string"},
	"DIMPACT_DEFAULT_MAX_DEPTH": {path: "default_max_depth", varType: "int"},
	"DIMPACT_OUTPUT_FORMAT":     {path: "output_format", varType: "string"},
	"DIMPACT_IGNORE_DIRS":       {path: "ignore_dirs", varType: "stringlist"},
}

func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride

	for envVar, def := range envVarMappings {
		raw := os.Getenv(envVar)
		if raw == "" {
			continue
		}

		var value interface{}
		switch def.varType {
		case "string":
			value = raw
		case "int":
			n, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			value = n
		case "stringlist":
			value = strings.Split(raw, ",")
		default:
			continue
		}

		if applyOverride(cfg, def.path, value) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, Path: def.path, Value: value, FromValue: raw})
		}
	}

	return overrides
}

func applyOverride(cfg *Config, path string, value interface{}) bool {
	switch path {
	case "logging.level":
		if v, ok := value.(string); ok {
			cfg.Logging.Level = v
			return true
		}
	case "logging.format":
		if v, ok := value.(string); ok {
			cfg.Logging.Format = v
			return true
		}
	case "cache_scope":
		if v, ok := value.(string); ok {
			cfg.CacheScope = v
			return true
		}
	case "language":
		if v, ok := value.(string); ok {
			cfg.Language = v
			return true
		}
	case "default_max_depth":
		if v, ok := value.(int); ok {
			cfg.DefaultMaxDepth = v
			return true
		}
	case "output_format":
		if v, ok := value.(string); ok {
			cfg.OutputFormat = v
			return true
		}
	case "ignore_dirs":
		if v, ok := value.([]string); ok {
			cfg.IgnoreDirs = v
			return true
		}
	}
	return false
}
