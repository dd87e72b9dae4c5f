// Package config loads beacon.yml and exposes generator settings with
// sensible defaults, so running beacon in a fresh project needs no
// configuration at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/beacon-tools/beacon/internal/generator/filter"
)

// Config represents the beacon configuration.
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Source      SourceConfig   `mapstructure:"source"`
	Generate    GenerateConfig `mapstructure:"generate"`
	Cache       CacheConfig    `mapstructure:"cache"`
}

// SourceConfig says which packages to scan.
type SourceConfig struct {
	Packages []string `mapstructure:"packages"`
	Excludes []string `mapstructure:"excludes"`
}

// GenerateConfig controls what the emitter produces.
type GenerateConfig struct {
	// Syntax selects which candidate forms are recognized: "legacy"
	// accepts only directive comments, "tag" additionally accepts struct
	// tags.
	Syntax string `mapstructure:"syntax"`
	// Changing emits pre-change notifications alongside post-change ones.
	Changing bool `mapstructure:"changing"`
}

// CacheConfig controls incremental generation.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Load reads beacon.yml or beacon.yaml from the working directory, falling
// back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("source.packages", []string{"./..."})
	v.SetDefault("generate.syntax", "tag")
	v.SetDefault("generate.changing", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", ".beacon-cache")

	v.SetConfigName("beacon")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BEACON")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file, defaults apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SyntaxVersion maps the configured syntax name to the filter's gate.
func (c *Config) SyntaxVersion() filter.SyntaxVersion {
	if c.Generate.Syntax == "legacy" {
		return filter.SyntaxLegacy
	}
	return filter.SyntaxTag
}

// Fingerprint folds every setting that affects emitted output into one
// string. The cache stores it so entries from a different configuration
// never hit.
func (c *Config) Fingerprint(toolVersion string) string {
	return fmt.Sprintf("%s|syntax=%s|changing=%t",
		toolVersion, c.Generate.Syntax, c.Generate.Changing)
}

// InProject checks whether the current directory is a beacon project.
func InProject() bool {
	if _, err := os.Stat("beacon.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("beacon.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot finds the nearest ancestor directory holding beacon.yml,
// falling back to the go.mod root.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "beacon.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "beacon.yaml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a beacon project (no beacon.yml or go.mod found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Generate.Syntax {
	case "legacy", "tag":
	default:
		return fmt.Errorf("generate.syntax must be \"legacy\" or \"tag\", got: %s", cfg.Generate.Syntax)
	}
	if len(cfg.Source.Packages) == 0 {
		return fmt.Errorf("source.packages must not be empty")
	}
	for _, p := range cfg.Source.Packages {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("source.packages contains an empty pattern")
		}
	}
	return nil
}
