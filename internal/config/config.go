// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gemaraproj/reqcite-mcp/internal/pattern"
)

// Config is the complete reqcite configuration.
type Config struct {
	// Concurrency bounds how many units are processed at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// Declarations and Sources are glob patterns selecting the units to process.
	Declarations []string `mapstructure:"declarations" yaml:"declarations"`
	Sources      []string `mapstructure:"sources" yaml:"sources"`
	// Patterns adds or overrides comment patterns by file extension.
	Patterns map[string]PatternConfig `mapstructure:"patterns" yaml:"patterns"`
	Cache    CacheConfig              `mapstructure:"cache" yaml:"cache"`
	Log      LogConfig                `mapstructure:"log" yaml:"log"`
	// Output is the report encoding: json or yaml.
	Output string `mapstructure:"output" yaml:"output"`
}

type PatternConfig struct {
	Meta    string `mapstructure:"meta" yaml:"meta"`
	Content string `mapstructure:"content" yaml:"content"`
	// Lenient ignores content lines that appear outside an annotation block.
	Lenient bool `mapstructure:"lenient" yaml:"lenient"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File receives a copy of the log when set.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Concurrency:  runtime.NumCPU(),
		Declarations: []string{},
		Sources:      []string{},
		Patterns:     map[string]PatternConfig{},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: "json",
	}
}

// SetDefaults registers Default() with v so file, env and flag values layer on top.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("declarations", d.Declarations)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("patterns", d.Patterns)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("output", d.Output)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("output must be json or yaml, got %q", c.Output)
	}
	for ext, p := range c.Patterns {
		if p.Meta == "" || p.Content == "" {
			return fmt.Errorf("pattern %q: meta and content prefixes are required", ext)
		}
		if p.Meta == p.Content {
			return fmt.Errorf("pattern %q: meta and content prefixes must differ", ext)
		}
	}
	return nil
}

// Pattern returns the comment pattern for path, preferring configured
// overrides over the built-in table.
func (c Config) Pattern(path string) (pattern.Comment, bool) {
	for ext, p := range c.Patterns {
		if strings.HasSuffix(strings.ToLower(path), "."+strings.ToLower(strings.TrimPrefix(ext, "."))) {
			return pattern.Comment{Meta: p.Meta, Content: p.Content, Lenient: p.Lenient}, true
		}
	}
	return pattern.ForPath(path)
}
