// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/reqcite-mcp/internal/config"
	"github.com/gemaraproj/reqcite-mcp/internal/pattern"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	d := config.Default()
	assert.Equal(t, d.Concurrency, cfg.Concurrency)
	assert.Equal(t, d.Cache, cfg.Cache)
	assert.Equal(t, d.Log, cfg.Log)
	assert.Equal(t, "json", cfg.Output)
	assert.Empty(t, cfg.Declarations)
	assert.Empty(t, cfg.Patterns)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency: 3
declarations: ["compliance/*.toml"]
cache:
  ttl: 30s
patterns:
  adoc:
    meta: "//="
    content: "//#"
  ps1:
    meta: "#="
    content: "##"
    lenient: true
output: yaml
`), 0o644))

	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, []string{"compliance/*.toml"}, cfg.Declarations)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "yaml", cfg.Output)

	p, ok := cfg.Pattern("docs/index.ADOC")
	require.True(t, ok)
	assert.Equal(t, pattern.Comment{Meta: "//=", Content: "//#"}, p)

	p, ok = cfg.Pattern("build.ps1")
	require.True(t, ok)
	assert.Equal(t, pattern.Comment{Meta: "#=", Content: "##", Lenient: true}, p)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("REQCITE_CONCURRENCY", "5")
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("REQCITE")
	v.AutomaticEnv()

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Concurrency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "zero concurrency", mutate: func(c *config.Config) { c.Concurrency = 0 }},
		{name: "unknown output", mutate: func(c *config.Config) { c.Output = "xml" }},
		{name: "empty pattern", mutate: func(c *config.Config) { c.Patterns["x"] = config.PatternConfig{Meta: "//="} }},
		{name: "identical prefixes", mutate: func(c *config.Config) { c.Patterns["x"] = config.PatternConfig{Meta: "#", Content: "#"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPattern_FallsBackToBuiltins(t *testing.T) {
	p, ok := config.Default().Pattern("main.go")
	require.True(t, ok)
	assert.Equal(t, pattern.Default(), p)

	_, ok = config.Default().Pattern("README")
	assert.False(t, ok)
}
