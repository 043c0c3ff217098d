package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/cycler/pkg/errors"
)

// isolate points every lookup location at empty temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, ev := range envVars {
		t.Setenv(ev.name, "")
		os.Unsetenv(ev.name)
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(dir, "cache", "cycler"), cfg.Cache.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Classes)
	assert.False(t, cfg.Strict)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "cycler", "config.toml"), `
classes = ["Point", "geo.Polygon"]
strict = true
indent = 2
output_format = "yaml"

[cache]
backend = "memory"
ttl = "12h"
memory_entries = 64

[server]
addr = ":9000"
read_timeout = "5s"
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"Point", "geo.Polygon"}, cfg.Classes)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2, cfg.Indent)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.MemoryEntries)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// Unset keys keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `indent = 4`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Indent)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeNotFound), "got %v", err)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.toml")
	writeFile(t, path, "indnet = 2\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indnet")
}

func TestLoadRejectsBadTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.toml")
	writeFile(t, path, "classes = [\n")

	_, err := Load(path)
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidInput), "got %v", err)
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "cycler", "config.toml"), "indent = 2\n")

	t.Setenv("CYCLER_INDENT", "4")
	t.Setenv("CYCLER_CLASSES", "A, B ,,C")
	t.Setenv("CYCLER_STRICT", "true")
	t.Setenv("CYCLER_CACHE_BACKEND", "redis")
	t.Setenv("CYCLER_REDIS_ADDR", "localhost:6379")
	t.Setenv("CYCLER_CACHE_TTL", "90m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Classes)
	assert.True(t, cfg.Strict)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
}

func TestEnvInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("CYCLER_STRICT", "maybe")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CYCLER_STRICT")
}

func TestDotenv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "CYCLER_SERVER_ADDR=:7070\n")
	t.Cleanup(func() { os.Unsetenv("CYCLER_SERVER_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		code   cerrors.Code
	}{
		{"bad class", func(c *Config) { c.Classes = []string{"3D"} }, cerrors.ErrCodeInvalidClass},
		{"duplicate class", func(c *Config) { c.Classes = []string{"A", "A"} }, cerrors.ErrCodeInvalidInput},
		{"indent", func(c *Config) { c.Indent = 9 }, cerrors.ErrCodeInvalidInput},
		{"format", func(c *Config) { c.InputFormat = "xml" }, cerrors.ErrCodeInvalidInput},
		{"backend", func(c *Config) { c.Cache.Backend = "s3" }, cerrors.ErrCodeInvalidInput},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis }, cerrors.ErrCodeInvalidInput},
		{"no server addr", func(c *Config) { c.Server.Addr = "" }, cerrors.ErrCodeInvalidInput},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, cerrors.GetCode(err), "error: %v", err)
		})
	}
}

func TestRegistry(t *testing.T) {
	cfg := Default()
	cfg.Classes = []string{"Point", "geo.Polygon"}

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"Point", "geo.Polygon"}, reg.Names())

	c, ok := reg.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, "Point", c.Name)

	cfg.Classes = []string{""}
	_, err = cfg.Registry()
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidClass))
}
