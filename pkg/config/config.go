// Package config loads cycler settings from a TOML file, a .env file and
// CYCLER_* environment variables, in increasing order of precedence.
//
// The file lives at $XDG_CONFIG_HOME/cycler/config.toml (or
// ~/.config/cycler/config.toml) unless a path is given explicitly:
//
//	classes = ["Point", "geo.Polygon"]
//	strict = false
//	indent = 2
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/cycler/pkg/cycle"
	cerrors "github.com/matzehuels/cycler/pkg/errors"
)

const appName = "cycler"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds all cycler settings.
type Config struct {
	// Classes are registered by name before documents are processed.
	Classes []string `toml:"classes" validate:"unique,dive,classname"`

	Strict       bool   `toml:"strict"`
	Indent       int    `toml:"indent" validate:"min=0,max=8"`
	InputFormat  string `toml:"input_format" validate:"omitempty,oneof=json yaml yml"`
	OutputFormat string `toml:"output_format" validate:"omitempty,oneof=json yaml yml"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" validate:"oneof=file memory redis none"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl" validate:"min=0"`
	MemoryEntries int           `toml:"memory_entries" validate:"min=0"`
	RedisAddr     string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db" validate:"min=0"`
	Prefix        string        `toml:"prefix"`
}

// ServerConfig configures cycler serve.
type ServerConfig struct {
	Addr         string        `toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"min=0"`
	MaxBodyBytes int64         `toml:"max_body_bytes" validate:"min=0"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:       BackendFile,
			MemoryEntries: 1024,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 32 << 20,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/cycler/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the settings. An empty path selects DefaultPath, which may
// be missing; an explicit path must exist. Variables from a .env file in
// the working directory are loaded first without overriding the process
// environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, os.ErrNotExist) {
		return cerrors.Wrap(cerrors.ErrCodeNotFound, err, "config file %s", path)
	}
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// envVar binds an environment variable to a setter.
type envVar struct {
	name string
	set  func(c *Config, v string) error
}

var envVars = []envVar{
	{"CYCLER_CLASSES", func(c *Config, v string) error {
		c.Classes = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Classes = append(c.Classes, name)
			}
		}
		return nil
	}},
	{"CYCLER_STRICT", func(c *Config, v string) (err error) {
		c.Strict, err = strconv.ParseBool(v)
		return err
	}},
	{"CYCLER_INDENT", func(c *Config, v string) (err error) {
		c.Indent, err = strconv.Atoi(v)
		return err
	}},
	{"CYCLER_INPUT_FORMAT", func(c *Config, v string) error { c.InputFormat = v; return nil }},
	{"CYCLER_OUTPUT_FORMAT", func(c *Config, v string) error { c.OutputFormat = v; return nil }},
	{"CYCLER_CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"CYCLER_CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"CYCLER_CACHE_TTL", func(c *Config, v string) (err error) {
		c.Cache.TTL, err = time.ParseDuration(v)
		return err
	}},
	{"CYCLER_REDIS_ADDR", func(c *Config, v string) error { c.Cache.RedisAddr = v; return nil }},
	{"CYCLER_REDIS_PASSWORD", func(c *Config, v string) error { c.Cache.RedisPassword = v; return nil }},
	{"CYCLER_SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
}

func (c *Config) applyEnv() error {
	for _, ev := range envVars {
		v, ok := os.LookupEnv(ev.name)
		if !ok {
			continue
		}
		if err := ev.set(c, strings.TrimSpace(v)); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "invalid %s", ev.name)
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("classname", func(fl validator.FieldLevel) bool {
		return cerrors.ValidateClassName(fl.Field().String()) == nil
	})
	return v
}

// Validate checks every setting.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return cerrors.Wrap(cerrors.ErrCodeInternal, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	code := cerrors.ErrCodeInvalidInput
	if verrs[0].Tag() == "classname" {
		code = cerrors.ErrCodeInvalidClass
	}
	return cerrors.New(code, "invalid config: %s", strings.Join(msgs, "; "))
}

// Registry returns a registry holding one class per configured name.
func (c *Config) Registry() (*cycle.Registry, error) {
	reg := cycle.NewRegistry()
	for _, name := range c.Classes {
		if err := cerrors.ValidateClassName(name); err != nil {
			return nil, err
		}
		if err := reg.Register(name, cycle.NewClass(name)); err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidClass, err, "register %q", name)
		}
	}
	return reg, nil
}
