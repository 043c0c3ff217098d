// Package cli implements the cycler command-line interface.
//
// # Commands
//
//   - normalize: restore a document and write its canonical decycled form
//   - inspect: report reference tokens, class tags and restore problems
//   - convert: re-encode a document between JSON and YAML
//   - graph: draw the restored graph as DOT, SVG or PNG
//   - serve: expose the same operations over HTTP
//   - cache: inspect or clear the result cache
//
// Documents are read from a file argument or from stdin ("-" or no
// argument) and written to stdout unless --output is given. Status
// messages and logs go to stderr.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cycler/pkg/buildinfo"
	"github.com/matzehuels/cycler/pkg/cache"
	"github.com/matzehuels/cycler/pkg/config"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "cycler"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdin and Stdout carry documents. Status output goes to Stderr.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	configPath string
	noCache    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cycler linearizes cyclic object graphs into JSON and restores them",
		Long: `Cycler encodes object graphs with shared nodes and cycles as plain JSON or
YAML trees. Repeated nodes become {"$ref": PATH} tokens and instances of
registered classes carry a "$class" tag, so the original graph can be
restored on the other side.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cycler/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, nil
}

// newRunner creates a pipeline runner from the loaded configuration.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.Registry = reg
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

// newCache opens the configured backend. An unusable file or Redis cache
// is logged and replaced by a NullCache so documents are still processed.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(cfg.MemoryEntries)
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", cfg.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	case config.BackendFile, "":
		if cfg.Dir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", cfg.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
