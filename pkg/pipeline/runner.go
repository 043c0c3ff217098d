package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/cycler/pkg/cache"
	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/cycle"
	"github.com/matzehuels/cycler/pkg/dot"
	cerrors "github.com/matzehuels/cycler/pkg/errors"
	"github.com/matzehuels/cycler/pkg/observability"
)

var reportJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, registry and logger - it
// doesn't store results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registry names the classes documents may use. Nil selects the
	// process-wide default registry.
	Registry *cycle.Registry

	// TTL overrides the cache.TTLDocument and cache.TTLGraph defaults
	// when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// =============================================================================
// Operations
// =============================================================================

// Normalize restores the input graph and decycles it again, producing the
// canonical encoding of the same graph.
func (r *Runner) Normalize(ctx context.Context, opts Options) (*Result, error) {
	return r.document(ctx, OpNormalize, opts, func(tree any, c *cycle.Cycler) (any, cycle.Stats, error) {
		g, err := c.Retrocycle(tree)
		if err != nil {
			return nil, cycle.Stats{}, err
		}
		restored := c.Stats()
		r.retrocycled(ctx, OpNormalize, restored)

		out := c.Decycle(g)
		stats := c.Stats()
		stats.Resurrected = restored.Resurrected
		stats.Demoted = restored.Demoted
		stats.Resolved = restored.Resolved
		stats.Rejected = restored.Rejected
		return out, stats, nil
	})
}

// Convert re-encodes the input in the output format. Reference tokens and
// class tags are carried over as ordinary data.
func (r *Runner) Convert(ctx context.Context, opts Options) (*Result, error) {
	return r.document(ctx, OpConvert, opts, func(tree any, _ *cycle.Cycler) (any, cycle.Stats, error) {
		return tree, cycle.Stats{}, nil
	})
}

// Graph restores the input graph and renders it as a node-link diagram in
// opts.GraphFormat.
func (r *Runner) Graph(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnOperationStart(ctx, OpGraph, len(opts.Input))

	res, err := r.graph(ctx, opts)
	if err != nil {
		hooks.OnOperationComplete(ctx, OpGraph, 0, time.Since(start), err)
		return nil, err
	}
	res.Duration = time.Since(start)
	hooks.OnOperationComplete(ctx, OpGraph, len(res.Output), res.Duration, nil)
	r.Logger.Info("rendered graph",
		"format", res.Format,
		"bytes", len(res.Output),
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) graph(ctx context.Context, opts Options) (*Result, error) {
	inputHash := cache.Hash(opts.Input)
	key := r.Keyer.GraphKey(inputHash, opts.graphKeyOpts(r.registry().Names()))
	res := &Result{Format: opts.GraphFormat, InputHash: inputHash}

	if data, ok := r.lookup(ctx, "graph", key, opts.Refresh); ok {
		res.Output, res.CacheHit = data, true
		return res, nil
	}

	tree, err := r.decode(ctx, opts)
	if err != nil {
		return nil, err
	}
	c := r.cycler(opts)
	g, err := c.Retrocycle(tree)
	if err != nil {
		return nil, cerrors.Classify(err)
	}
	res.Stats = c.Stats()
	r.retrocycled(ctx, OpGraph, res.Stats)

	src := dot.ToDOT(g, dot.Options{Detailed: opts.Detailed})
	out, err := dot.Render(ctx, src, opts.GraphFormat)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInternal, err, "render graph")
	}
	res.Output = out
	r.store(ctx, "graph", key, out, r.ttl(cache.TTLGraph))
	return res, nil
}

// Inspect reports the reference tokens and class tags of the input and
// whether it can be restored. A document that cannot be restored is not
// an error: the reason is recorded in the report.
func (r *Runner) Inspect(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnOperationStart(ctx, OpInspect, len(opts.Input))

	rep, size, err := r.inspect(ctx, opts)
	if err != nil {
		hooks.OnOperationComplete(ctx, OpInspect, 0, time.Since(start), err)
		return nil, err
	}
	rep.Duration = time.Since(start)
	hooks.OnOperationComplete(ctx, OpInspect, size, rep.Duration, nil)
	r.Logger.Info("inspected document",
		"objects", rep.Objects,
		"arrays", rep.Arrays,
		"refs", len(rep.Refs),
		"ok", rep.OK(),
		"cached", rep.CacheHit,
		"duration", rep.Duration)
	return rep, nil
}

func (r *Runner) inspect(ctx context.Context, opts Options) (*Report, int, error) {
	reg := r.registry()
	inputHash := cache.Hash(opts.Input)
	key := r.Keyer.DocumentKey(OpInspect, inputHash, opts.documentKeyOpts(reg.Names()))

	if data, ok := r.lookup(ctx, "document", key, opts.Refresh); ok {
		var rep Report
		if err := reportJSON.Unmarshal(data, &rep); err == nil {
			rep.CacheHit = true
			return &rep, len(data), nil
		}
	}

	tree, err := r.decode(ctx, opts)
	if err != nil {
		return nil, 0, err
	}

	rep := &Report{
		Format:    string(opts.InputFormat),
		InputHash: inputHash,
		Summary:   cycle.Scan(tree),
	}
	for name := range rep.Classes {
		if _, ok := reg.Lookup(name); !ok {
			rep.Unregistered = append(rep.Unregistered, name)
		}
	}
	slices.Sort(rep.Unregistered)

	c := r.cycler(opts)
	if _, err := c.Retrocycle(tree); err != nil {
		e := cerrors.Classify(err)
		rep.Error = cerrors.UserMessage(e)
		rep.ErrorCode = e.Code
	}
	rep.Restore = c.Stats()
	r.retrocycled(ctx, OpInspect, rep.Restore)

	data, err := reportJSON.Marshal(rep)
	if err != nil {
		return nil, 0, cerrors.Wrap(cerrors.ErrCodeInternal, err, "encode report")
	}
	r.store(ctx, "document", key, data, r.ttl(cache.TTLDocument))
	return rep, len(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

var doneMessages = map[string]string{
	OpNormalize: "normalized document",
	OpConvert:   "converted document",
}

type transform func(tree any, c *cycle.Cycler) (any, cycle.Stats, error)

// document runs a decode → transform → encode operation with caching.
func (r *Runner) document(ctx context.Context, op string, opts Options, fn transform) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnOperationStart(ctx, op, len(opts.Input))

	res, err := r.runDocument(ctx, op, opts, fn)
	if err != nil {
		hooks.OnOperationComplete(ctx, op, 0, time.Since(start), err)
		return nil, err
	}
	res.Duration = time.Since(start)
	hooks.OnOperationComplete(ctx, op, len(res.Output), res.Duration, nil)

	r.Logger.Info(doneMessages[op],
		"in", opts.InputFormat,
		"out", opts.OutputFormat,
		"refs", res.Stats.Refs,
		"classes", res.Stats.Tagged,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) runDocument(ctx context.Context, op string, opts Options, fn transform) (*Result, error) {
	inputHash := cache.Hash(opts.Input)
	key := r.Keyer.DocumentKey(op, inputHash, opts.documentKeyOpts(r.registry().Names()))
	res := &Result{Format: string(opts.OutputFormat), InputHash: inputHash}

	if data, ok := r.lookup(ctx, "document", key, opts.Refresh); ok {
		res.Output, res.CacheHit = data, true
		return res, nil
	}

	tree, err := r.decode(ctx, opts)
	if err != nil {
		return nil, err
	}
	out, stats, err := fn(tree, r.cycler(opts))
	if err != nil {
		return nil, cerrors.Classify(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cerrors.Classify(err)
	}

	data, err := codec.Marshal(out, opts.OutputFormat, opts.Indent)
	if err != nil {
		return nil, cerrors.Classify(fmt.Errorf("encode %s: %w", opts.OutputFormat, err))
	}
	res.Output, res.Stats = data, stats
	r.store(ctx, "document", key, data, r.ttl(cache.TTLDocument))
	return res, nil
}

func (r *Runner) decode(ctx context.Context, opts Options) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, cerrors.Classify(err)
	}
	tree, err := codec.Unmarshal(opts.Input, opts.InputFormat)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "decode %s input", opts.InputFormat)
	}
	return tree, nil
}

func (r *Runner) cycler(opts Options) *cycle.Cycler {
	return cycle.New(cycle.Options{
		Registry:      r.registry(),
		Logger:        opts.Logger,
		StrictClasses: opts.Strict,
	})
}

func (r *Runner) registry() *cycle.Registry {
	if r.Registry != nil {
		return r.Registry
	}
	return cycle.Default()
}

// lookup reads key from the cache unless refresh is set. Backend errors
// count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) retrocycled(ctx context.Context, op string, s cycle.Stats) {
	observability.Pipeline().OnRetrocycle(ctx, op, s.Resolved, s.Rejected, s.Resurrected, s.Demoted)
	if s.Demoted > 0 {
		r.Logger.Warn("stripped unknown class tags", "op", op, "count", s.Demoted)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
