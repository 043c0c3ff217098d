// Package pipeline provides the document operations shared by the cycler
// CLI and HTTP API.
//
// By centralizing this logic, both entry points decode, restore, encode
// and cache documents the same way.
//
// # Operations
//
//  1. Normalize: decode, restore the graph, decycle it again and encode.
//     Hand-edited documents come out with canonical paths, shared nodes
//     deduplicated and unknown class tags stripped.
//  2. Inspect: report reference tokens, class tags and restore counters
//     without producing output.
//  3. Convert: re-encode between JSON and YAML without restoring.
//  4. Graph: restore the graph and draw it as DOT, SVG or PNG.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Normalize(ctx, pipeline.Options{
//	    Input:        data,
//	    InputFormat:  "yaml",
//	    OutputFormat: "json",
//	    Indent:       2,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cycler/pkg/cache"
	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/cycle"
	"github.com/matzehuels/cycler/pkg/dot"
	cerrors "github.com/matzehuels/cycler/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultInputFormat is the wire format assumed for input.
	DefaultInputFormat = codec.FormatJSON

	// DefaultGraphFormat is the output format of Graph.
	DefaultGraphFormat = dot.FormatSVG

	// MaxIndent bounds the indentation width.
	MaxIndent = 8

	// MaxInputSize bounds the accepted document size in bytes.
	MaxInputSize = 32 << 20
)

// Operation names, used for cache keys, logs and metrics.
const (
	OpNormalize = "normalize"
	OpInspect   = "inspect"
	OpConvert   = "convert"
	OpGraph     = "graph"
)

// =============================================================================
// Options - Operation Configuration
// =============================================================================

// Options configures a pipeline operation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the encoded document.
	Input []byte `json:"-"`

	InputFormat  codec.Format `json:"in,omitempty"`
	OutputFormat codec.Format `json:"out,omitempty"` // defaults to InputFormat
	Indent       int          `json:"indent,omitempty"`

	// Strict fails on class tags that name no registered class instead
	// of stripping them.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Graph options
	GraphFormat string `json:"format,omitempty"`
	Detailed    bool   `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the output of Normalize, Convert and Graph.
type Result struct {
	// Output is the encoded document or rendered graph.
	Output []byte

	// Format is the codec format of Output, or the graph format for Graph.
	Format string

	// InputHash is the content hash of the input.
	InputHash string

	// Stats holds the restore and decycle counters. It is zero when the
	// result came from the cache.
	Stats cycle.Stats

	// CacheHit reports whether Output came from the cache.
	CacheHit bool

	Duration time.Duration
}

// Report is the output of Inspect.
type Report struct {
	Format    string `json:"format"`
	InputHash string `json:"input_hash"`

	cycle.Summary

	// Unregistered lists class tags that name no registered class.
	Unregistered []string `json:"unregistered,omitempty"`

	// Restore holds the counters of a trial restore of the document.
	Restore cycle.Stats `json:"restore"`

	// Error describes why the document cannot be restored, if it cannot.
	Error     string        `json:"error,omitempty"`
	ErrorCode cerrors.Code  `json:"error_code,omitempty"`
	CacheHit  bool          `json:"-"`
	Duration  time.Duration `json:"-"`
}

// OK reports whether the document can be restored.
func (r *Report) OK() bool { return r.Error == "" }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateGraphFormat checks that a graph output format is valid.
func ValidateGraphFormat(format string) error {
	if !slices.Contains(dot.Formats, format) {
		return cerrors.New(cerrors.ErrCodeInvalidFormat,
			"invalid graph format: %q (must be one of: %s)", format, strings.Join(dot.Formats, ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "input is empty")
	}
	if len(o.Input) > MaxInputSize {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "input too large (max %d bytes)", MaxInputSize)
	}

	if o.InputFormat == "" {
		o.InputFormat = DefaultInputFormat
	}
	in, err := codec.ParseFormat(string(o.InputFormat))
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "invalid input format")
	}
	o.InputFormat = in

	if o.OutputFormat == "" {
		o.OutputFormat = o.InputFormat
	}
	out, err := codec.ParseFormat(string(o.OutputFormat))
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "invalid output format")
	}
	o.OutputFormat = out

	if o.Indent < 0 || o.Indent > MaxIndent {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "indent must be between 0 and %d", MaxIndent)
	}

	if o.GraphFormat == "" {
		o.GraphFormat = DefaultGraphFormat
	}
	if err := ValidateGraphFormat(o.GraphFormat); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// documentKeyOpts returns cache key options for document operations.
func (o *Options) documentKeyOpts(classes []string) cache.DocumentKeyOpts {
	return cache.DocumentKeyOpts{
		InputFormat:  string(o.InputFormat),
		OutputFormat: string(o.OutputFormat),
		Indent:       o.Indent,
		Strict:       o.Strict,
		Classes:      classes,
	}
}

// graphKeyOpts returns cache key options for graph rendering.
func (o *Options) graphKeyOpts(classes []string) cache.GraphKeyOpts {
	format := o.GraphFormat
	if o.Detailed {
		format += "+detailed"
	}
	return cache.GraphKeyOpts{
		InputFormat: string(o.InputFormat),
		Format:      format,
		Strict:      o.Strict,
		Classes:     classes,
	}
}
