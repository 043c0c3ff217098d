package cycle

import (
	"github.com/charmbracelet/log"
)

// Options configures a [Cycler].
type Options struct {
	// Registry is the naming context. Nil selects [Default].
	Registry *Registry

	// Logger receives debug events for demoted class tags and rejected
	// reference tokens. Nil disables logging.
	Logger *log.Logger

	// StrictClasses makes Retrocycle fail with an [*UnknownClassError]
	// instead of stripping tags that name no registered class.
	StrictClasses bool
}

// Stats counts what the last Decycle or Retrocycle call did.
type Stats struct {
	Composites int `json:"composites"` // distinct objects and arrays copied (Decycle)
	Refs       int `json:"refs"`       // reference tokens emitted (Decycle)
	Tagged     int `json:"tagged"`     // class tags emitted (Decycle)

	Resurrected int `json:"resurrected"` // nodes rebuilt as class instances (Retrocycle)
	Demoted     int `json:"demoted"`     // class tags stripped because the class is unknown (Retrocycle)
	Resolved    int `json:"resolved"`    // reference tokens replaced by live references (Retrocycle)
	Rejected    int `json:"rejected"`    // $ref strings that failed the path grammar (Retrocycle)
}

// Cycler runs decycle and retrocycle passes with fixed options.
// A Cycler is not safe for concurrent use; create one per goroutine.
type Cycler struct {
	opts  Options
	stats Stats
}

// New returns a Cycler configured by opts.
func New(opts Options) *Cycler {
	return &Cycler{opts: opts}
}

// Stats returns the counters of the most recent call.
func (c *Cycler) Stats() Stats { return c.stats }

func (c *Cycler) debug(msg string, kv ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Debug(msg, kv...)
	}
}

// Decycle returns a tree-shaped copy of v using the process-wide registry
// when reg is nil. See [Cycler.Decycle].
func Decycle(v any, reg *Registry) any {
	return New(Options{Registry: reg}).Decycle(v)
}

// Retrocycle restores the graph encoded in tree using the process-wide
// registry when reg is nil. See [Cycler.Retrocycle].
func Retrocycle(tree any, reg *Registry) (any, error) {
	return New(Options{Registry: reg}).Retrocycle(tree)
}
