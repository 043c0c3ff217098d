package cache

import "slices"

// DocumentKeyOpts holds the options that change the output of a document
// operation (normalize, convert).
type DocumentKeyOpts struct {
	InputFormat  string   `json:"in"`
	OutputFormat string   `json:"out"`
	Indent       int      `json:"indent"`
	Strict       bool     `json:"strict"`
	Classes      []string `json:"classes,omitempty"`
}

// GraphKeyOpts holds the options that change a rendered graph.
type GraphKeyOpts struct {
	InputFormat string   `json:"in"`
	Format      string   `json:"format"`
	Strict      bool     `json:"strict"`
	Classes     []string `json:"classes,omitempty"`
}

// Keyer derives cache keys from operation inputs.
type Keyer interface {
	// DocumentKey returns the key for the result of op over the input
	// identified by inputHash.
	DocumentKey(op, inputHash string, opts DocumentKeyOpts) string

	// GraphKey returns the key for a graph rendering of the input.
	GraphKey(inputHash string, opts GraphKeyOpts) string
}

// DefaultKeyer hashes the options into the key so that any option change
// produces a different entry.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

// DocumentKey implements Keyer.
func (DefaultKeyer) DocumentKey(op, inputHash string, opts DocumentKeyOpts) string {
	opts.Classes = sortedCopy(opts.Classes)
	return hashKey("doc:"+op, inputHash, opts)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	opts.Classes = sortedCopy(opts.Classes)
	return hashKey("graph", inputHash, opts)
}

func sortedCopy(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	s = slices.Clone(s)
	slices.Sort(s)
	return s
}

var _ Keyer = (*DefaultKeyer)(nil)
