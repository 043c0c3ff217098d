package dot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/cycler/pkg/cycle"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes atomic fields and elements in node labels.
	// When false, only the class name and path are shown.
	Detailed bool

	// MaxFields caps the atomic entries listed per node when Detailed is
	// set. Zero means DefaultMaxFields.
	MaxFields int
}

// DefaultMaxFields is the label field cap used when Options.MaxFields is zero.
const DefaultMaxFields = 8

const maxValueLen = 32

// ToDOT converts a graph to Graphviz DOT source. Nodes are numbered in
// depth-first discovery order starting at n0 for root.
func ToDOT(root any, opts Options) string {
	if opts.MaxFields <= 0 {
		opts.MaxFields = DefaultMaxFields
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Menlo, monospace\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Menlo, monospace\", fontsize=10];\n")
	buf.WriteString("\n")

	if !cycle.IsComposite(root) {
		fmt.Fprintf(&buf, "  n0 [label=%q, shape=plaintext];\n", formatAtom(root))
		buf.WriteString("}\n")
		return buf.String()
	}

	w := &walker{ids: make(map[any]int)}
	w.visit(root, cycle.Root)

	for i, n := range w.nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.label(opts))}
		if n.array {
			attrs = append(attrs, "shape=box3d")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}
	if len(w.edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range w.edges {
		attrs := fmt.Sprintf("label=%q", e.label)
		if e.back {
			attrs += ", style=dashed, constraint=false"
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.from, e.to, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type node struct {
	name   string
	path   string
	array  bool
	fields []string
}

func (n node) label(opts Options) string {
	parts := []string{n.name, n.path}
	if opts.Detailed && len(n.fields) > 0 {
		fields := n.fields
		if len(fields) > opts.MaxFields {
			more := len(fields) - opts.MaxFields
			fields = append(fields[:opts.MaxFields:opts.MaxFields], fmt.Sprintf("… %d more", more))
		}
		parts = append(parts, strings.Join(fields, "\n"))
	}
	return strings.Join(parts, "\n")
}

type edge struct {
	from, to int
	label    string
	back     bool // target is an ancestor on the discovery path
}

type walker struct {
	ids     map[any]int
	nodes   []node
	edges   []edge
	onStack map[int]bool
}

// visit records v and everything reachable from it, returning v's index.
func (w *walker) visit(v any, path string) int {
	if id, ok := w.ids[v]; ok {
		return id
	}
	id := len(w.nodes)
	w.ids[v] = id
	if w.onStack == nil {
		w.onStack = make(map[int]bool)
	}
	w.onStack[id] = true
	defer delete(w.onStack, id)

	switch x := v.(type) {
	case *cycle.Object:
		w.nodes = append(w.nodes, node{name: kindName(x.Class, "object"), path: path})
		for _, k := range x.Keys() {
			child, _ := x.Get(k)
			if cycle.IsComposite(child) {
				w.link(id, child, cycle.KeyPath(path, k), k)
				continue
			}
			w.nodes[id].fields = append(w.nodes[id].fields, k+": "+formatAtom(child))
		}
	case *cycle.Array:
		w.nodes = append(w.nodes, node{name: kindName(x.Class, "array"), path: path, array: true})
		for i, e := range x.Elems {
			idx := "[" + strconv.Itoa(i) + "]"
			if cycle.IsComposite(e) {
				w.link(id, e, cycle.IndexPath(path, i), idx)
				continue
			}
			w.nodes[id].fields = append(w.nodes[id].fields, idx+": "+formatAtom(e))
		}
	}
	return id
}

func (w *walker) link(from int, child any, path, label string) {
	to, seen := w.ids[child]
	if !seen {
		to = w.visit(child, path)
	}
	w.edges = append(w.edges, edge{from: from, to: to, label: label, back: seen && w.onStack[to]})
}

func kindName(c *cycle.Class, fallback string) string {
	if c == nil {
		return fallback
	}
	return c.String()
}

func formatAtom(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		if utf8.RuneCountInString(x) > maxValueLen {
			x = string([]rune(x)[:maxValueLen]) + "…"
		}
		return strconv.Quote(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.Format(time.RFC3339)
	case *regexp.Regexp:
		return "/" + x.String() + "/"
	case cycle.Boxed:
		return formatAtom(x.Value)
	case *cycle.Boxed:
		if x == nil {
			return "null"
		}
		return formatAtom(x.Value)
	}
	return fmt.Sprint(v)
}
