// Package dot draws object graphs as Graphviz node-link diagrams.
//
// # Overview
//
// [ToDOT] walks a graph of [cycle.Object] and [cycle.Array] values by
// identity, so shared nodes appear once with several incoming edges and
// cycles show up as back edges. Each composite becomes a box labeled with
// its class name (or "object" / "array") and the path where it was first
// reached; edges are labeled with the key or index that leads to the child.
//
// # Usage
//
// Restore a decycled document, then render it:
//
//	g, err := cycle.Retrocycle(tree, reg)
//	src := dot.ToDOT(g, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package dot
