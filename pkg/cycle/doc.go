// Package cycle converts object graphs that may contain shared references,
// cycles and class instances into tree-shaped documents, and back.
//
// # Overview
//
// A graph is built from [*Object] and [*Array] composites and atomic values
// (nil, booleans, numbers, strings, dates, regular expressions and [Boxed]
// primitives). [Decycle] walks the graph depth first and returns a tree in
// which every composite appears at most once:
//
//   - the first occurrence of a composite is copied
//   - later occurrences become reference tokens {"$ref": PATH}
//   - copies of class instances carry a "$class" tag
//
// [Retrocycle] reverses the process: tags are turned back into class
// instances and reference tokens into live references, restoring cycles.
//
// # Paths
//
// A PATH locates the first occurrence of a composite. "$" is the root,
// [N] selects an array element and ["KEY"] an object property, the key
// written as a JSON string literal:
//
//	$["nodes"][0]["next"]
//
// Only strings matching this grammar are treated as references during
// retrocycling. Anything else under "$ref" is ordinary data.
//
// # Class Tags
//
// Objects are tagged with a "$class" property. Arrays are tagged with an
// extra trailing element {"$class": NAME} so that their indexed data is
// left untouched for other consumers. A [Registry] maps names to classes in
// both directions; [Default] is used when no registry is given.
//
//	point := cycle.NewClass("Point")
//	reg := cycle.NewRegistry()
//	reg.MustRegister("Point", point)
//
//	p := &cycle.Object{Class: point}
//	p.Set("x", 1).Set("y", 2)
//
//	tree := cycle.Decycle(p, reg)         // {"x":1,"y":2,"$class":"Point"}
//	back, err := cycle.Retrocycle(tree, reg) // *Object with Class == point
//
// # Wire Format
//
// This package does not read or write text. See package codec for JSON and
// YAML encoders that preserve key order.
//
// # Concurrency
//
// Decycle and Retrocycle are synchronous and allocate per call. A [Registry]
// is safe for concurrent use; a [Cycler] is not.
package cycle
