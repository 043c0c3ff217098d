// Package codec reads and writes decycled trees as JSON or YAML text.
//
// Decoding produces [cycle.Object] and [cycle.Array] values so that object
// keys keep their document order, which is what path-based references and
// class tags rely on. Numbers are decoded as [encoding/json.Number] to
// keep their exact text.
//
// Encoding accepts any tree built from those types and atomic values. It
// refuses cyclic input with [ErrCyclic]: run [cycle.Decycle] first. Dates
// are written as RFC 3339 strings, [cycle.Boxed] values as their payload
// and regular expressions as empty objects, matching what JSON.stringify
// does with the same wrapper kinds.
//
// YAML anchors and aliases decode to a single shared composite, so a YAML
// document can describe shared structure natively; [cycle.Decycle] turns
// it into reference tokens.
package codec
