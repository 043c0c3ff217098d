package cycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Root is the path of the top-level value.
const Root = "$"

// pathRe is the strict path grammar: the root symbol followed by any number
// of [index] or ["key"] segments, keys being JSON string literals. RE2 has
// no backtracking, so long paths are safe to test.
var pathRe = regexp.MustCompile(`^\$(?:\[(?:\d+|"(?:[^\\"\x00-\x1f]|\\(?:[\\"/bfnrt]|u[0-9a-fA-F]{4}))*")\])*$`)

// IsPath reports whether s is a well-formed path.
func IsPath(s string) bool {
	return pathRe.MatchString(s)
}

// IndexPath returns the path of element i of the array at p.
func IndexPath(p string, i int) string {
	return p + "[" + strconv.Itoa(i) + "]"
}

// KeyPath returns the path of property k of the object at p.
func KeyPath(p, k string) string {
	var b strings.Builder
	b.Grow(len(p) + len(k) + 4)
	b.WriteString(p)
	b.WriteByte('[')
	writeQuoted(&b, k)
	b.WriteByte(']')
	return b.String()
}

// writeQuoted writes s as a JSON string literal, escaping exactly what
// JSON.stringify escapes.
func writeQuoted(b *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xf])
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// SegmentKind distinguishes index and key segments.
type SegmentKind int

const (
	// SegmentIndex addresses an array element: [3].
	SegmentIndex SegmentKind = iota
	// SegmentKey addresses an object property: ["name"].
	SegmentKey
)

// Segment is one bracketed step of a [Path].
type Segment struct {
	Kind  SegmentKind
	Index int
	Key   string
}

func (s Segment) String() string {
	if s.Kind == SegmentIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	var b strings.Builder
	b.WriteByte('[')
	writeQuoted(&b, s.Key)
	b.WriteByte(']')
	return b.String()
}

// Path is a parsed path: the segments following the root symbol.
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	b.WriteString(Root)
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// ParsePath parses s into its segments. It returns an error wrapping
// [ErrInvalidPath] if s does not match the path grammar or an index does
// not fit in an int.
func ParsePath(s string) (Path, error) {
	if !IsPath(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
	}
	var p Path
	for i := 1; i < len(s); {
		// s[i] == '[' is guaranteed by the grammar.
		i++
		if s[i] != '"' {
			end := i + strings.IndexByte(s[i:], ']')
			n, err := strconv.Atoi(s[i:end])
			if err != nil {
				return nil, fmt.Errorf("%w: index %s: %v", ErrInvalidPath, s[i:end], err)
			}
			p = append(p, Segment{Kind: SegmentIndex, Index: n})
			i = end + 1
			continue
		}
		end := closingQuote(s, i)
		var key string
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(s[i:end+1], &key); err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrInvalidPath, s[i:end+1], err)
		}
		p = append(p, Segment{Kind: SegmentKey, Key: key})
		i = end + 2
	}
	return p, nil
}

// closingQuote returns the index of the quote terminating the string
// literal that opens at s[open].
func closingQuote(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

// Resolve evaluates path against root and returns the value found there.
//
// Index segments applied to an object address the property named by the
// decimal index, and key segments applied to an array address the element
// whose canonical decimal index equals the key. A path that leaves the
// graph fails with a [*DanglingReferenceError].
func Resolve(root any, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, &DanglingReferenceError{Path: path, Err: err}
	}
	return p.Resolve(root, path)
}

// Resolve evaluates p against root. The original text is only used for
// error reporting and may be empty.
func (p Path) Resolve(root any, text string) (any, error) {
	if text == "" {
		text = p.String()
	}
	cur := root
	for i, seg := range p {
		next, ok := step(cur, seg)
		if !ok {
			return nil, &DanglingReferenceError{Path: text, At: p[:i+1].String()}
		}
		cur = next
	}
	return cur, nil
}

func step(cur any, seg Segment) (any, bool) {
	switch c := cur.(type) {
	case *Array:
		if c == nil {
			return nil, false
		}
		idx := seg.Index
		if seg.Kind == SegmentKey {
			n, ok := canonicalIndex(seg.Key)
			if !ok {
				return nil, false
			}
			idx = n
		}
		if idx < 0 || idx >= len(c.Elems) {
			return nil, false
		}
		return c.Elems[idx], true
	case *Object:
		if c == nil {
			return nil, false
		}
		key := seg.Key
		if seg.Kind == SegmentIndex {
			key = strconv.Itoa(seg.Index)
		}
		return c.Get(key)
	}
	return nil, false
}

// canonicalIndex parses k as an array index written without sign or
// leading zeros.
func canonicalIndex(k string) (int, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(k)
	return n, err == nil
}
