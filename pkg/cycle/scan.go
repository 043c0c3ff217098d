package cycle

// RefToken describes a "$ref" object found in a decycled tree.
type RefToken struct {
	At     string `json:"at"`     // path of the token itself
	Target string `json:"target"` // the "$ref" string
	Valid  bool   `json:"valid"`  // whether Target matches the path grammar
}

// Summary describes the shape of a decycled tree.
type Summary struct {
	Objects int            `json:"objects"`
	Arrays  int            `json:"arrays"`
	Depth   int            `json:"depth"`
	Refs    []RefToken     `json:"refs"`
	Classes map[string]int `json:"classes"` // tag name -> occurrences
}

// Scan walks a decycled tree without modifying it and reports its
// reference tokens and class tags in document order.
func Scan(tree any) Summary {
	s := &scanner{
		sum:  Summary{Classes: make(map[string]int)},
		seen: make(map[any]struct{}),
	}
	s.walk(tree, Root, 0)
	return s.sum
}

// Refs returns the reference tokens of a decycled tree in document order.
func Refs(tree any) []RefToken {
	return Scan(tree).Refs
}

type scanner struct {
	sum  Summary
	seen map[any]struct{}
}

func (s *scanner) walk(v any, path string, depth int) {
	if !IsComposite(v) {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	if depth > s.sum.Depth {
		s.sum.Depth = depth
	}

	switch x := v.(type) {
	case *Object:
		s.sum.Objects++
		if t, ok := x.Get(RefKey); ok {
			if target, ok := t.(string); ok {
				s.sum.Refs = append(s.sum.Refs, RefToken{At: path, Target: target, Valid: IsPath(target)})
			}
		}
		if name, ok := stringTag(x); ok {
			s.sum.Classes[name]++
		}
		for _, k := range x.keys {
			s.walk(x.vals[k], KeyPath(path, k), depth+1)
		}
	case *Array:
		s.sum.Arrays++
		elems := x.Elems
		if n := len(elems); n > 0 {
			if sentinel, ok := elems[n-1].(*Object); ok && sentinel != nil && sentinel.Len() == 1 {
				if name, ok := stringTag(sentinel); ok {
					s.sum.Classes[name]++
					elems = elems[:n-1]
				}
			}
		}
		for i, e := range elems {
			s.walk(e, IndexPath(path, i), depth+1)
		}
	}
}
