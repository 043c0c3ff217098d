package cycle

// Decycle returns a tree-shaped copy of v.
//
// The graph is walked depth first. Each object or array is registered
// under its path before its children are visited; the first occurrence is
// copied and later occurrences become reference tokens {"$ref": path}, so
// a value containing itself yields a reference to its own path.
//
// Copies of class instances carry a tag: a "$class" property on objects,
// a trailing {"$class": name} element on arrays. The name is the class's
// declared name or, for anonymous classes, the name it is registered under.
// Untagged copies are indistinguishable from plain containers.
//
// Atomic values, including dates, regular expressions and [Boxed]
// primitives, are returned as they are. v is never modified.
func (c *Cycler) Decycle(v any) any {
	c.stats = Stats{}
	d := &decycler{
		c:    c,
		reg:  orDefault(c.opts.Registry),
		seen: make(map[any]string),
	}
	return d.derez(v, Root)
}

type decycler struct {
	c    *Cycler
	reg  *Registry
	seen map[any]string
}

func (d *decycler) derez(v any, path string) any {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return nil
		}
		if ref, ok := d.ref(x, path); ok {
			return ref
		}
		nu := NewObject()
		for _, k := range x.keys {
			nu.Set(k, d.derez(x.vals[k], KeyPath(path, k)))
		}
		if name := d.className(x.Class); name != "" {
			nu.Set(ClassKey, name)
			d.c.stats.Tagged++
		}
		return nu

	case *Array:
		if x == nil {
			return nil
		}
		if ref, ok := d.ref(x, path); ok {
			return ref
		}
		nu := &Array{Elems: make([]any, len(x.Elems), len(x.Elems)+1)}
		for i, e := range x.Elems {
			nu.Elems[i] = d.derez(e, IndexPath(path, i))
		}
		if name := d.className(x.Class); name != "" {
			nu.Elems = append(nu.Elems, NewObject().Set(ClassKey, name))
			d.c.stats.Tagged++
		}
		return nu
	}
	return v
}

// ref returns a reference token if v was seen before, and otherwise
// registers v under path.
func (d *decycler) ref(v any, path string) (*Object, bool) {
	if first, ok := d.seen[v]; ok {
		d.c.stats.Refs++
		return NewObject().Set(RefKey, first), true
	}
	d.seen[v] = path
	d.c.stats.Composites++
	return nil, false
}

func (d *decycler) className(cls *Class) string {
	if cls == nil {
		return ""
	}
	if cls.Name != "" {
		return cls.Name
	}
	name, _ := d.reg.NameOf(cls)
	return name
}
