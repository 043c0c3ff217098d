package cycle

// Retrocycle restores the graph encoded in a tree produced by Decycle.
//
// Tagged nodes naming a registered class are rebuilt as instances of that
// class; tags naming no registered class are stripped, or rejected with an
// [*UnknownClassError] when Options.StrictClasses is set. Objects whose
// "$ref" property is a well-formed path are replaced by the value found at
// that path, which restores shared references and cycles. A "$ref" that
// is not a well-formed path is left alone as ordinary data.
//
// The tree is modified in place and its root container is reused unless
// the root itself carries a class tag. A path that does not resolve fails
// with a [*DanglingReferenceError].
//
// Only a non-empty string "$class" is a tag. Any other "$class" value,
// including true or a number, is kept as ordinary data rather than
// stripped.
func (c *Cycler) Retrocycle(tree any) (any, error) {
	c.stats = Stats{}
	r := &recycler{
		c:      c,
		reg:    orDefault(c.opts.Registry),
		walked: make(map[any]struct{}),
	}
	root, err := r.resurrect(tree, Root)
	if err != nil {
		return nil, err
	}
	r.root = root
	if IsComposite(root) {
		if err := r.rez(root, Root); err != nil {
			return nil, err
		}
	}
	return root, nil
}

type recycler struct {
	c      *Cycler
	reg    *Registry
	root   any
	walked map[any]struct{}
}

// rez resolves the children of v depth first, in the order Decycle
// assigned paths, so every referent is in its final place before any
// reference to it is followed. A resurrected child is stored in its
// parent before its own subtree is walked, so references into or
// through it reach the instance rather than the tagged node it replaced.
func (r *recycler) rez(v any, path string) error {
	if _, ok := r.walked[v]; ok {
		return nil
	}
	r.walked[v] = struct{}{}

	switch x := v.(type) {
	case *Object:
		for _, k := range x.Keys() {
			child, _ := x.Get(k)
			err := r.restore(child, KeyPath(path, k), func(next any) { x.Set(k, next) })
			if err != nil {
				return err
			}
		}
	case *Array:
		for i := range x.Elems {
			err := r.restore(x.Elems[i], IndexPath(path, i), func(next any) { x.Elems[i] = next })
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// restore resurrects child, stores it with set, then either resolves it
// as a reference token or walks its children.
func (r *recycler) restore(child any, path string, set func(any)) error {
	item, err := r.resurrect(child, path)
	if err != nil {
		return err
	}
	set(item)
	if obj, ok := item.(*Object); ok && obj != nil {
		if target, ok := r.refPath(obj, path); ok {
			v, err := Resolve(r.root, target)
			if err != nil {
				return err
			}
			r.c.stats.Resolved++
			set(v)
			return nil
		}
	}
	if IsComposite(item) {
		return r.rez(item, path)
	}
	return nil
}

// refPath returns the target of a reference token.
func (r *recycler) refPath(obj *Object, path string) (string, bool) {
	v, ok := obj.Get(RefKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if !IsPath(s) {
		r.c.stats.Rejected++
		r.c.debug("ignoring malformed reference", "path", path, "ref", s)
		return "", false
	}
	return s, true
}

// resurrect rebuilds a tagged node as an instance of its class. Untagged
// nodes are returned unchanged.
func (r *recycler) resurrect(v any, path string) (any, error) {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return v, nil
		}
		name, ok := stringTag(x)
		if !ok {
			return x, nil
		}
		cls, err := r.lookup(name, path)
		if err != nil {
			return nil, err
		}
		if cls == nil {
			x.Delete(ClassKey)
			return x, nil
		}
		inst := &Object{Class: cls}
		for _, k := range x.keys {
			if k != ClassKey {
				inst.Set(k, x.vals[k])
			}
		}
		r.c.stats.Resurrected++
		return inst, nil

	case *Array:
		if x == nil || len(x.Elems) == 0 {
			return v, nil
		}
		last := len(x.Elems) - 1
		sentinel, ok := x.Elems[last].(*Object)
		if !ok || sentinel == nil || sentinel.Len() != 1 {
			return x, nil
		}
		name, ok := stringTag(sentinel)
		if !ok {
			return x, nil
		}
		cls, err := r.lookup(name, path)
		if err != nil {
			return nil, err
		}
		if cls == nil {
			x.Elems = x.Elems[:last]
			return x, nil
		}
		r.c.stats.Resurrected++
		return &Array{Class: cls, Elems: append([]any(nil), x.Elems[:last]...)}, nil
	}
	return v, nil
}

// lookup returns the class registered under name, or nil if the tag
// should be stripped.
func (r *recycler) lookup(name, path string) (*Class, error) {
	if cls, ok := r.reg.Lookup(name); ok {
		return cls, nil
	}
	if r.c.opts.StrictClasses {
		return nil, &UnknownClassError{Name: name, Path: path}
	}
	r.c.stats.Demoted++
	r.c.debug("stripping unknown class tag", "path", path, "class", name)
	return nil, nil
}

func stringTag(o *Object) (string, bool) {
	v, ok := o.Get(ClassKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
