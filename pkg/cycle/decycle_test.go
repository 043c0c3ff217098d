package cycle

import (
	"regexp"
	"testing"
	"time"
)

func TestDecycleSelfReferentialArray(t *testing.T) {
	a := NewArray()
	a.Append(a)

	got := Decycle(a, NewRegistry())
	want := NewArray(ref("$"))
	if !equalTree(got, want) {
		t.Errorf("Decycle() = %#v, want [{$ref: $}]", got)
	}
}

func TestDecycleSelfReferentialObject(t *testing.T) {
	o := obj("name", "loop")
	o.Set("self", o)

	got := Decycle(o, NewRegistry())
	want := obj("name", "loop", "self", ref("$"))
	if !equalTree(got, want) {
		t.Errorf("Decycle() = %#v", got)
	}
}

func TestDecycleSharedReference(t *testing.T) {
	x := obj("v", 1)
	g := obj("a", x, "b", x, "c", NewArray(x))

	c := New(Options{Registry: NewRegistry()})
	got := c.Decycle(g)
	want := obj(
		"a", obj("v", 1),
		"b", ref(`$["a"]`),
		"c", NewArray(ref(`$["a"]`)),
	)
	if !equalTree(got, want) {
		t.Errorf("Decycle() = %#v", got)
	}

	st := c.Stats()
	if st.Composites != 3 || st.Refs != 2 || st.Tagged != 0 {
		t.Errorf("Stats() = %+v, want 3 composites, 2 refs", st)
	}
}

func TestDecycleIdentityNotEquality(t *testing.T) {
	g := NewArray(obj("v", 1), obj("v", 1))
	got := Decycle(g, NewRegistry())
	want := NewArray(obj("v", 1), obj("v", 1))
	if !equalTree(got, want) {
		t.Errorf("structurally equal objects should be copied independently, got %#v", got)
	}
}

func TestDecycleNestedCycle(t *testing.T) {
	n1, n2 := obj("id", 1), obj("id", 2)
	n1.Set("next", n2)
	n2.Set("next", n1)
	root := obj("list", NewArray(n1, n2))

	got := Decycle(root, NewRegistry())
	want := obj("list", NewArray(
		obj("id", 1, "next", obj("id", 2, "next", ref(`$["list"][0]`))),
		ref(`$["list"][0]["next"]`),
	))
	if !equalTree(got, want) {
		t.Errorf("Decycle() = %#v", got)
	}
}

func TestDecycleClassTags(t *testing.T) {
	point := NewClass("Point")
	anon := NewClass("")
	unknown := NewClass("")
	reg := NewRegistry()
	reg.MustRegister("Vector", anon)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{
			name: "declared name",
			in:   &Object{Class: point},
			want: obj(ClassKey, "Point"),
		},
		{
			name: "name from registry",
			in:   (&Object{Class: anon}).Set("x", 1),
			want: obj("x", 1, ClassKey, "Vector"),
		},
		{
			name: "unresolvable anonymous class",
			in:   (&Object{Class: unknown}).Set("x", 1),
			want: obj("x", 1),
		},
		{
			name: "array sentinel",
			in:   &Array{Class: point, Elems: []any{1, 2}},
			want: NewArray(1, 2, obj(ClassKey, "Point")),
		},
		{
			name: "plain containers",
			in:   NewArray(NewObject(), NewArray()),
			want: NewArray(NewObject(), NewArray()),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decycle(tt.in, reg)
			if !equalTree(got, tt.want) {
				t.Errorf("Decycle() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecycleClassTagOnCopiesOnly(t *testing.T) {
	point := NewClass("Point")
	p := (&Object{Class: point}).Set("x", 1)
	got := Decycle(NewArray(p, p), NewRegistry())
	want := NewArray(obj("x", 1, ClassKey, "Point"), ref("$[0]"))
	if !equalTree(got, want) {
		t.Errorf("Decycle() = %#v", got)
	}
}

func TestDecycleWrappersAreAtomic(t *testing.T) {
	when := time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)
	re := regexp.MustCompile(`^a+$`)
	boxed := &Boxed{Value: "s"}
	g := obj("d1", &when, "d2", &when, "r1", re, "r2", re, "b1", boxed, "b2", boxed, "t", when)

	c := New(Options{Registry: NewRegistry()})
	got := c.Decycle(g).(*Object)
	for _, k := range []string{"d1", "d2"} {
		if v, _ := got.Get(k); v != &when {
			t.Errorf("%s = %v, want the original *time.Time", k, v)
		}
	}
	for _, k := range []string{"r1", "r2"} {
		if v, _ := got.Get(k); v != re {
			t.Errorf("%s = %v, want the original regexp", k, v)
		}
	}
	if v, _ := got.Get("b2"); v != boxed {
		t.Errorf("b2 = %v, want the original boxed value", v)
	}
	if v, _ := got.Get("t"); v != when {
		t.Errorf("t = %v, want %v", v, when)
	}
	if st := c.Stats(); st.Refs != 0 || st.Composites != 1 {
		t.Errorf("Stats() = %+v, wrappers must not be registered", st)
	}
}

func TestDecycleDoesNotMutateInput(t *testing.T) {
	point := NewClass("Point")
	inner := &Array{Class: point, Elems: []any{1}}
	g := obj("a", inner, "b", inner)

	_ = Decycle(g, NewRegistry())

	if g.Len() != 2 || inner.Len() != 1 || g.Has(ClassKey) {
		t.Error("Decycle modified its input")
	}
	if v, _ := g.Get("b"); v != inner {
		t.Error("Decycle replaced a child of its input")
	}
}

func TestDecycleAtomicRoot(t *testing.T) {
	for _, v := range []any{nil, 1, "s", true, (*Object)(nil)} {
		got := Decycle(v, NewRegistry())
		if v == (*Object)(nil) {
			if got != nil {
				t.Errorf("Decycle(nil object) = %v, want nil", got)
			}
			continue
		}
		if got != v {
			t.Errorf("Decycle(%v) = %v", v, got)
		}
	}
}

func TestDecycleEscapedKeys(t *testing.T) {
	x := obj()
	g := obj("we\"ird\nkey", x, "other", x)
	got := Decycle(g, NewRegistry()).(*Object)
	v, _ := got.Get("other")
	want := ref(`$["we\"ird\nkey"]`)
	if !equalTree(v, want) {
		t.Errorf("other = %#v, want %#v", v, want)
	}
}
