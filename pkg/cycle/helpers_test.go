package cycle

import "reflect"

// equalTree compares two trees structurally. Composites are compared by
// content, classes by identity. It does not terminate on cyclic input.
func equalTree(a, b any) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Class != y.Class || x.Len() != y.Len() {
			return false
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if xk[i] != yk[i] {
				return false
			}
			xv, _ := x.Get(xk[i])
			yv, _ := y.Get(yk[i])
			if !equalTree(xv, yv) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Class != y.Class || x.Len() != y.Len() {
			return false
		}
		for i := range x.Elems {
			if !equalTree(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func obj(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func ref(path string) *Object {
	return NewObject().Set(RefKey, path)
}

func get(t interface{ Fatalf(string, ...any) }, v any, key string) any {
	o, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", v)
	}
	got, ok := o.Get(key)
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	return got
}
