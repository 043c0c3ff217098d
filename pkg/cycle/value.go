package cycle

import (
	"regexp"
	"time"
)

// Reserved property names used in decycled documents.
const (
	// RefKey names the single property of a reference token.
	RefKey = "$ref"
	// ClassKey names the class tag property on objects and array sentinels.
	ClassKey = "$class"
)

// Class stands in for a constructor. Instances are [Object] or [Array]
// values whose Class field points at it; identity is the pointer.
//
// A Class with an empty Name is anonymous: its tag can only be recovered
// through a [Registry] that binds a name to it.
type Class struct {
	Name string
}

// NewClass returns a new class with the given declared name.
func NewClass(name string) *Class {
	return &Class{Name: name}
}

func (c *Class) String() string {
	if c == nil || c.Name == "" {
		return "<anonymous>"
	}
	return c.Name
}

// Object is an ordered, string-keyed composite value.
//
// Keys keep their first insertion position; overwriting a key updates the
// value in place. The zero value is ready to use.
type Object struct {
	Class *Class

	keys []string
	vals map[string]any
}

// NewObject returns an empty plain object.
func NewObject() *Object {
	return &Object{}
}

// Set assigns v to key k and returns o for chaining.
func (o *Object) Set(k string, v any) *Object {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
	return o
}

// Get returns the value stored under k.
func (o *Object) Get(k string) (any, bool) {
	v, ok := o.vals[k]
	return v, ok
}

// Has reports whether k is an own property of o.
func (o *Object) Has(k string) bool {
	_, ok := o.vals[k]
	return ok
}

// Delete removes k, preserving the order of the remaining keys.
func (o *Object) Delete(k string) {
	if _, ok := o.vals[k]; !ok {
		return
	}
	delete(o.vals, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of own properties.
func (o *Object) Len() int { return len(o.keys) }

// Array is an ordered, index-addressed composite value.
type Array struct {
	Class *Class
	Elems []any
}

// NewArray returns a plain array holding elems.
func NewArray(elems ...any) *Array {
	return &Array{Elems: elems}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// At returns the element at index i, or nil when i is out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.Elems) {
		return nil
	}
	return a.Elems[i]
}

// Append adds elements to the end of a.
func (a *Array) Append(elems ...any) *Array {
	a.Elems = append(a.Elems, elems...)
	return a
}

// Boxed wraps a boolean, number or string as an opaque object. Like dates
// and regular expressions it is treated as atomic: never shared through a
// reference token, never tagged and never traversed.
type Boxed struct {
	Value any
}

// IsComposite reports whether v participates in graph traversal.
func IsComposite(v any) bool {
	switch c := v.(type) {
	case *Object:
		return c != nil
	case *Array:
		return c != nil
	}
	return false
}

// IsWrapper reports whether v is one of the opaque wrapper kinds: dates,
// regular expressions and [Boxed] primitives.
func IsWrapper(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time, *regexp.Regexp, Boxed, *Boxed:
		return true
	}
	return false
}
