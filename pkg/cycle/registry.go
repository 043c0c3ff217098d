package cycle

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrEmptyClassName is returned by [Registry.Register] for an empty name.
	ErrEmptyClassName = errors.New("class name must not be empty")

	// ErrNilClass is returned by [Registry.Register] for a nil class.
	ErrNilClass = errors.New("class must not be nil")

	// ErrClassConflict is returned by [Registry.Register] when the name is
	// already bound to a different class.
	ErrClassConflict = errors.New("class name already registered")
)

// Registry is a naming context: it maps class names to classes and, in
// the other direction, classes to the name they were registered under.
//
// Decycling uses the reverse direction to tag instances of anonymous
// classes; retrocycling uses the forward direction to resurrect tagged
// nodes. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byCls  map[*Class]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Class),
		byCls:  make(map[*Class]string),
	}
}

// Register binds name to c. Registering the same pair twice is a no-op.
// A class may be bound to several names; [Registry.NameOf] reports the
// first one.
func (r *Registry) Register(name string, c *Class) error {
	if name == "" {
		return ErrEmptyClassName
	}
	if c == nil {
		return ErrNilClass
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[name]; ok {
		if prev == c {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrClassConflict, name)
	}
	r.byName[name] = c
	if _, ok := r.byCls[c]; !ok {
		r.byCls[c] = name
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, c *Class) *Class {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the class bound to name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// NameOf returns the name c was registered under.
func (r *Registry) NameOf(c *Class) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byCls[c]
	return name, ok
}

// Unregister removes the binding for name. If the class is still bound to
// another name, NameOf falls back to it.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	if r.byCls[c] != name {
		return
	}
	delete(r.byCls, c)
	for _, n := range slices.Sorted(maps.Keys(r.byName)) {
		if r.byName[n] == c {
			r.byCls[c] = n
			break
		}
	}
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byName))
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// =============================================================================
// Process-wide default
// =============================================================================

var (
	defaultMu       sync.RWMutex
	defaultRegistry = NewRegistry()
)

// Default returns the process-wide registry used when an operation is
// given a nil registry.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// Register binds name to c in the process-wide registry.
func Register(name string, c *Class) error {
	return Default().Register(name, c)
}

// ResetDefault replaces the process-wide registry with an empty one.
// It is intended for test teardown and program shutdown.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = NewRegistry()
}

func orDefault(r *Registry) *Registry {
	if r == nil {
		return Default()
	}
	return r
}
