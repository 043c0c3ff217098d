package cycle

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	point := NewClass("Point")

	if err := r.Register("Point", point); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := r.Register("Point", point); err != nil {
		t.Errorf("re-registering the same pair should succeed: %v", err)
	}

	tests := []struct {
		name    string
		regName string
		class   *Class
		wantErr error
	}{
		{"empty name", "", point, ErrEmptyClassName},
		{"nil class", "X", nil, ErrNilClass},
		{"conflict", "Point", NewClass("Point"), ErrClassConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.regName, tt.class)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryBidirectional(t *testing.T) {
	r := NewRegistry()
	anon := NewClass("")
	r.MustRegister("Anon", anon)
	r.MustRegister("Alias", anon)

	if c, ok := r.Lookup("Alias"); !ok || c != anon {
		t.Errorf("Lookup(Alias) = %v, %v", c, ok)
	}
	if name, ok := r.NameOf(anon); !ok || name != "Anon" {
		t.Errorf("NameOf() = %q, %v, want Anon", name, ok)
	}

	r.Unregister("Anon")
	if name, ok := r.NameOf(anon); !ok || name != "Alias" {
		t.Errorf("NameOf() after Unregister = %q, %v, want Alias", name, ok)
	}
	r.Unregister("Alias")
	if _, ok := r.NameOf(anon); ok {
		t.Error("NameOf() should fail once every name is gone")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("b", NewClass("b"))
	r.MustRegister("a", NewClass("a"))
	if got := r.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on conflict")
		}
	}()
	r := NewRegistry()
	r.MustRegister("X", NewClass("X"))
	r.MustRegister("X", NewClass("X"))
}

func TestDefaultRegistry(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	point := NewClass("")
	if err := Register("Point", point); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	p := &Object{Class: point}
	p.Set("x", 1)
	tree := Decycle(p, nil)
	if tag := get(t, tree, ClassKey); tag != "Point" {
		t.Errorf("$class = %v, want Point", tag)
	}

	ResetDefault()
	if Default().Len() != 0 {
		t.Error("ResetDefault should clear the registry")
	}
}
