package cycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a string does not match the path grammar.
	ErrInvalidPath = errors.New("invalid path")

	// ErrDanglingReference is matched by every [*DanglingReferenceError].
	ErrDanglingReference = errors.New("dangling reference")

	// ErrUnknownClass is matched by every [*UnknownClassError].
	ErrUnknownClass = errors.New("unknown class")
)

// DanglingReferenceError reports a reference token whose path does not
// resolve against the root being reconstructed.
type DanglingReferenceError struct {
	Path string // the reference path as written
	At   string // the shortest prefix of Path that failed to resolve
	Err  error  // parse failure, if the path could not be parsed
}

func (e *DanglingReferenceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("dangling reference %s: %v", e.Path, e.Err)
	case e.At != "" && e.At != e.Path:
		return fmt.Sprintf("dangling reference %s: nothing at %s", e.Path, e.At)
	}
	return fmt.Sprintf("dangling reference %s", e.Path)
}

// Is makes errors.Is(err, ErrDanglingReference) hold.
func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}

func (e *DanglingReferenceError) Unwrap() error { return e.Err }

// UnknownClassError reports a class tag that names no registered class.
// It is only produced when strict class resolution is enabled.
type UnknownClassError struct {
	Name string
	Path string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %q at %s", e.Name, e.Path)
}

// Is makes errors.Is(err, ErrUnknownClass) hold.
func (e *UnknownClassError) Is(target error) bool {
	return target == ErrUnknownClass
}
