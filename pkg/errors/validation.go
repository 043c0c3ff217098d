package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matzehuels/cycler/pkg/codec"
)

// classNameRegex matches identifiers with optional dotted namespaces,
// such as "Point" or "geo.Point".
var classNameRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// ValidateClassName validates a class name before it is registered.
//
// The validation rules:
//   - No empty names
//   - Maximum length of 256 characters
//   - Identifier characters only, dot-separated namespaces allowed
func ValidateClassName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidClass, "class name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidClass, "class name too long (max 256 characters)")
	}

	if !classNameRegex.MatchString(name) {
		return New(ErrCodeInvalidClass, "invalid class name: %q", name)
	}

	return nil
}

// ValidateFormat validates a wire format name ("json", "yaml" or "yml").
func ValidateFormat(name string) error {
	if _, err := codec.ParseFormat(name); err != nil {
		return Wrap(ErrCodeInvalidFormat, err, "invalid format")
	}
	return nil
}

// ValidateInputFilename validates a path given as command input.
// "-" denotes standard input and is always valid.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateInputFilename(path string) error {
	if path == "-" {
		return nil
	}
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "input path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "input path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "input path must name a file, not a directory")
	}

	return nil
}
