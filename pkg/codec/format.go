package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format names a wire format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnknownFormat is returned by [ParseFormat] for unsupported names.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrCyclic is returned when encoding a value that contains a cycle.
	ErrCyclic = errors.New("value contains a cycle")

	// ErrUnsupportedValue is returned for values with no textual form,
	// such as NaN.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// ParseFormat parses a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from a file extension, returning
// fallback for unknown extensions.
func FormatFromPath(path string, fallback Format) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return fallback
}

// Unmarshal decodes data in format f.
func Unmarshal(data []byte, f Format) (any, error) {
	switch f {
	case FormatJSON:
		return UnmarshalJSON(data)
	case FormatYAML:
		return UnmarshalYAML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Marshal encodes v in format f. An indent of zero produces compact JSON;
// YAML always uses at least two spaces.
func Marshal(v any, f Format, indent int) ([]byte, error) {
	switch f {
	case FormatJSON:
		return marshalJSON(v, indent)
	case FormatYAML:
		return marshalYAML(v, indent)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode reads all of r and decodes it in format f. Decode does not close r.
func Decode(r io.Reader, f Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data, f)
}

// Encode writes v to w in format f, followed by a newline.
func Encode(w io.Writer, v any, f Format, indent int) error {
	data, err := Marshal(v, f, indent)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// stack tracks the composites on the current encoding path.
type stack map[any]struct{}

func (s stack) push(v any) error {
	if _, ok := s[v]; ok {
		return ErrCyclic
	}
	s[v] = struct{}{}
	return nil
}

func (s stack) pop(v any) { delete(s, v) }
