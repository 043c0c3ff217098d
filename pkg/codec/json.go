package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/cycler/pkg/cycle"
)

var strictJSON = jsoniter.Config{
	EscapeHTML:             false,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// UnmarshalJSON decodes a JSON document into a tree of [cycle.Object],
// [cycle.Array] and atomic values.
func UnmarshalJSON(data []byte) (any, error) {
	// The iterator below assumes well-formed input; validating first
	// yields precise errors for truncated or trailing data.
	var probe any
	if err := strictJSON.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	iter := jsoniter.ParseBytes(strictJSON, data)
	return readJSON(iter), nil
}

func readJSON(iter *jsoniter.Iterator) any {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		o := cycle.NewObject()
		iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
			o.Set(key, readJSON(it))
			return true
		})
		return o
	case jsoniter.ArrayValue:
		a := &cycle.Array{Elems: []any{}}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			a.Append(readJSON(it))
			return true
		})
		return a
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadNumber()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	}
	iter.Skip()
	return nil
}

// MarshalJSON encodes a tree as compact JSON.
func MarshalJSON(v any) ([]byte, error) {
	return marshalJSON(v, 0)
}

func marshalJSON(v any, indent int) ([]byte, error) {
	cfg := strictJSON
	if indent > 0 {
		cfg = jsoniter.Config{EscapeHTML: false, UseNumber: true, IndentionStep: indent}.Froze()
	}
	s := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(s)

	if err := writeJSON(s, v, stack{}); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	if s.Error != nil {
		return nil, fmt.Errorf("encode json: %w", s.Error)
	}
	return append([]byte(nil), s.Buffer()...), nil
}

func writeJSON(s *jsoniter.Stream, v any, st stack) error {
	switch x := v.(type) {
	case *cycle.Object:
		if x == nil {
			s.WriteNil()
			return nil
		}
		if err := st.push(x); err != nil {
			return err
		}
		defer st.pop(x)
		if x.Len() == 0 {
			s.WriteEmptyObject()
			return nil
		}
		s.WriteObjectStart()
		for i, k := range x.Keys() {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(k)
			child, _ := x.Get(k)
			if err := writeJSON(s, child, st); err != nil {
				return err
			}
		}
		s.WriteObjectEnd()
		return nil

	case *cycle.Array:
		if x == nil {
			s.WriteNil()
			return nil
		}
		if err := st.push(x); err != nil {
			return err
		}
		defer st.pop(x)
		if x.Len() == 0 {
			s.WriteEmptyArray()
			return nil
		}
		s.WriteArrayStart()
		for i, e := range x.Elems {
			if i > 0 {
				s.WriteMore()
			}
			if err := writeJSON(s, e, st); err != nil {
				return err
			}
		}
		s.WriteArrayEnd()
		return nil
	}
	return writeJSONAtom(s, v)
}

func writeJSONAtom(s *jsoniter.Stream, v any) error {
	switch x := v.(type) {
	case nil:
		s.WriteNil()
	case bool:
		s.WriteBool(x)
	case string:
		s.WriteString(x)
	case json.Number:
		if x == "" {
			x = "0"
		}
		s.WriteRaw(string(x))
	case int:
		s.WriteInt(x)
	case int64:
		s.WriteInt64(x)
	case uint64:
		s.WriteUint64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, x)
		}
		s.WriteFloat64(x)
	case time.Time:
		s.WriteString(x.Format(time.RFC3339Nano))
	case *time.Time:
		if x == nil {
			s.WriteNil()
			return nil
		}
		s.WriteString(x.Format(time.RFC3339Nano))
	case *regexp.Regexp:
		s.WriteEmptyObject()
	case cycle.Boxed:
		return writeJSONAtom(s, x.Value)
	case *cycle.Boxed:
		if x == nil {
			s.WriteNil()
			return nil
		}
		return writeJSONAtom(s, x.Value)
	default:
		s.WriteVal(v)
	}
	return nil
}
