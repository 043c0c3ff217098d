package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cycler/pkg/cycle"
)

// UnmarshalYAML decodes a YAML document into a tree of [cycle.Object],
// [cycle.Array] and atomic values. Aliases of an anchored mapping or
// sequence decode to the same composite as the anchor.
func UnmarshalYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	d := &yamlDecoder{anchors: make(map[*yaml.Node]any)}
	v, err := d.decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}

type yamlDecoder struct {
	anchors map[*yaml.Node]any
}

func (d *yamlDecoder) decode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		if v, ok := d.anchors[n.Alias]; ok {
			return v, nil
		}
		return d.decode(n.Alias)
	case yaml.MappingNode:
		o := cycle.NewObject()
		d.anchors[n] = o
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			child, err := d.decode(v)
			if err != nil {
				return nil, err
			}
			o.Set(k.Value, child)
		}
		return o, nil
	case yaml.SequenceNode:
		a := &cycle.Array{Elems: make([]any, 0, len(n.Content))}
		d.anchors[n] = a
		for _, c := range n.Content {
			child, err := d.decode(c)
			if err != nil {
				return nil, err
			}
			a.Append(child)
		}
		return a, nil
	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func decodeScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			var u uint64
			if err := n.Decode(&u); err != nil {
				return nil, err
			}
			return json.Number(strconv.FormatUint(u, 10)), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f, nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return n.Value, nil
}

// MarshalYAML encodes a tree as a YAML document.
func MarshalYAML(v any) ([]byte, error) {
	return marshalYAML(v, 2)
}

func marshalYAML(v any, indent int) ([]byte, error) {
	n, err := yamlNode(v, stack{})
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(max(indent, 2))
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(v any, st stack) (*yaml.Node, error) {
	switch x := v.(type) {
	case *cycle.Object:
		if x == nil {
			return scalar("!!null", "null"), nil
		}
		if err := st.push(x); err != nil {
			return nil, err
		}
		defer st.pop(x)
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.Keys() {
			child, _ := x.Get(k)
			cn, err := yamlNode(child, st)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar("!!str", k), cn)
		}
		return n, nil

	case *cycle.Array:
		if x == nil {
			return scalar("!!null", "null"), nil
		}
		if err := st.push(x); err != nil {
			return nil, err
		}
		defer st.pop(x)
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range x.Elems {
			cn, err := yamlNode(e, st)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, cn)
		}
		return n, nil
	}
	return yamlAtom(v)
}

func yamlAtom(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(x)), nil
	case string:
		return scalar("!!str", x), nil
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return scalar("!!int", x.String()), nil
		}
		if strings.ContainsAny(x.String(), ".eE") {
			return scalar("!!float", x.String()), nil
		}
		return scalar("!!int", x.String()), nil
	case int:
		return scalar("!!int", strconv.Itoa(x)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(x, 10)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, x)
		}
		f := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(f, ".eE") {
			f += ".0"
		}
		return scalar("!!float", f), nil
	case time.Time:
		return scalar("!!timestamp", x.Format(time.RFC3339Nano)), nil
	case *time.Time:
		if x == nil {
			return scalar("!!null", "null"), nil
		}
		return scalar("!!timestamp", x.Format(time.RFC3339Nano)), nil
	case *regexp.Regexp:
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}, nil
	case cycle.Boxed:
		return yamlAtom(x.Value)
	case *cycle.Boxed:
		if x == nil {
			return scalar("!!null", "null"), nil
		}
		return yamlAtom(x.Value)
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
