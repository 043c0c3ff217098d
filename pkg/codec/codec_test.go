package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cycler/pkg/cycle"
)

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	tests := []string{
		`{"b":1,"a":[true,null,"x"],"c":{}}`,
		`[]`,
		`"just a string"`,
		`42`,
		`{"a\"b":{"$ref":"$[\"x\"]"},"":-1.5e3}`,
		`{"héllo":"wörld"}`,
		`[{"$class":"Point"},[[]]]`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			v, err := UnmarshalJSON([]byte(in))
			if err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			out, err := MarshalJSON(v)
			if err != nil {
				t.Fatalf("MarshalJSON() error: %v", err)
			}
			if string(out) != in {
				t.Errorf("round trip = %s, want %s", out, in)
			}
		})
	}
}

func TestUnmarshalJSONTypes(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"n":1.25,"s":"x","b":false,"z":null,"a":[1]}`))
	if err != nil {
		t.Fatalf("UnmarshalJSON() error: %v", err)
	}
	o, ok := v.(*cycle.Object)
	if !ok {
		t.Fatalf("got %T, want *cycle.Object", v)
	}
	if n, _ := o.Get("n"); n != json.Number("1.25") {
		t.Errorf("n = %#v, want json.Number(1.25)", n)
	}
	if b, _ := o.Get("b"); b != false {
		t.Errorf("b = %#v", b)
	}
	if z, ok := o.Get("z"); !ok || z != nil {
		t.Errorf("z = %#v, %v", z, ok)
	}
	if a, _ := o.Get("a"); a.(*cycle.Array).Len() != 1 {
		t.Errorf("a = %#v", a)
	}
}

func TestUnmarshalJSONDuplicateKeys(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("UnmarshalJSON() error: %v", err)
	}
	out, _ := MarshalJSON(v)
	if string(out) != `{"a":3,"b":2}` {
		t.Errorf("got %s, want last value at first position", out)
	}
}

func TestUnmarshalJSONErrors(t *testing.T) {
	for _, in := range []string{`{`, `{"a":1} x`, `{'a':1}`} {
		if _, err := UnmarshalJSON([]byte(in)); err == nil {
			t.Errorf("UnmarshalJSON(%q) should fail", in)
		}
	}
}

func TestMarshalJSONIndent(t *testing.T) {
	v := cycle.NewObject().Set("a", cycle.NewArray(1)).Set("b", cycle.NewObject())
	out, err := Marshal(v, FormatJSON, 2)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := "{\n  \"a\": [\n    1\n  ],\n  \"b\": {}\n}"
	if string(out) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", out, want)
	}
}

func TestMarshalRejectsCycles(t *testing.T) {
	a := cycle.NewArray()
	a.Append(cycle.NewObject().Set("back", a))

	for _, f := range []Format{FormatJSON, FormatYAML} {
		if _, err := Marshal(a, f, 0); !errors.Is(err, ErrCyclic) {
			t.Errorf("Marshal(%s) error = %v, want ErrCyclic", f, err)
		}
	}
}

func TestMarshalSharedIsNotCyclic(t *testing.T) {
	x := cycle.NewObject().Set("v", 1)
	out, err := MarshalJSON(cycle.NewArray(x, x))
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(out) != `[{"v":1},{"v":1}]` {
		t.Errorf("MarshalJSON() = %s", out)
	}
}

func TestMarshalJSONWrappers(t *testing.T) {
	when := time.Date(2016, 2, 1, 12, 0, 0, 0, time.UTC)
	v := cycle.NewObject().
		Set("date", when).
		Set("re", regexp.MustCompile("a+")).
		Set("num", cycle.Boxed{Value: 3}).
		Set("str", &cycle.Boxed{Value: "s"}).
		Set("f", 0.5)

	out, err := MarshalJSON(v)
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	want := `{"date":"2016-02-01T12:00:00Z","re":{},"num":3,"str":"s","f":0.5}`
	if string(out) != want {
		t.Errorf("MarshalJSON() = %s, want %s", out, want)
	}
}

func TestDecycledDocumentShapes(t *testing.T) {
	self := cycle.NewArray()
	self.Append(self)
	out, err := MarshalJSON(cycle.Decycle(self, cycle.NewRegistry()))
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(out) != `[{"$ref":"$"}]` {
		t.Errorf("self array = %s", out)
	}

	point := cycle.NewClass("Point")
	p := (&cycle.Object{Class: point}).Set("x", 1).Set("y", 2)
	out, err = MarshalJSON(cycle.Decycle(p, cycle.NewRegistry()))
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(out) != `{"x":1,"y":2,"$class":"Point"}` {
		t.Errorf("point = %s", out)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := `{"b":1,"a":[true,null,"x",2.5],"$ref":"$[\"a\"][0]","c":{"d":[]},"e":"null"}`
	v, err := UnmarshalJSON([]byte(in))
	if err != nil {
		t.Fatalf("UnmarshalJSON() error: %v", err)
	}
	y, err := MarshalYAML(v)
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	back, err := UnmarshalYAML(y)
	if err != nil {
		t.Fatalf("UnmarshalYAML() error: %v\n%s", err, y)
	}
	out, err := MarshalJSON(back)
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(out) != in {
		t.Errorf("JSON -> YAML -> JSON = %s, want %s\nyaml:\n%s", out, in, y)
	}
}

func TestUnmarshalYAMLAnchorsShareIdentity(t *testing.T) {
	doc := `
base: &b
  name: shared
copy: *b
list: &l [1, 2]
again: *l
`
	v, err := UnmarshalYAML([]byte(doc))
	if err != nil {
		t.Fatalf("UnmarshalYAML() error: %v", err)
	}
	o := v.(*cycle.Object)
	base, _ := o.Get("base")
	cp, _ := o.Get("copy")
	if base != cp {
		t.Error("alias should decode to the anchored object")
	}
	l, _ := o.Get("list")
	again, _ := o.Get("again")
	if l != again {
		t.Error("alias should decode to the anchored sequence")
	}

	out, err := MarshalJSON(cycle.Decycle(v, cycle.NewRegistry()))
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	want := `{"base":{"name":"shared"},"copy":{"$ref":"$[\"base\"]"},"list":[1,2],"again":{"$ref":"$[\"list\"]"}}`
	if string(out) != want {
		t.Errorf("decycled = %s, want %s", out, want)
	}
}

func TestUnmarshalYAMLScalars(t *testing.T) {
	v, err := UnmarshalYAML([]byte("i: 7\nf: 1.5\nb: yes\ns: 'yes'\nn: ~\nt: 2016-02-01T00:00:00Z\n"))
	if err != nil {
		t.Fatalf("UnmarshalYAML() error: %v", err)
	}
	o := v.(*cycle.Object)
	checks := map[string]any{
		"i": json.Number("7"),
		"f": json.Number("1.5"),
		"s": "yes",
		"n": nil,
		"t": time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for k, want := range checks {
		got, _ := o.Get(k)
		if tw, ok := want.(time.Time); ok {
			if gt, ok := got.(time.Time); !ok || !gt.Equal(tw) {
				t.Errorf("%s = %#v, want %v", k, got, tw)
			}
			continue
		}
		if got != want {
			t.Errorf("%s = %#v, want %#v", k, got, want)
		}
	}
}

func TestUnmarshalYAMLEmpty(t *testing.T) {
	v, err := UnmarshalYAML(nil)
	if err != nil || v != nil {
		t.Errorf("UnmarshalYAML(nil) = %v, %v", v, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("error should wrap ErrUnknownFormat: %v", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	if got := FormatFromPath("graph.yml", FormatJSON); got != FormatYAML {
		t.Errorf("FormatFromPath(.yml) = %s", got)
	}
	if got := FormatFromPath("graph.txt", FormatJSON); got != FormatJSON {
		t.Errorf("FormatFromPath(.txt) = %s", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	v := cycle.NewObject().Set("k", "v")
	if err := Encode(&buf, v, FormatJSON, 0); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if buf.String() != "{\"k\":\"v\"}\n" {
		t.Errorf("Encode() = %q", buf.String())
	}
	got, err := Decode(strings.NewReader(buf.String()), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if s, _ := got.(*cycle.Object).Get("k"); s != "v" {
		t.Errorf("Decode() = %#v", got)
	}
	if _, err := Unmarshal(nil, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Unmarshal(xml) error = %v", err)
	}
}
