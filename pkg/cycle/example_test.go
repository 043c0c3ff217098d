package cycle_test

import (
	"fmt"

	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/cycle"
)

func ExampleDecycle() {
	a := cycle.NewArray()
	a.Append(a)

	out, _ := codec.MarshalJSON(cycle.Decycle(a, cycle.NewRegistry()))
	fmt.Println(string(out))
	// Output: [{"$ref":"$"}]
}

func ExampleDecycle_classTag() {
	reg := cycle.NewRegistry()
	point := reg.MustRegister("Point", cycle.NewClass("Point"))

	p := (&cycle.Object{Class: point}).Set("x", 1).Set("y", 2)
	out, _ := codec.MarshalJSON(cycle.Decycle(p, reg))
	fmt.Println(string(out))
	// Output: {"x":1,"y":2,"$class":"Point"}
}

func ExampleRetrocycle() {
	tree, _ := codec.UnmarshalJSON([]byte(`{"name":"n","self":{"$ref":"$"}}`))

	g, err := cycle.Retrocycle(tree, cycle.NewRegistry())
	if err != nil {
		fmt.Println(err)
		return
	}
	o := g.(*cycle.Object)
	self, _ := o.Get("self")
	fmt.Println(self == g)
	// Output: true
}

func ExampleScan() {
	tree, _ := codec.UnmarshalJSON([]byte(`[{"a":1,"$class":"Node"},{"$ref":"$[0]"},{"$ref":"nope"}]`))

	for _, r := range cycle.Refs(tree) {
		fmt.Println(r.At, r.Target, r.Valid)
	}
	// Output:
	// $[1] $[0] true
	// $[2] nope false
}

func ExampleKeyPath() {
	fmt.Println(cycle.KeyPath(cycle.IndexPath(cycle.Root, 3), `say "hi"`))
	// Output: $[3]["say \"hi\""]
}
