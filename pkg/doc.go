// Package pkg provides the libraries behind cycler.
//
// # Overview
//
// Cycler writes object graphs that contain shared nodes and cycles as
// ordinary JSON or YAML trees, and reads them back with identity restored.
// The first occurrence of a node is written in full; every later occurrence
// becomes a {"$ref": PATH} token naming where the first one lives:
//
//	[{"$ref":"$"}]                          // an array containing itself
//	{"a":{"x":1},"b":{"$ref":"$[\"a\"]"}}   // b and a are the same object
//
// Instances of registered classes additionally carry a "$class" tag so the
// reader can give them their class back.
//
// # Architecture
//
// The data flow through cycler:
//
//	JSON / YAML bytes
//	         ↓
//	    [codec] (ordered decode)
//	         ↓
//	    [cycle] (retrocycle: resolve $ref, resurrect $class)
//	         ↓
//	    object graph ──→ [dot] (node-link diagram)
//	         ↓
//	    [cycle] (decycle)
//	         ↓
//	    [codec] (encode) → JSON / YAML bytes
//
// # Main Packages
//
// [cycle] - The value model, class registry, path grammar, Decycle,
// Retrocycle and Scan.
//
// [codec] - Order-preserving JSON and YAML codecs for the cycle value model.
//
// [dot] - Graphviz rendering of restored graphs.
//
// [pipeline] - The normalize, convert, inspect and graph operations shared
// by the CLI and the HTTP server, with caching.
//
// [cache] - Result caches: file, in-memory LRU, Redis and null.
//
// [server] - HTTP API over the pipeline.
//
// [config] - TOML, .env and environment configuration.
//
// [errors] - Error codes shared by every entry point.
//
// [observability] - Hook registry with a Prometheus implementation.
//
// # Quick Start
//
//	tree, _ := codec.UnmarshalJSON([]byte(`[{"$ref":"$"}]`))
//	g, _ := cycle.Retrocycle(tree, nil)
//	arr := g.(*cycle.Array)
//	fmt.Println(arr.At(0) == arr) // true
//
//	out, _ := codec.MarshalJSON(cycle.Decycle(g, nil))
//	fmt.Println(string(out)) // [{"$ref":"$"}]
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/cycle     # Examples only
//	CYCLER_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache  # Include Redis
//
// [cycle]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/cycle
// [codec]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/codec
// [dot]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cycler/pkg/observability
package pkg
