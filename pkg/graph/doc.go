// Package graph provides the in-memory model for attributed directed graphs.
//
// A [Digraph] holds nodes (opaque identifier plus attributes) and directed
// edges (ordered node pair plus attributes). Attributes use the fixed-schema
// [Attrs] record: the three recognized keys (label, color, constraint) are
// typed fields, anything else passes through the Extra map untouched.
//
// The package also defines the JSON serialization format ([Graph]) used by
// the HTTP API and the JSON output format of the CLI.
package graph
