// Package io reads hierarchical data into treemap trees and saves computed
// layouts.
//
// # Tree Input
//
// Trees are described as nested objects. Three configurable keys select the
// parts of each object:
//
//   - children: an array of nested objects (missing or non-array means leaf)
//   - count: the node's weight (missing means 0)
//   - data: the node's payload (empty key stores the whole object)
//
// With the default [Keys] ("children", "value", "name"):
//
//	{
//	  "name": "src",
//	  "children": [
//	    {"name": "main.go", "value": 1200},
//	    {"name": "util", "children": [
//	      {"name": "strings.go", "value": 300}
//	    ]}
//	  ]
//	}
//
// The top-level object becomes the root. Inner counts are read but replaced
// on the first aggregation. The same nesting is accepted as TOML, where
// children are arrays of tables:
//
//	name = "src"
//
//	[[children]]
//	name = "main.go"
//	value = 1200
//
// JSON numbers decode as float64 and TOML integers as int64, so exclusion
// lists must use matching payload values.
//
// # Layout Output
//
// [WriteLayout] stores every node of a laid out tree as a flat record:
//
//	{
//	  "version": 1,
//	  "meta": {"sort": true},
//	  "nodes": [
//	    {"id": 0, "parent": -1, "children": [1, 2], "label": "src",
//	     "weight": 1500, "rect": {"x": 0, "y": 0, "w": 800, "h": 600}, ...}
//	  ]
//	}
//
// [ReadLayout] restores the tree so renderers can run without recomputing.
// Records keep rectangles bit for bit, so a saved layout renders the same as
// the one it was written from.
package io
