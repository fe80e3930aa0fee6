// Package io writes collected dependency graphs.
//
// Two formats are supported. The JSON format is a flattened graph that can
// be read back with [ReadJSON]:
//
//	{
//	  "root": "org.example:app:1.0",
//	  "nodes": [
//	    {"id": "org.example:app:1.0", "row": 0, "meta": {"group": "org.example", ...}},
//	    {"id": "org.example:lib:1.4", "row": 1, "meta": {...}}
//	  ],
//	  "edges": [
//	    {"from": "org.example:app:1.0", "to": "org.example:lib:1.4",
//	     "meta": {"scope": "compile", "version": "1.4", "constraint": "[1.0,2.0)"}}
//	  ]
//	}
//
// Node IDs are artifact coordinates; see [graph.Flatten] for how distinct
// nodes sharing a coordinate are told apart. Row is the shortest distance
// from the root.
//
// The tree format ([WriteTree]) is meant for terminals:
//
//	org.example:app:1.0
//	  org.example:lib:1.4 [compile]
//	    org.example:core:2.0 [runtime]
//	  org.example:util:1.0 [compile]
//	    org.example:core:2.0 [runtime] (*)
package io
