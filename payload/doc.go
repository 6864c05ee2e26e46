// Package payload models the columnar response returned by the crash-report
// service and validates its shape.
//
// A response is a map with three members:
//
//	{
//	  "columns": [["fingerprint", "uint64"], ["unique(hostname)", "string"]],
//	  "values":  [...],
//	  "objects": [["g1", [[100, 2], 105]]]
//	}
//
// # Columns
//
// Each column is a [name, type] pair. A {"name": ..., "type": ...} map or a
// bare name string is also accepted. Names must be unique; their order gives
// every positional tuple below its meaning.
//
// # Flat Values
//
// In flat responses every value is a tuple:
//
//	| Index | Element     | Notes                                       |
//	|-------|-------------|---------------------------------------------|
//	| 0     | factor      | comparable scalar, keys the record          |
//	| 1     | fieldValues | exactly len(columns) entries                |
//	| 2     | count       | optional occurrence count, zero is ignored  |
//	|-------|-------------|---------------------------------------------|
//
// # Object Values
//
// In object responses the values form consecutive groups of len(columns)
// entries. Entry i of a group carries column i:
//
//	[key, [value, length], [value, length], ...]
//
// The key is the group label, written bare or inside a single-element list.
// Each [value, length] pair applies value to the next length objects of the
// group.
//
// # Objects
//
// Each object group is a [label, identifiers] pair where identifiers is an
// identifier list as described in package rle.
//
// # Envelopes
//
// The service wraps results as {"response": {...}} and reports failures as
// {"error": {"message": "...", "code": 1}}. FromValue unwraps the former and
// returns a *ServiceError for the latter.
package payload
