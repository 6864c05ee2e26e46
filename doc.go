// Package morgue decodes the run-length encoded columnar responses returned by
// the crash-report service.
//
// A Decoder wraps one payload and exposes read views over it:
//
//	| View               | Method                               | Result              |
//	|--------------------|--------------------------------------|---------------------|
//	| Column schema      | Fields, Schema                       | map[string]string   |
//	| Flat records       | UnpackFlat                           | map[any]Record      |
//	| Object records     | MaterializeObjects, MergeAttributes  | map[any][]Record    |
//	| Single row         | Row                                  | key, Record         |
//	|--------------------|--------------------------------------|---------------------|
//
// Object records are produced in two phases. MaterializeObjects expands every
// object group's identifier list into records carrying only the object field.
// MergeAttributes then walks the attribute entries and assigns each run's
// value to the next objects of the entry's group, by position. UnpackObjects
// runs both phases.
//
// Every unpack is a function of the payload alone. A Decoder keeps its column
// schema, built once on first use, and the diagnostics of the last merge.
//
// MaterializeObjects refuses responses whose identifier lists expand to more
// than DefaultMaxObjects records; WithMaxObjects changes the bound.
//
// # Strict Mode
//
// By default an attribute entry naming a group that has no objects is skipped
// and reported as a Diagnostic, and a repeated factor in a flat response
// overwrites the fields of the earlier one. WithStrict(true) turns both into
// errors.
package morgue
