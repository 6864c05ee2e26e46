// Package rle provides the run-length encoding used for object identifiers in
// tabular service responses.
//
// An identifier list is a sequence of entries. Each entry is either a bare
// identifier or a pair of a base identifier and an extent:
//
//	| Entry        | Expands to                        | Count |
//	|--------------|-----------------------------------|-------|
//	| 7            | 7                                 | 1     |
//	| [100, 0]     | 100                               | 1     |
//	| [100, 2]     | 100, 101, 102                     | 3     |
//	| [5, n]       | 5, 6, ..., 5+n                    | n+1   |
//	|--------------|-----------------------------------|-------|
//
// Expansion keeps entry order. Entries are never sorted, merged or
// deduplicated, so [3, [1, 1], 3] expands to 3, 1, 2, 3.
//
// Encoding is the inverse: ascending runs of consecutive identifiers collapse
// into a single pair and isolated identifiers stay bare.
package rle
