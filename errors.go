package morgue

import (
	"fmt"

	"github.com/zeebo/errs"

	"github.com/calebcase/morgue/payload"
)

var (
	// Error is the class of errors returned by this package.
	Error = errs.Class("morgue")

	// Malformed is the class of structural payload violations.
	Malformed = &payload.Malformed

	// OutOfRange is the class of errors for runs that assign past the end of
	// a group's objects and for row indexes outside the values.
	OutOfRange = errs.Class("out of range")

	// UnknownGroup is the class of errors for attribute entries whose group
	// has no objects. It is only returned in strict mode.
	UnknownGroup = errs.Class("unknown group")

	// Limit is the class of errors for responses that materialize more
	// objects than the decoder allows.
	Limit = errs.Class("object limit")

	// DuplicateFactor is the class of errors for flat tuples repeating a
	// factor. It is only returned in strict mode.
	DuplicateFactor = errs.Class("duplicate factor")
)

// Diagnostic records an attribute entry that was skipped because its group
// has no materialized objects.
type Diagnostic struct {
	// Entry is the index of the entry within the values.
	Entry  int
	Group  any
	Column string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("entry %d: column %q references unknown group %v", d.Entry, d.Column, d.Group)
}
