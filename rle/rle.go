package rle

import (
	"math"

	"github.com/zeebo/errs"
)

// maxPrealloc caps the capacity Expand reserves before producing identifiers.
const maxPrealloc = 1 << 20

// Error is the class of errors returned by this package.
var Error = errs.Class("rle")

// Run is a single entry of an identifier list.
type Run struct {
	Base   uint64
	Extent uint64

	// Ranged is true when the entry was written as a [base, extent] pair.
	// A bare entry always has a zero Extent.
	Ranged bool
}

// Single returns a bare entry.
func Single(id uint64) Run {
	return Run{Base: id}
}

// Span returns a ranged entry covering base through base+extent.
func Span(base, extent uint64) Run {
	return Run{Base: base, Extent: extent, Ranged: true}
}

// Len is the number of identifiers the run expands to.
func (r Run) Len() uint64 {
	if !r.Ranged {
		return 1
	}

	return r.Extent + 1
}

// Last is the final identifier produced by the run.
func (r Run) Last() (id uint64, err error) {
	if !r.Ranged {
		return r.Base, nil
	}

	if r.Extent > math.MaxUint64-r.Base {
		return 0, Error.New("run overflows: base=%d extent=%d", r.Base, r.Extent)
	}

	return r.Base + r.Extent, nil
}

// Each calls fn for every identifier in runs, in order.
func Each(runs []Run, fn func(id uint64)) (err error) {
	defer Error.WrapP(&err)

	for _, r := range runs {
		last, err := r.Last()
		if err != nil {
			return err
		}

		for id := r.Base; ; id++ {
			fn(id)

			if id == last {
				break
			}
		}
	}

	return nil
}

// Len returns the total number of identifiers runs expand to.
func Len(runs []Run) (n uint64, err error) {
	defer Error.WrapP(&err)

	for _, r := range runs {
		l := r.Len()
		if l == 0 || n > math.MaxUint64-l {
			return 0, Error.New("length overflows")
		}

		n += l
	}

	return n, nil
}

// Expand materializes runs into a flat identifier sequence.
func Expand(runs []Run) (ids []uint64, err error) {
	defer Error.WrapP(&err)

	n, err := Len(runs)
	if err != nil {
		return nil, err
	}

	if n > maxPrealloc {
		n = maxPrealloc
	}

	ids = make([]uint64, 0, n)

	err = Each(runs, func(id uint64) {
		ids = append(ids, id)
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Encode compacts ids into runs. Ascending consecutive identifiers share a
// single ranged entry; anything else starts a new entry.
func Encode(ids []uint64) (runs []Run) {
	runs = []Run{}

	for i := 0; i < len(ids); {
		j := i
		for j+1 < len(ids) && ids[j] != math.MaxUint64 && ids[j+1] == ids[j]+1 {
			j++
		}

		if j == i {
			runs = append(runs, Single(ids[i]))
		} else {
			runs = append(runs, Span(ids[i], uint64(j-i)))
		}

		i = j + 1
	}

	return runs
}
