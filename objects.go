package morgue

import (
	"github.com/go-kit/log/level"

	"github.com/calebcase/morgue/rle"
)

// ObjectTable holds object records grouped by label, in materialization
// order. It is produced by MaterializeObjects and filled in by
// MergeAttributes.
type ObjectTable struct {
	groups      map[any][]Record
	labels      []any
	diagnostics []Diagnostic
}

// Groups returns the records keyed by group label.
func (t *ObjectTable) Groups() map[any][]Record {
	return t.groups
}

// Labels returns the group labels in the order they were first seen.
func (t *ObjectTable) Labels() []any {
	return t.labels
}

// Len is the number of objects materialized under label.
func (t *ObjectTable) Len(label any) int {
	return len(t.groups[label])
}

// Diagnostics returns the attribute entries skipped by MergeAttributes.
func (t *ObjectTable) Diagnostics() []Diagnostic {
	return t.diagnostics
}

// MaterializeObjects expands every object group into records carrying only
// the object field. Repeated labels append to the same group.
func (d *Decoder) MaterializeObjects() (t *ObjectTable, err error) {
	defer Error.WrapP(&err)

	if d.p.Objects == nil {
		return nil, Malformed.New("missing objects")
	}

	var want uint64
	for i, g := range d.p.Objects {
		n, err := rle.Len(g.Runs)
		if err == nil && want+n < want {
			err = rle.Error.New("length overflows")
		}
		if err != nil {
			return nil, Malformed.New("object group %d: %v", i, err)
		}

		want += n
		if d.maxObjects != 0 && want > d.maxObjects {
			return nil, Limit.New("response materializes more than %d objects", d.maxObjects)
		}
	}

	t = &ObjectTable{
		groups: make(map[any][]Record, len(d.p.Objects)),
		labels: make([]any, 0, len(d.p.Objects)),
	}

	total := 0

	for _, g := range d.p.Objects {
		records, seen := t.groups[g.Label]
		if !seen {
			records = []Record{}
			t.labels = append(t.labels, g.Label)
		}

		err = rle.Each(g.Runs, func(id uint64) {
			records = append(records, Record{FieldObject: id})
		})
		if err != nil {
			return nil, Malformed.Wrap(err)
		}

		total += len(records) - len(t.groups[g.Label])
		t.groups[g.Label] = records
	}

	d.metrics.materialized(total)

	return t, nil
}

// MergeAttributes assigns the attribute entries to the objects in t. Entry i
// carries column i modulo the number of columns. Each run of an entry applies
// its value to the next objects of the entry's group, starting from the
// group's first object.
func (d *Decoder) MergeAttributes(t *ObjectTable) (err error) {
	defer Error.WrapP(&err)

	t.diagnostics = nil
	defer func() { d.diagnostics = t.diagnostics }()

	entries, err := d.p.Entries()
	if err != nil {
		return err
	}

	columns := d.Schema()

	for i, e := range entries {
		column := columns[i%len(columns)]

		records, ok := t.groups[e.Key]
		if !ok {
			if d.strict {
				return UnknownGroup.New("entry %d: column %q references group %v", i, column.Name, e.Key)
			}

			diag := Diagnostic{
				Entry:  i,
				Group:  e.Key,
				Column: column.Name,
			}
			t.diagnostics = append(t.diagnostics, diag)

			d.metrics.unknownGroup()
			level.Warn(d.logger).Log("msg", "skipping attributes for unknown group", "entry", i, "group", e.Key, "column", column.Name)

			continue
		}

		var cursor uint64
		n := uint64(len(records))

		for j, r := range e.Runs {
			if r.Length > n-cursor {
				return OutOfRange.New(
					"entry %d run %d: column %q assigns %d objects at %d but group %v has %d",
					i, j, column.Name, r.Length, cursor, e.Key, n,
				)
			}

			for k := cursor; k < cursor+r.Length; k++ {
				records[k][column.Name] = r.Value
			}

			cursor += r.Length
		}
	}

	return nil
}

// UnpackObjects materializes the objects and merges their attributes.
// Skipped entries are logged and available from Diagnostics.
func (d *Decoder) UnpackObjects() (groups map[any][]Record, err error) {
	defer func() { d.metrics.unpacked("objects", err) }()

	t, err := d.MaterializeObjects()
	if err != nil {
		return nil, err
	}

	err = d.MergeAttributes(t)
	if err != nil {
		return nil, err
	}

	level.Debug(d.logger).Log("msg", "unpacked object response", "groups", len(t.groups), "skipped", len(t.diagnostics))

	return t.groups, nil
}
