package morgue

import (
	"github.com/go-kit/log/level"
)

// UnpackFlat decodes a flat response into records keyed by factor. A tuple
// with a non-zero occurrence count sets the record's count field the first
// time its factor is seen. A repeated factor overwrites earlier fields unless
// the decoder is strict.
func (d *Decoder) UnpackFlat() (records map[any]Record, err error) {
	defer func() { d.metrics.unpacked("flat", err) }()
	defer Error.WrapP(&err)

	tuples, err := d.p.Tuples()
	if err != nil {
		return nil, err
	}

	columns := d.Schema()
	records = make(map[any]Record, len(tuples))

	for i, t := range tuples {
		rec, seen := records[t.Factor]
		if seen && d.strict {
			return nil, DuplicateFactor.New("value %d: factor %v already seen", i, t.Factor)
		}

		if !seen {
			rec = make(Record, len(columns)+1)
			if t.HasCount {
				rec[FieldCount] = t.Count
			}
			records[t.Factor] = rec
		}

		for j, c := range columns {
			rec[c.Name] = t.Fields[j]
		}
	}

	level.Debug(d.logger).Log("msg", "unpacked flat response", "values", len(tuples), "records", len(records))

	return records, nil
}
