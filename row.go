package morgue

// Row returns the factor and column values of flat value index. Values of
// UniqueAggregate columns are unwrapped from their one-element list.
func (d *Decoder) Row(index int) (key any, rec Record, err error) {
	defer Error.WrapP(&err)

	if index < 0 || index >= len(d.p.Values) {
		return nil, nil, OutOfRange.New("row %d: have %d rows", index, len(d.p.Values))
	}

	t, err := d.p.Tuple(index)
	if err != nil {
		return nil, nil, err
	}

	columns := d.Schema()
	rec = make(Record, len(columns))

	for i, c := range columns {
		v := t.Fields[i]

		if c.Kind == UniqueAggregate {
			l, ok := v.([]any)
			if ok && len(l) != 1 {
				return nil, nil, Malformed.New("row %d column %q: expected one value, got %d", index, c.Name, len(l))
			}
			if ok {
				v = l[0]
			}
		}

		rec[c.Name] = v
	}

	return t.Factor, rec, nil
}
