package payload

import (
	"fmt"

	"github.com/calebcase/morgue/rle"
)

// Column is a named, typed output field.
type Column struct {
	Name string
	Type string
}

// ObjectGroup is the identifier list materialized under one group label.
type ObjectGroup struct {
	Label any
	Runs  []rle.Run
}

// Tuple is a flat-mode value: a factor, one value per column and an optional
// occurrence count.
type Tuple struct {
	Factor   any
	Fields   []any
	Count    uint64
	HasCount bool
}

// ValueRun applies Value to Length consecutive objects.
type ValueRun struct {
	Value  any
	Length uint64
}

// Entry is one column's attribute runs for the objects of one group.
type Entry struct {
	Key  any
	Runs []ValueRun
}

// Payload is a decoded service response. It is not modified after
// construction.
type Payload struct {
	Columns []Column

	// Values holds the raw value elements. Their meaning depends on whether
	// the response is read as flat tuples or object attribute entries.
	Values []any

	// Objects is nil when the response carried no objects member.
	Objects []ObjectGroup
}

// FromValue builds a Payload from a generically decoded response, such as the
// result of unmarshaling JSON into an any.
func FromValue(v any) (p *Payload, err error) {
	root, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, Malformed.New("response is not a map: %T", v)
	}

	if e, ok := root["error"]; ok && e != nil {
		return nil, serviceError(e)
	}

	if _, ok := root["columns"]; !ok {
		if inner, ok := root["response"].(map[string]any); ok {
			root = inner
		}
	}

	p = &Payload{}

	rawColumns, ok := root["columns"]
	if !ok {
		return nil, Malformed.New("missing columns")
	}

	p.Columns, err = parseColumns(rawColumns)
	if err != nil {
		return nil, err
	}

	rawValues, ok := root["values"]
	if !ok {
		return nil, Malformed.New("missing values")
	}

	if rawValues != nil {
		p.Values, ok = rawValues.([]any)
		if !ok {
			return nil, Malformed.New("values is not a list: %T", rawValues)
		}
	}
	if p.Values == nil {
		p.Values = []any{}
	}

	if rawObjects, ok := root["objects"]; ok {
		p.Objects, err = parseObjects(rawObjects)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func serviceError(v any) error {
	se := &ServiceError{}

	switch x := v.(type) {
	case string:
		se.Message = x
	case map[string]any:
		se.Message, _ = x["message"].(string)
		if code, ok := x["code"].(int64); ok {
			se.Code = code
		}
	default:
		return Malformed.New("invalid error member: %T", v)
	}

	return se
}

func parseColumns(v any) (columns []Column, err error) {
	list, ok := v.([]any)
	if !ok && v != nil {
		return nil, Malformed.New("columns is not a list: %T", v)
	}

	columns = make([]Column, 0, len(list))
	seen := make(map[string]struct{}, len(list))

	for i, raw := range list {
		var c Column

		switch x := raw.(type) {
		case string:
			c.Name = x
		case []any:
			if len(x) < 1 || len(x) > 2 {
				return nil, Malformed.New("column %d: expected [name, type], got %d elements", i, len(x))
			}
			c.Name, ok = x[0].(string)
			if !ok {
				return nil, Malformed.New("column %d: name is %T", i, x[0])
			}
			if len(x) == 2 {
				c.Type, ok = x[1].(string)
				if !ok {
					return nil, Malformed.New("column %d: type is %T", i, x[1])
				}
			}
		case map[string]any:
			c.Name, ok = x["name"].(string)
			if !ok {
				return nil, Malformed.New("column %d: missing name", i)
			}
			c.Type, _ = x["type"].(string)
		default:
			return nil, Malformed.New("column %d: unexpected %T", i, raw)
		}

		if _, dup := seen[c.Name]; dup {
			return nil, Malformed.New("column %d: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = struct{}{}

		columns = append(columns, c)
	}

	return columns, nil
}

func parseObjects(v any) (groups []ObjectGroup, err error) {
	list, ok := v.([]any)
	if !ok && v != nil {
		return nil, Malformed.New("objects is not a list: %T", v)
	}

	groups = make([]ObjectGroup, 0, len(list))

	for i, raw := range list {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, Malformed.New("object group %d: expected [label, identifiers]", i)
		}

		label, ok := Key(pair[0])
		if !ok {
			return nil, Malformed.New("object group %d: label is %T", i, pair[0])
		}

		runs, err := parseRuns(pair[1], fmt.Sprintf("object group %d", i))
		if err != nil {
			return nil, err
		}

		groups = append(groups, ObjectGroup{
			Label: label,
			Runs:  runs,
		})
	}

	return groups, nil
}

// ParseRuns converts a normalized identifier list into runs.
func ParseRuns(v any) (runs []rle.Run, err error) {
	defer Error.WrapP(&err)

	return parseRuns(v, "identifiers")
}

func parseRuns(v any, where string) (runs []rle.Run, err error) {
	list, ok := v.([]any)
	if !ok && v != nil {
		return nil, Malformed.New("%s: not a list: %T", where, v)
	}

	runs = make([]rle.Run, 0, len(list))

	for i, raw := range list {
		if id, ok := Uint(raw); ok {
			runs = append(runs, rle.Single(id))
			continue
		}

		pair, ok := raw.([]any)
		if !ok || len(pair) < 1 || len(pair) > 2 {
			return nil, Malformed.New("%s run %d: expected identifier or [base, extent]", where, i)
		}

		base, ok := Uint(pair[0])
		if !ok {
			return nil, Malformed.New("%s run %d: invalid base %v", where, i, pair[0])
		}

		if len(pair) == 1 {
			runs = append(runs, rle.Single(base))
			continue
		}

		extent, ok := Uint(pair[1])
		if !ok {
			return nil, Malformed.New("%s run %d: invalid extent %v", where, i, pair[1])
		}

		runs = append(runs, rle.Span(base, extent))
	}

	return runs, nil
}

// Tuple interprets value i as a flat tuple.
func (p *Payload) Tuple(i int) (t Tuple, err error) {
	defer Error.WrapP(&err)

	if i < 0 || i >= len(p.Values) {
		return t, Malformed.New("value %d: out of range [0, %d)", i, len(p.Values))
	}

	raw, ok := p.Values[i].([]any)
	if !ok || len(raw) < 2 || len(raw) > 3 {
		return t, Malformed.New("value %d: expected [factor, fields, count?]", i)
	}

	t.Factor, ok = Key(raw[0])
	if !ok {
		return t, Malformed.New("value %d: factor is %T", i, raw[0])
	}

	t.Fields, ok = raw[1].([]any)
	if !ok {
		return t, Malformed.New("value %d: fields is %T", i, raw[1])
	}
	if len(t.Fields) != len(p.Columns) {
		return t, Malformed.New("value %d: %d fields for %d columns", i, len(t.Fields), len(p.Columns))
	}

	if len(raw) == 3 {
		var valid bool
		t.Count, t.HasCount, valid = count(raw[2])
		if !valid {
			return t, Malformed.New("value %d: invalid count %v", i, raw[2])
		}
	}

	return t, nil
}

// Tuples interprets every value as a flat tuple.
func (p *Payload) Tuples() (tuples []Tuple, err error) {
	defer Error.WrapP(&err)

	tuples = make([]Tuple, 0, len(p.Values))

	for i := range p.Values {
		t, err := p.Tuple(i)
		if err != nil {
			return nil, err
		}

		tuples = append(tuples, t)
	}

	return tuples, nil
}

// Entries interprets the values as object attribute entries. The number of
// values must be a multiple of the number of columns.
func (p *Payload) Entries() (entries []Entry, err error) {
	defer Error.WrapP(&err)

	if len(p.Values) == 0 {
		return []Entry{}, nil
	}

	if len(p.Columns) == 0 {
		return nil, Malformed.New("%d values without columns", len(p.Values))
	}

	if len(p.Values)%len(p.Columns) != 0 {
		return nil, Malformed.New("%d values is not a multiple of %d columns", len(p.Values), len(p.Columns))
	}

	entries = make([]Entry, 0, len(p.Values))

	for i, v := range p.Values {
		raw, ok := v.([]any)
		if !ok || len(raw) == 0 {
			return nil, Malformed.New("entry %d: expected [key, runs...]", i)
		}

		key, ok := unwrapKey(raw[0])
		if !ok {
			return nil, Malformed.New("entry %d: invalid key %v", i, raw[0])
		}

		e := Entry{
			Key:  key,
			Runs: make([]ValueRun, 0, len(raw)-1),
		}

		for j, r := range raw[1:] {
			pair, ok := r.([]any)
			if !ok || len(pair) != 2 {
				return nil, Malformed.New("entry %d run %d: expected [value, length]", i, j)
			}

			length, ok := Uint(pair[1])
			if !ok {
				return nil, Malformed.New("entry %d run %d: invalid length %v", i, j, pair[1])
			}

			e.Runs = append(e.Runs, ValueRun{
				Value:  pair[0],
				Length: length,
			})
		}

		entries = append(entries, e)
	}

	return entries, nil
}
