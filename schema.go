package morgue

import (
	"strings"
)

// Kind distinguishes how a column's values are read.
type Kind int

// Column Kinds
const (
	// Plain columns hold their value directly.
	Plain Kind = iota

	// UniqueAggregate columns hold a single aggregated value wrapped in a
	// one-element list.
	UniqueAggregate
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case UniqueAggregate:
		return "unique"
	}

	return "unknown"
}

// Column is an output field of the decoder's schema.
type Column struct {
	Name string
	Type string
	Kind Kind

	// Attribute is the aggregated attribute for UniqueAggregate columns,
	// e.g. "hostname" for "unique(hostname)".
	Attribute string
}

const (
	uniquePrefix = "unique("
	uniqueSuffix = ")"
)

// ColumnKind classifies a column by name.
func ColumnKind(name string) (k Kind, attribute string) {
	if len(name) > len(uniquePrefix)+len(uniqueSuffix) &&
		strings.HasPrefix(name, uniquePrefix) &&
		strings.HasSuffix(name, uniqueSuffix) {
		return UniqueAggregate, name[len(uniquePrefix) : len(name)-len(uniqueSuffix)]
	}

	return Plain, ""
}

func (d *Decoder) buildSchema() {
	d.schema = make([]Column, 0, len(d.p.Columns))
	d.fields = make(map[string]string, len(d.p.Columns))

	for _, c := range d.p.Columns {
		kind, attr := ColumnKind(c.Name)

		d.schema = append(d.schema, Column{
			Name:      c.Name,
			Type:      c.Type,
			Kind:      kind,
			Attribute: attr,
		})
		d.fields[c.Name] = c.Type
	}

	d.metrics.schemaBuilt()
}

// Schema returns the ordered output columns. The slice must not be modified.
func (d *Decoder) Schema() []Column {
	d.schemaOnce.Do(d.buildSchema)

	return d.schema
}

// Fields returns the column types keyed by column name.
func (d *Decoder) Fields() map[string]string {
	d.schemaOnce.Do(d.buildSchema)

	fields := make(map[string]string, len(d.fields))
	for k, v := range d.fields {
		fields[k] = v
	}

	return fields
}
