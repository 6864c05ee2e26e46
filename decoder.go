package morgue

import (
	"sync"

	"github.com/go-kit/log"

	"github.com/calebcase/morgue/payload"
)

// Record is a decoded record keyed by column name.
type Record map[string]any

// Reserved record fields.
const (
	FieldObject = "object"
	FieldCount  = "count"
)

// DefaultMaxObjects is the default bound on the objects one response may
// materialize.
const DefaultMaxObjects = 1 << 24

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(logger log.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics the decoder reports to.
func WithMetrics(m *Metrics) Option {
	return func(d *Decoder) {
		d.metrics = m
	}
}

// WithStrict makes unknown group references and duplicate factors errors
// instead of being skipped or overwritten.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// WithMaxObjects bounds the number of object records MaterializeObjects may
// produce. Zero removes the bound.
func WithMaxObjects(n uint64) Option {
	return func(d *Decoder) {
		d.maxObjects = n
	}
}

// Decoder decodes one payload. A Decoder must not be shared between
// goroutines.
type Decoder struct {
	p *payload.Payload

	logger  log.Logger
	metrics *Metrics
	strict  bool

	maxObjects uint64

	schemaOnce sync.Once
	schema     []Column
	fields     map[string]string

	diagnostics []Diagnostic
}

// New returns a decoder over p.
func New(p *payload.Payload, opts ...Option) *Decoder {
	d := &Decoder{
		p:          p,
		logger:     log.NewNopLogger(),
		maxObjects: DefaultMaxObjects,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Payload returns the decoded payload.
func (d *Decoder) Payload() *payload.Payload {
	return d.p
}

// Diagnostics returns the attribute entries skipped by the most recent
// MergeAttributes or UnpackObjects call.
func (d *Decoder) Diagnostics() []Diagnostic {
	return d.diagnostics
}
