package morgue

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics reported by decoders.
type Metrics struct {
	SchemaBuilds        prometheus.Counter
	Unpacks             *prometheus.CounterVec
	UnpackErrors        *prometheus.CounterVec
	ObjectsMaterialized prometheus.Counter
	UnknownGroups       prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	schemaBuilds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "morgue_schema_builds_total",
		Help: "Total column schemas built",
	})

	unpacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "morgue_unpacks_total",
		Help: "Total unpack calls",
	}, []string{"mode"})

	unpackErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "morgue_unpack_errors_total",
		Help: "Total unpack calls that failed",
	}, []string{"mode"})

	objects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "morgue_objects_materialized_total",
		Help: "Total object records materialized",
	})

	unknownGroups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "morgue_unknown_groups_total",
		Help: "Total attribute entries skipped for referencing an unknown group",
	})

	reg.MustRegister(schemaBuilds, unpacks, unpackErrors, objects, unknownGroups)

	return &Metrics{
		SchemaBuilds:        schemaBuilds,
		Unpacks:             unpacks,
		UnpackErrors:        unpackErrors,
		ObjectsMaterialized: objects,
		UnknownGroups:       unknownGroups,
	}
}

func (m *Metrics) schemaBuilt() {
	if m == nil {
		return
	}
	m.SchemaBuilds.Inc()
}

func (m *Metrics) unpacked(mode string, err error) {
	if m == nil {
		return
	}
	m.Unpacks.WithLabelValues(mode).Inc()
	if err != nil {
		m.UnpackErrors.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) materialized(n int) {
	if m == nil {
		return
	}
	m.ObjectsMaterialized.Add(float64(n))
}

func (m *Metrics) unknownGroup() {
	if m == nil {
		return
	}
	m.UnknownGroups.Inc()
}
