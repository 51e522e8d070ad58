package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMaterializeMetrics() {
	r.PassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "owlgraph_materialize_passes_total",
			Help: "Total number of materialization passes by outcome",
		},
		[]string{"category", "status"},
	)

	r.PassDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "owlgraph_materialize_pass_duration_seconds",
			Help:    "Materialization pass duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"category"},
	)

	r.ClassesMaterialized = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "owlgraph_materialize_classes_total",
			Help: "Total number of classes visited by materialization",
		},
		[]string{"category"},
	)

	r.HierarchyEdgesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "owlgraph_materialize_hierarchy_edges_total",
			Help: "Total number of hierarchy edges written",
		},
		[]string{"type"},
	)

	r.ResolverLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "owlgraph_resolver_lookups_total",
			Help: "Identity resolver lookups by result (hit or created)",
		},
		[]string{"result"},
	)

	r.AnnotationChannelsAbsent = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "owlgraph_annotation_channels_absent_total",
			Help: "Annotation channels dropped because the source does not declare them",
		},
		[]string{"channel"},
	)

	r.IndividualsTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "owlgraph_materialize_individuals",
			Help: "Individuals of owl:Thing found in the last pass per category",
		},
		[]string{"category"},
	)
}
