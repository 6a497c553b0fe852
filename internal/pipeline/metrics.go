package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	skipReasonNoGeometry = "no_geometry"
	skipReasonPageError  = "page_error"
	skipReasonViewport   = "not_representable"
)

var (
	pagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfcad_pages_processed_total",
		Help: "Total number of pages segmented",
	})

	instancesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfcad_instances_extracted_total",
		Help: "Total number of shape instances recorded",
	})

	occurrencesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfcad_occurrences_skipped_total",
			Help: "Occurrences skipped during processing, by reason",
		},
		[]string{"reason"},
	)

	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdfcad_analyze_duration_seconds",
		Help:    "Duration of full two-pass document analysis",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
	})
)

// CountSkippedViewport tallies an occurrence whose mapped crop rectangle
// was not representable. Exposed for the render stage.
func CountSkippedViewport() {
	occurrencesSkipped.WithLabelValues(skipReasonViewport).Inc()
}
