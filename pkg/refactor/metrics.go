package refactor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mamaar/reimport/pkg/types"
)

// Metrics holds the Prometheus collectors of the rename engine. A nil *Metrics
// records nothing.
type Metrics struct {
	FilesEnumerated prometheus.Counter
	FilesScanned    prometheus.Counter
	FilesSkipped    *prometheus.CounterVec
	Edits           prometheus.Counter
	Timeouts        prometheus.Counter
	ComputeDuration prometheus.Histogram
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FilesEnumerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reimport",
			Name:      "files_enumerated_total",
			Help:      "Candidate files found by workspace enumeration.",
		}),
		FilesScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reimport",
			Name:      "files_scanned_total",
			Help:      "Files scanned for import statements.",
		}),
		FilesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reimport",
			Name:      "files_skipped_total",
			Help:      "Candidate files not scanned, by reason.",
		}, []string{"reason"}),
		Edits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reimport",
			Name:      "edits_total",
			Help:      "Import replacements computed.",
		}),
		Timeouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reimport",
			Name:      "timeouts_total",
			Help:      "Rename computations that hit the timeout.",
		}),
		ComputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reimport",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing one edit batch.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
	}
}

func (m *Metrics) observeEnumerated(n int) {
	if m == nil {
		return
	}
	m.FilesEnumerated.Add(float64(n))
}

func (m *Metrics) observeBatch(b *types.EditBatch, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FilesScanned.Add(float64(b.Stats.Scanned))
	m.FilesSkipped.WithLabelValues("filtered").Add(float64(b.Stats.Filtered))
	m.FilesSkipped.WithLabelValues("too_large").Add(float64(b.Stats.TooLarge))
	m.FilesSkipped.WithLabelValues("unreadable").Add(float64(b.Stats.Unreadable))
	m.Edits.Add(float64(b.ChangeCount()))
	m.ComputeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}
