package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScreeningMetrics exposes batch pipeline counters. A nil *ScreeningMetrics
// is valid and records nothing.
type ScreeningMetrics struct {
	itemsProcessed *prometheus.CounterVec
	batchDuration  prometheus.Histogram
	activeBatches  prometheus.Gauge
	scoringRetries prometheus.Counter
}

func NewScreeningMetrics(reg prometheus.Registerer) *ScreeningMetrics {
	m := &ScreeningMetrics{
		itemsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "items_processed_total",
			Help:      "Resumes processed, by final status and error kind.",
		}, []string{"status", "kind"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "screening",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a screening batch.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		activeBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "screening",
			Name:      "active_batches",
			Help:      "Batches currently running.",
		}),
		scoringRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "screening",
			Name:      "scoring_retries_total",
			Help:      "Scoring attempts repeated after a transient failure.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.itemsProcessed, m.batchDuration, m.activeBatches, m.scoringRetries)
	}
	return m
}

// BatchStarted marks a batch as running and returns the func that ends it.
func (m *ScreeningMetrics) BatchStarted() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.activeBatches.Inc()
	return func() {
		m.activeBatches.Dec()
		m.batchDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *ScreeningMetrics) ItemFinished(status string, kind ErrorKind) {
	if m == nil {
		return
	}
	m.itemsProcessed.WithLabelValues(status, string(kind)).Inc()
}

func (m *ScreeningMetrics) ScoringRetried() {
	if m == nil {
		return
	}
	m.scoringRetries.Inc()
}
