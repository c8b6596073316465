// Package metrics holds the prometheus collectors shared by the scanner and scheduler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pchelper"

// Metrics groups all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	timerFires       *prometheus.CounterVec
	callbackFailures *prometheus.CounterVec
	entriesSized     prometheus.Counter
	sizingDuration   prometheus.Histogram
	childErrors      prometheus.Counter
}

// New creates the collectors and registers them on reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		timerFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timer_fires_total",
				Help:      "Number of times a maintenance timer was due and its callback ran",
			},
			[]string{"timer"},
		),
		callbackFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timer_callback_failures_total",
				Help:      "Number of timer callbacks that returned an error or panicked",
			},
			[]string{"timer"},
		),
		entriesSized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_sized_total",
				Help:      "Top-level cleanup entries whose size was computed",
			},
		),
		sizingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sizing_duration_seconds",
				Help:      "Duration of a batch sizing run",
				Buckets:   []float64{.01, .1, .5, 1, 5, 15, 60, 300},
			},
		),
		childErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "size_child_errors_total",
				Help:      "I/O errors swallowed while sizing directory children",
			},
		),
	}

	reg.MustRegister(
		m.timerFires,
		m.callbackFailures,
		m.entriesSized,
		m.sizingDuration,
		m.childErrors,
	)

	return m
}

func (m *Metrics) TimerFired(name string) {
	if m == nil {
		return
	}
	m.timerFires.WithLabelValues(name).Inc()
}

func (m *Metrics) CallbackFailed(name string) {
	if m == nil {
		return
	}
	m.callbackFailures.WithLabelValues(name).Inc()
}

func (m *Metrics) EntrySized() {
	if m == nil {
		return
	}
	m.entriesSized.Inc()
}

func (m *Metrics) SizingFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.sizingDuration.Observe(d.Seconds())
}

func (m *Metrics) ChildError() {
	if m == nil {
		return
	}
	m.childErrors.Inc()
}

// Handler returns an HTTP handler exposing the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
