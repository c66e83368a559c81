package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the extractor exports on /metrics.
type Metrics struct {
	Results      *prometheus.CounterVec
	Stages       *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Requests     *prometheus.CounterVec
	RequestTimes *prometheus.HistogramVec
}

// New builds the collectors and registers them on reg. A nil reg skips
// registration, which keeps tests free of global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_extractions_total",
				Help: "Extraction results by source and success",
			},
			[]string{"source", "success"},
		),
		Stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_stage_outcomes_total",
				Help: "Pipeline stage outcomes by stage and status",
			},
			[]string{"stage", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutrition_extraction_duration_seconds",
				Help:    "End-to-end extraction duration",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"source"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		RequestTimes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutrition_http_request_duration_seconds",
				Help:    "HTTP request duration by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Results, m.Stages, m.Duration, m.Requests, m.RequestTimes)
	}
	return m
}

// ObserveResult records one finished extraction. Safe on a nil receiver.
func (m *Metrics) ObserveResult(source string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	ok := "false"
	if success {
		ok = "true"
	}
	m.Results.WithLabelValues(source, ok).Inc()
	m.Duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveStage records a pipeline stage outcome. Safe on a nil receiver.
func (m *Metrics) ObserveStage(stage, status string) {
	if m == nil {
		return
	}
	m.Stages.WithLabelValues(stage, status).Inc()
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, route, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, code).Inc()
	m.RequestTimes.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
