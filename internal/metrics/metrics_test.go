package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveResultAndStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResult("llm", true, 2*time.Second)
	m.ObserveResult("fallback", false, time.Second)
	m.ObserveStage("llm", "DEGRADED")
	m.ObserveStage("llm", "DEGRADED")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("llm", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("fallback", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Stages.WithLabelValues("llm", "DEGRADED")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResult("llm", true, time.Second)
		m.ObserveStage("text", "OK")
		m.ObserveRequest("GET", "/health", "200", time.Millisecond)
	})
}
