package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape fetches the handler output and parses it like a Prometheus server would.
func scrape(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	require.NoError(t, err)
	return mfs
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("get", StatusOK, 5*time.Millisecond)
	m.ObserveOperation("get", StatusOK, 5*time.Millisecond)
	m.ObserveOperation("get", StatusError, time.Millisecond)

	mfs := scrape(t, m)
	ops := mfs["zkrest_operations_total"]
	require.NotNil(t, ops)
	assert.Equal(t, 2.0, counterValue(ops, map[string]string{"op": "get", "status": StatusOK}))
	assert.Equal(t, 1.0, counterValue(ops, map[string]string{"op": "get", "status": StatusError}))

	dur := mfs["zkrest_operations_duration_seconds"]
	require.NotNil(t, dur)
	require.Len(t, dur.GetMetric(), 1)
	assert.Equal(t, uint64(3), dur.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestObserveTreeAndFaults(t *testing.T) {
	m := New()
	m.ObserveTree(3)
	m.IncFault()

	mfs := scrape(t, m)
	assert.Equal(t, uint64(1), mfs["zkrest_tree_nodes"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, mfs["zkrest_http_faults_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Contains(t, mfs, "go_goroutines")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("get", StatusOK, time.Millisecond)
		m.ObserveTree(1)
		m.IncFault()
	})
	assert.Nil(t, m.Registry())
}
