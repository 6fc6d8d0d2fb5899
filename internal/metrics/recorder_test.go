package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("score", time.Second)
	r.IncStepResult("score", ResultSuccess)
	r.IncPipelineOutcome("succeeded")
	r.SetBestScore("AUC_weighted", 0.9)
	assert.NoError(t, r.Push(context.Background()))
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStepDuration("wait_training", 90*time.Second)
	pr.IncStepResult("wait_training", ResultSuccess)
	pr.IncStepResult("deploy_service", ResultFailed)
	pr.IncPipelineOutcome("failed")
	pr.SetBestScore("AUC_weighted", 0.947)

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.stepResults.WithLabelValues("deploy_service", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.outcomes.WithLabelValues("failed")))
	assert.InDelta(t, 0.947, testutil.ToFloat64(pr.bestScore.WithLabelValues("AUC_weighted")), 1e-9)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "automl_step_duration_seconds")
	assert.Contains(t, names, "automl_pipeline_outcomes_total")
}

func TestHTTPMetrics_Handler(t *testing.T) {
	m := NewHTTPMetrics(nil)
	m.ObserveRequest(http.MethodGet, "/api/v1/automl/pipelines", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/v1/automl/pipelines", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `automl_http_requests_total{code="200",method="GET",route="/api/v1/automl/pipelines"} 1`)
	assert.Contains(t, body, "automl_http_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestPrometheusRecorder_Push(t *testing.T) {
	var path string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	pr := NewPrometheusRecorder(nil).WithPushgateway(gw.URL, "automl-test")
	pr.IncPipelineOutcome("succeeded")

	require.NoError(t, pr.Push(context.Background()))
	assert.True(t, strings.HasPrefix(path, "/metrics/job/automl-test"), path)
}

func TestPrometheusRecorder_PushWithoutGateway(t *testing.T) {
	assert.NoError(t, NewPrometheusRecorder(nil).Push(context.Background()))
}
