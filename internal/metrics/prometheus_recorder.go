package metrics

import (
	"context"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "automl"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg          *prom.Registry
	stepDuration *prom.HistogramVec
	stepResults  *prom.CounterVec
	outcomes     *prom.CounterVec
	bestScore    *prom.GaugeVec

	pushURL string
	pushJob string
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Duration of individual pipeline steps",
		// Steps range from sub-second registry calls to hour-long training runs.
		Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
	}, []string{"step"})
	pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "step_results_total",
		Help:      "Step result counts by outcome",
	}, []string{"step", "result"})
	pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_outcomes_total",
		Help:      "Pipeline outcomes by final status",
	}, []string{"outcome"})
	pr.bestScore = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "best_score",
		Help:      "Primary metric score of the best child run",
	}, []string{"metric"})
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.outcomes, pr.bestScore)
	return pr
}

// WithPushgateway makes Push send the registry to url under job.
func (p *PrometheusRecorder) WithPushgateway(url, job string) *PrometheusRecorder {
	p.pushURL = url
	p.pushJob = job
	return p
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPipelineOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetBestScore(metric string, score float64) {
	if p == nil || p.bestScore == nil {
		return
	}
	p.bestScore.WithLabelValues(metric).Set(score)
}

// Push sends the current registry to the configured Pushgateway. It is a
// no-op when no gateway is configured.
func (p *PrometheusRecorder) Push(ctx context.Context) error {
	if p == nil || p.pushURL == "" {
		return nil
	}
	job := p.pushJob
	if job == "" {
		job = "automlctl"
	}
	if err := push.New(p.pushURL, job).Gatherer(p.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

var _ Recorder = (*PrometheusRecorder)(nil)
