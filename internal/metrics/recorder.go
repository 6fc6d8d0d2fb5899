package metrics

import (
	"context"
	"time"
)

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder receives pipeline step observations. NoopRecorder is used when
// metrics are not configured.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncPipelineOutcome(outcome string) // outcome: succeeded|failed|cleaned_up
	SetBestScore(metric string, score float64)
	Push(ctx context.Context) error
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncPipelineOutcome(string)                 {}
func (NoopRecorder) SetBestScore(string, float64)              {}
func (NoopRecorder) Push(context.Context) error                { return nil }
