package domain

import "time"

// RunStatus is the platform-reported lifecycle state of a run.
type RunStatus string

const (
	RunStatusNotStarted RunStatus = "NotStarted"
	RunStatusQueued     RunStatus = "Queued"
	RunStatusPreparing  RunStatus = "Preparing"
	RunStatusStarting   RunStatus = "Starting"
	RunStatusRunning    RunStatus = "Running"
	RunStatusFinalizing RunStatus = "Finalizing"
	RunStatusCompleted  RunStatus = "Completed"
	RunStatusFailed     RunStatus = "Failed"
	RunStatusCanceled   RunStatus = "Canceled"
)

func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCanceled
}

// Run is a remote job execution record.
type Run struct {
	ID             string             `json:"id"`
	ParentID       string             `json:"parent_id,omitempty"`
	ExperimentName string             `json:"experiment_name"`
	Status         RunStatus          `json:"status"`
	Error          string             `json:"error,omitempty"`
	Algorithm      string             `json:"algorithm,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Properties     map[string]string  `json:"properties,omitempty"`
	StartTime      *time.Time         `json:"start_time,omitempty"`
	EndTime        *time.Time         `json:"end_time,omitempty"`
}

func (r *Run) IsSucceeded() bool {
	return r.Status == RunStatusCompleted
}

// PrimaryScore returns the value recorded for metric, if any.
func (r *Run) PrimaryScore(metric string) (float64, bool) {
	v, ok := r.Metrics[metric]
	return v, ok
}

// Duration is zero until the run has both timestamps.
func (r *Run) Duration() time.Duration {
	if r.StartTime == nil || r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(*r.StartTime)
}
