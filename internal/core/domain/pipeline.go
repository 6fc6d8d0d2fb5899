package domain

import (
	"time"

	"github.com/google/uuid"
)

// PipelineStatus is the ledger status of one orchestration.
type PipelineStatus string

const (
	PipelineRunning   PipelineStatus = "RUNNING"
	PipelineSucceeded PipelineStatus = "SUCCEEDED"
	PipelineFailed    PipelineStatus = "FAILED"
	PipelineCleanedUp PipelineStatus = "CLEANED_UP"
)

// IsValid checks if the status is valid
func (s PipelineStatus) IsValid() bool {
	switch s {
	case PipelineRunning, PipelineSucceeded, PipelineFailed, PipelineCleanedUp:
		return true
	}
	return false
}

// Step names, in execution order.
const (
	StepBindWorkspace    = "bind_workspace"
	StepAcquireCompute   = "acquire_compute"
	StepRegisterDatasets = "register_datasets"
	StepSubmitTraining   = "submit_training"
	StepWaitTraining     = "wait_training"
	StepRetrieveBestRun  = "retrieve_best_run"
	StepFeaturization    = "featurization_summary"
	StepExplanations     = "explanations"
	StepRegisterModel    = "register_model"
	StepDeployService    = "deploy_service"
	StepScore            = "score"
	StepCleanup          = "cleanup"
)

// Pipeline records the platform handles one orchestration produced, so
// they can be inspected or cleaned up later.
type Pipeline struct {
	ID            uuid.UUID         `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Workspace     string            `json:"workspace"`
	Experiment    string            `json:"experiment"`
	ComputeTarget string            `json:"compute_target"`
	RunID         string            `json:"run_id"`
	BestRunID     string            `json:"best_run_id"`
	BestAlgorithm string            `json:"best_algorithm"`
	PrimaryMetric string            `json:"primary_metric"`
	BestScore     *float64          `json:"best_score"`
	ModelName     string            `json:"model_name"`
	ModelVersion  int               `json:"model_version"`
	ServiceName   string            `json:"service_name"`
	ScoringURI    string            `json:"scoring_uri"`
	DeployTarget  DeployTarget      `json:"deploy_target"`
	Stage         string            `json:"stage"`
	Status        PipelineStatus    `json:"status"`
	LastError     string            `json:"last_error"`
	Accuracy      *float64          `json:"accuracy"`
	Labels        map[string]string `json:"labels"`
}

// NewPipeline creates a running pipeline record
func NewPipeline(workspace, experiment, primaryMetric string) (*Pipeline, error) {
	if workspace == "" {
		return nil, ErrInvalidWorkspace
	}
	if experiment == "" {
		return nil, ErrInvalidExperimentName
	}

	now := time.Now()
	return &Pipeline{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Workspace:     workspace,
		Experiment:    experiment,
		PrimaryMetric: primaryMetric,
		Stage:         StepBindWorkspace,
		Status:        PipelineRunning,
		Labels:        make(map[string]string),
	}, nil
}

// Enter records the step now executing
func (p *Pipeline) Enter(step string) {
	p.Stage = step
	p.UpdatedAt = time.Now()
}

// MarkSucceeded records a completed orchestration
func (p *Pipeline) MarkSucceeded() {
	p.Status = PipelineSucceeded
	p.LastError = ""
	p.UpdatedAt = time.Now()
}

// MarkFailed records the failing step's error
func (p *Pipeline) MarkFailed(err error) {
	p.Status = PipelineFailed
	if err != nil {
		p.LastError = err.Error()
	}
	p.UpdatedAt = time.Now()
}

// MarkCleanedUp records endpoint deletion
func (p *Pipeline) MarkCleanedUp() {
	p.Status = PipelineCleanedUp
	p.Stage = StepCleanup
	p.UpdatedAt = time.Now()
}
