package ports

import (
	"context"

	"automl-orchestrator/internal/core/domain"
)

// WorkspaceClient binds to an existing workspace and its experiments.
type WorkspaceClient interface {
	GetWorkspace(ctx context.Context) (*domain.Workspace, error)
	GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error)
}

// ComputeClient talks to the remote fleet manager.
type ComputeClient interface {
	// GetCompute returns domain.ErrComputeTargetNotFound when no cluster
	// exists under name.
	GetCompute(ctx context.Context, name string) (*domain.ComputeTarget, error)
	CreateCompute(ctx context.Context, spec domain.ComputeSpec) (*domain.ComputeTarget, error)
	DeleteCompute(ctx context.Context, name string) error
}

type DatasetClient interface {
	RegisterDataset(ctx context.Context, spec domain.DatasetSpec) (*domain.Dataset, error)
}

// RunClient submits AutoML jobs and reads their results.
type RunClient interface {
	SubmitAutoML(ctx context.Context, experiment string, cfg *domain.AutoMLConfig) (*domain.Run, error)
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	GetBestChildRun(ctx context.Context, runID, metric string) (*domain.Run, error)
	DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error)
	GetExplanation(ctx context.Context, runID string, raw bool) (*domain.FeatureImportance, error)
	CancelRun(ctx context.Context, runID string) error
}

type ModelClient interface {
	RegisterModel(ctx context.Context, spec domain.ModelSpec) (*domain.Model, error)
	GetModel(ctx context.Context, name string, version int) (*domain.Model, error)
}

// ServiceDeployer turns registered models into HTTP endpoints.
type ServiceDeployer interface {
	Target() domain.DeployTarget
	Deploy(ctx context.Context, spec domain.DeploySpec) (*domain.WebService, error)
	// GetService returns domain.ErrServiceNotFound when absent.
	GetService(ctx context.Context, name string) (*domain.WebService, error)
	DeleteService(ctx context.Context, name string) error
	GetLogs(ctx context.Context, name string) (string, error)
}

// ScoringClient posts records to a deployed endpoint.
type ScoringClient interface {
	Score(ctx context.Context, uri, key string, records []map[string]any) ([]any, error)
}

// TableOptions controls how a delimited file is typed.
type TableOptions struct {
	LabelColumn  string
	FloatColumns []string
}

// TabularSource loads a delimited file into scoring records.
type TabularSource interface {
	Load(ctx context.Context, location string, opts TableOptions) (*domain.ScoringBatch, error)
}
