package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"automl-orchestrator/internal/core/domain"
	"automl-orchestrator/internal/core/ports/output"
)

// MockWorkspaceClient is a mock of WorkspaceClient.
type MockWorkspaceClient struct {
	mock.Mock
}

func (m *MockWorkspaceClient) GetWorkspace(ctx context.Context) (*domain.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceClient) GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experiment), args.Error(1)
}

// MockComputeClient is a mock of ComputeClient.
type MockComputeClient struct {
	mock.Mock
}

func (m *MockComputeClient) GetCompute(ctx context.Context, name string) (*domain.ComputeTarget, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComputeTarget), args.Error(1)
}

func (m *MockComputeClient) CreateCompute(ctx context.Context, spec domain.ComputeSpec) (*domain.ComputeTarget, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComputeTarget), args.Error(1)
}

func (m *MockComputeClient) DeleteCompute(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockDatasetClient is a mock of DatasetClient.
type MockDatasetClient struct {
	mock.Mock
}

func (m *MockDatasetClient) RegisterDataset(ctx context.Context, spec domain.DatasetSpec) (*domain.Dataset, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

// MockRunClient is a mock of RunClient.
type MockRunClient struct {
	mock.Mock
}

func (m *MockRunClient) SubmitAutoML(ctx context.Context, experiment string, cfg *domain.AutoMLConfig) (*domain.Run, error) {
	args := m.Called(ctx, experiment, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunClient) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunClient) GetBestChildRun(ctx context.Context, runID, metric string) (*domain.Run, error) {
	args := m.Called(ctx, runID, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunClient) DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	args := m.Called(ctx, runID, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRunClient) GetExplanation(ctx context.Context, runID string, raw bool) (*domain.FeatureImportance, error) {
	args := m.Called(ctx, runID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeatureImportance), args.Error(1)
}

func (m *MockRunClient) CancelRun(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// MockModelClient is a mock of ModelClient.
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) RegisterModel(ctx context.Context, spec domain.ModelSpec) (*domain.Model, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelClient) GetModel(ctx context.Context, name string, version int) (*domain.Model, error) {
	args := m.Called(ctx, name, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

// MockServiceDeployer is a mock of ServiceDeployer.
type MockServiceDeployer struct {
	mock.Mock
	DeployTarget domain.DeployTarget
}

func (m *MockServiceDeployer) Target() domain.DeployTarget {
	if m.DeployTarget == "" {
		return domain.DeployTargetPlatform
	}
	return m.DeployTarget
}

func (m *MockServiceDeployer) Deploy(ctx context.Context, spec domain.DeploySpec) (*domain.WebService, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebService), args.Error(1)
}

func (m *MockServiceDeployer) GetService(ctx context.Context, name string) (*domain.WebService, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebService), args.Error(1)
}

func (m *MockServiceDeployer) DeleteService(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockServiceDeployer) GetLogs(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// MockScoringClient is a mock of ScoringClient.
type MockScoringClient struct {
	mock.Mock
}

func (m *MockScoringClient) Score(ctx context.Context, uri, key string, records []map[string]any) ([]any, error) {
	args := m.Called(ctx, uri, key, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

// MockTabularSource is a mock of TabularSource.
type MockTabularSource struct {
	mock.Mock
}

func (m *MockTabularSource) Load(ctx context.Context, location string, opts ports.TableOptions) (*domain.ScoringBatch, error) {
	args := m.Called(ctx, location, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoringBatch), args.Error(1)
}

var (
	_ ports.WorkspaceClient = (*MockWorkspaceClient)(nil)
	_ ports.ComputeClient   = (*MockComputeClient)(nil)
	_ ports.DatasetClient   = (*MockDatasetClient)(nil)
	_ ports.RunClient       = (*MockRunClient)(nil)
	_ ports.ModelClient     = (*MockModelClient)(nil)
	_ ports.ServiceDeployer = (*MockServiceDeployer)(nil)
	_ ports.ScoringClient   = (*MockScoringClient)(nil)
	_ ports.TabularSource   = (*MockTabularSource)(nil)
)
