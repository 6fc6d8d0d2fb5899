package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"automl-orchestrator/internal/core/domain"
	"automl-orchestrator/internal/core/ports/output"
)

// MockPipelineRepo is a mock of PipelineRepository.
type MockPipelineRepo struct {
	mock.Mock
}

func (m *MockPipelineRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPipelineRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pipeline), args.Error(1)
}

func (m *MockPipelineRepo) Update(ctx context.Context, p *domain.Pipeline) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPipelineRepo) List(ctx context.Context, filter ports.PipelineFilter) ([]*domain.Pipeline, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Pipeline), args.Int(1), args.Error(2)
}

func (m *MockPipelineRepo) LatestByService(ctx context.Context, name string) (*domain.Pipeline, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pipeline), args.Error(1)
}

var _ ports.PipelineRepository = (*MockPipelineRepo)(nil)
