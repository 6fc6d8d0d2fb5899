package ports

import (
	"context"

	"github.com/google/uuid"

	"automl-orchestrator/internal/core/domain"
)

type PipelineFilter struct {
	Status      string
	Experiment  string
	ServiceName string
	Limit       int
	Offset      int
}

// PipelineRepository is the local ledger of orchestration runs.
type PipelineRepository interface {
	Create(ctx context.Context, p *domain.Pipeline) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error)
	Update(ctx context.Context, p *domain.Pipeline) error
	List(ctx context.Context, filter PipelineFilter) ([]*domain.Pipeline, int, error)
	// LatestByService returns the newest record that deployed name.
	LatestByService(ctx context.Context, name string) (*domain.Pipeline, error)
}
