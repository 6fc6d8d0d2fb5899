//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

// Runs against AUTOML_TEST_DATABASE_URL with migrations/001_pipeline_run.sql applied.
func newTestRepo(t *testing.T) output.PipelineRepository {
	t.Helper()
	dsn := os.Getenv("AUTOML_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTOML_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../../migrations/001_pipeline_run.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "TRUNCATE pipeline_run")
	require.NoError(t, err)

	return NewPipelineRepository(pool)
}

func TestPipelineRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := domain.NewPipeline("sub/rg/ws", "automl-classification", "AUC_weighted")
	require.NoError(t, err)
	p.Labels["owner"] = "ml-team"
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, p), domain.ErrPipelineExists)

	p.ServiceName = "automl-svc"
	p.DeployTarget = domain.DeployTargetPlatform
	p.MarkSucceeded()
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PipelineSucceeded, got.Status)
	assert.Equal(t, "ml-team", got.Labels["owner"])

	latest, err := repo.LatestByService(ctx, "automl-svc")
	require.NoError(t, err)
	assert.Equal(t, p.ID, latest.ID)

	_, err = repo.LatestByService(ctx, "missing-svc")
	assert.ErrorIs(t, err, domain.ErrPipelineNotFound)
}

func TestPipelineRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i, status := range []domain.PipelineStatus{domain.PipelineFailed, domain.PipelineSucceeded, domain.PipelineFailed} {
		p, err := domain.NewPipeline("sub/rg/ws", "automl-classification", "AUC_weighted")
		require.NoError(t, err)
		p.Status = status
		if i == 2 {
			p.ServiceName = "automl-svc"
		}
		require.NoError(t, repo.Create(ctx, p))
	}

	items, total, err := repo.List(ctx, output.PipelineFilter{Status: "FAILED", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 1)

	items, total, err = repo.List(ctx, output.PipelineFilter{
		Status:      "FAILED",
		Experiment:  "automl-classification",
		ServiceName: "automl-svc",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "automl-svc", items[0].ServiceName)

	items, _, err = repo.List(ctx, output.PipelineFilter{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
