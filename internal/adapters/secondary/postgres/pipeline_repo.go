package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

const pipelineColumns = `
	id, created_at, updated_at, workspace, experiment, compute_target,
	run_id, best_run_id, best_algorithm, primary_metric, best_score,
	model_name, model_version, service_name, scoring_uri, deploy_target,
	stage, status, last_error, accuracy, labels`

type pipelineRepo struct {
	pool *pgxpool.Pool
}

// NewPipelineRepository creates a new PipelineRepository
func NewPipelineRepository(pool *pgxpool.Pool) output.PipelineRepository {
	return &pipelineRepo{pool: pool}
}

func (r *pipelineRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	labelsJSON, err := json.Marshal(p.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO pipeline_run (` + pipelineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.CreatedAt, p.UpdatedAt, p.Workspace, p.Experiment, p.ComputeTarget,
		p.RunID, p.BestRunID, p.BestAlgorithm, p.PrimaryMetric, p.BestScore,
		p.ModelName, p.ModelVersion, p.ServiceName, p.ScoringURI, string(p.DeployTarget),
		p.Stage, string(p.Status), p.LastError, p.Accuracy, labelsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrPipelineExists
		}
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (r *pipelineRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipeline_run WHERE id = $1`

	p, err := scanPipeline(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPipelineNotFound
		}
		return nil, fmt.Errorf("get pipeline by id: %w", err)
	}
	return p, nil
}

func (r *pipelineRepo) Update(ctx context.Context, p *domain.Pipeline) error {
	labelsJSON, err := json.Marshal(p.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE pipeline_run
		SET compute_target = $1, run_id = $2, best_run_id = $3, best_algorithm = $4,
			best_score = $5, model_name = $6, model_version = $7, service_name = $8,
			scoring_uri = $9, deploy_target = $10, stage = $11, status = $12,
			last_error = $13, accuracy = $14, labels = $15, updated_at = NOW()
		WHERE id = $16
	`

	result, err := r.pool.Exec(ctx, query,
		p.ComputeTarget, p.RunID, p.BestRunID, p.BestAlgorithm,
		p.BestScore, p.ModelName, p.ModelVersion, p.ServiceName,
		p.ScoringURI, string(p.DeployTarget), p.Stage, string(p.Status),
		p.LastError, p.Accuracy, labelsJSON,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPipelineNotFound
	}
	return nil
}

func (r *pipelineRepo) List(ctx context.Context, filter output.PipelineFilter) ([]*domain.Pipeline, int, error) {
	whereClause, args := pipelineWhere(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pipeline_run WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pipelines: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM pipeline_run
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, pipelineColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*domain.Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan pipeline row: %w", err)
		}
		pipelines = append(pipelines, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pipeline rows: %w", err)
	}

	return pipelines, total, nil
}

// pipelineWhere builds the WHERE clause for filter with numbered
// placeholders starting at $1.
func pipelineWhere(filter output.PipelineFilter) (string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("status", filter.Status)
	add("experiment", filter.Experiment)
	add("service_name", filter.ServiceName)

	return strings.Join(conditions, " AND "), args
}

func (r *pipelineRepo) LatestByService(ctx context.Context, name string) (*domain.Pipeline, error) {
	query := `
		SELECT ` + pipelineColumns + ` FROM pipeline_run
		WHERE service_name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	p, err := scanPipeline(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPipelineNotFound
		}
		return nil, fmt.Errorf("get latest pipeline by service: %w", err)
	}
	return p, nil
}

// scanPipeline reads one row in pipelineColumns order; pgx.Rows satisfies
// pgx.Row so the same function serves QueryRow and Query.
func scanPipeline(row pgx.Row) (*domain.Pipeline, error) {
	p := &domain.Pipeline{}
	var deployTarget, status string
	var labelsJSON []byte

	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Workspace, &p.Experiment, &p.ComputeTarget,
		&p.RunID, &p.BestRunID, &p.BestAlgorithm, &p.PrimaryMetric, &p.BestScore,
		&p.ModelName, &p.ModelVersion, &p.ServiceName, &p.ScoringURI, &deployTarget,
		&p.Stage, &status, &p.LastError, &p.Accuracy, &labelsJSON,
	)
	if err != nil {
		return nil, err
	}

	p.DeployTarget = domain.DeployTarget(deployTarget)
	p.Status = domain.PipelineStatus(status)

	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &p.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	if p.Labels == nil {
		p.Labels = make(map[string]string)
	}

	return p, nil
}

var _ output.PipelineRepository = (*pipelineRepo)(nil)
