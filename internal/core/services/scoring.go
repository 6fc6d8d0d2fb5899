package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type ScoringService struct {
	source output.TabularSource
	client output.ScoringClient
}

func NewScoringService(source output.TabularSource, client output.ScoringClient) *ScoringService {
	return &ScoringService{source: source, client: client}
}

// ScoreResult pairs endpoint predictions with the test labels.
type ScoreResult struct {
	Predictions []any
	Labels      []string
	Evaluation  *domain.Evaluation
}

// Score posts records to the service's scoring URI.
func (s *ScoringService) Score(ctx context.Context, ws *domain.WebService, records []map[string]any) ([]any, error) {
	if ws == nil || ws.ScoringURI == "" {
		return nil, domain.ErrServiceNotReady
	}
	return s.client.Score(ctx, ws.ScoringURI, ws.AuthKey, records)
}

// ScoreTestSet loads the test file, scores it against the service and
// compares predictions with the label column.
func (s *ScoringService) ScoreTestSet(ctx context.Context, ws *domain.WebService, location string, opts output.TableOptions) (*ScoreResult, error) {
	batch, err := s.source.Load(ctx, location, opts)
	if err != nil {
		return nil, fmt.Errorf("load test data: %w", err)
	}

	preds, err := s.Score(ctx, ws, batch.Records)
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{Predictions: preds, Labels: batch.Labels}
	if batch.Labels != nil {
		ev, err := domain.Evaluate(batch.Labels, preds)
		if err != nil {
			return result, err
		}
		result.Evaluation = ev
		log.WithFields(log.Fields{
			"service":  ws.Name,
			"records":  ev.Total,
			"correct":  ev.Correct,
			"accuracy": ev.Accuracy,
		}).Info("test set scored")
	}

	return result, nil
}
