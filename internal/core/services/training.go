package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type TrainingService struct {
	runs output.RunClient
	poll PollConfig
}

func NewTrainingService(runs output.RunClient, poll PollConfig) *TrainingService {
	return &TrainingService{runs: runs, poll: poll}
}

// Submit validates cfg against the cluster it targets and hands the job to
// the platform.
func (s *TrainingService) Submit(ctx context.Context, experiment string, cfg *domain.AutoMLConfig, compute *domain.ComputeTarget) (*domain.Run, error) {
	if compute != nil && cfg.ComputeTarget == "" {
		cfg.ComputeTarget = compute.Name
	}
	if err := cfg.Validate(compute); err != nil {
		return nil, err
	}

	run, err := s.runs.SubmitAutoML(ctx, experiment, cfg)
	if err != nil {
		return nil, fmt.Errorf("submit automl run: %w", err)
	}

	log.WithFields(log.Fields{
		"run_id":         run.ID,
		"experiment":     experiment,
		"compute":        cfg.ComputeTarget,
		"distributed":    cfg.UseDistributed,
		"max_nodes":      cfg.MaxNodes,
		"allowed_models": cfg.AllowedModels,
		"primary_metric": cfg.PrimaryMetric,
	}).Info("automl run submitted")

	return run, nil
}

// Wait blocks until the run reaches a terminal state.
func (s *TrainingService) Wait(ctx context.Context, runID string) (*domain.Run, error) {
	var run *domain.Run
	var last domain.RunStatus

	err := pollUntil(ctx, s.poll, "run "+runID, func(ctx context.Context) (bool, error) {
		r, err := s.runs.GetRun(ctx, runID)
		if err != nil {
			return false, fmt.Errorf("get run: %w", err)
		}
		run = r
		if r.Status != last {
			log.WithFields(log.Fields{"run_id": runID, "status": r.Status}).Info("run status changed")
			last = r.Status
		}
		return r.Status.IsTerminal(), nil
	})
	if err != nil {
		return nil, err
	}

	switch run.Status {
	case domain.RunStatusFailed:
		return run, fmt.Errorf("%w: %s: %s", domain.ErrRunFailed, runID, run.Error)
	case domain.RunStatusCanceled:
		return run, fmt.Errorf("%w: %s", domain.ErrRunCanceled, runID)
	}

	log.WithFields(log.Fields{
		"run_id":   runID,
		"duration": run.Duration(),
	}).Info("run completed")
	return run, nil
}

// BestRun returns the child run with the best primary metric.
func (s *TrainingService) BestRun(ctx context.Context, runID, metric string) (*domain.Run, error) {
	best, err := s.runs.GetBestChildRun(ctx, runID, metric)
	if err != nil {
		return nil, fmt.Errorf("get best child run: %w", err)
	}

	fields := log.Fields{
		"run_id":    runID,
		"best_run":  best.ID,
		"algorithm": best.Algorithm,
	}
	if score, ok := best.PrimaryScore(metric); ok {
		fields[metric] = score
	}
	log.WithFields(fields).Info("best run retrieved")

	return best, nil
}

// Get fetches a run by id without waiting on it.
func (s *TrainingService) Get(ctx context.Context, runID string) (*domain.Run, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (s *TrainingService) Cancel(ctx context.Context, runID string) error {
	if err := s.runs.CancelRun(ctx, runID); err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	log.WithField("run_id", runID).Info("run cancel requested")
	return nil
}
