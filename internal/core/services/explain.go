package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

// Artifact paths the platform writes for every AutoML child run.
const (
	FeaturizationSummaryArtifact = "outputs/featurization_summary.json"
	ModelArtifact                = "outputs/model.pkl"
	ScoringScriptArtifact        = "outputs/scoring_file_v_1_0_0.py"
)

type ExplainService struct {
	runs      output.RunClient
	outputDir string
}

func NewExplainService(runs output.RunClient, outputDir string) *ExplainService {
	return &ExplainService{runs: runs, outputDir: outputDir}
}

// FeaturizationSummary downloads the best run's featurization summary,
// keeps a local copy and returns it parsed along with the local path.
func (s *ExplainService) FeaturizationSummary(ctx context.Context, runID string) (*domain.FeaturizationSummary, string, error) {
	data, err := s.runs.DownloadArtifact(ctx, runID, FeaturizationSummaryArtifact)
	if err != nil {
		return nil, "", fmt.Errorf("download featurization summary: %w", err)
	}

	path, err := writeOutput(s.outputDir, filepath.Base(FeaturizationSummaryArtifact), data)
	if err != nil {
		return nil, "", err
	}

	summary, err := domain.ParseFeaturizationSummary(data)
	if err != nil {
		return nil, path, err
	}

	log.WithFields(log.Fields{
		"run_id":     runID,
		"raw":        len(summary.Entries),
		"engineered": summary.EngineeredFeatureCount(),
		"path":       path,
	}).Info("featurization summary downloaded")

	return summary, path, nil
}

// FeatureImportance returns the global importance values the platform
// computed for the run, over raw columns or engineered features.
func (s *ExplainService) FeatureImportance(ctx context.Context, runID string, raw bool) (*domain.FeatureImportance, error) {
	imp, err := s.runs.GetExplanation(ctx, runID, raw)
	if err != nil {
		return nil, fmt.Errorf("get explanation: %w", err)
	}
	imp.Raw = raw

	log.WithFields(log.Fields{
		"run_id":   runID,
		"raw":      raw,
		"features": len(imp.Values),
	}).Info("feature importance retrieved")

	return imp, nil
}

func writeOutput(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
