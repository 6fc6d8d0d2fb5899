package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"automl-orchestrator/internal/core/domain"
)

type submitRequest struct {
	RunType   string               `json:"run_type"`
	Settings  *domain.AutoMLConfig `json:"settings"`
	Verbosity int                  `json:"verbosity"`
}

// SubmitAutoML hands the configuration to the hosted AutoML service. Model
// search and distributed training happen remotely.
func (c *Client) SubmitAutoML(ctx context.Context, experiment string, cfg *domain.AutoMLConfig) (*domain.Run, error) {
	req := submitRequest{
		RunType:   "automl",
		Settings:  cfg,
		Verbosity: cfg.VerbosityLevel(),
	}

	var run domain.Run
	path := "/experiments/" + escape(experiment) + "/runs"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &run); err != nil {
		return nil, fmt.Errorf("submit automl run: %w", err)
	}
	if run.ExperimentName == "" {
		run.ExperimentName = experiment
	}
	if run.Status == "" {
		run.Status = domain.RunStatusNotStarted
	}
	return &run, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	var run domain.Run
	if err := c.do(ctx, http.MethodGet, "/runs/"+escape(runID), nil, nil, &run); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, nil
}

// GetBestChildRun asks the platform for the child run with the best value
// of metric.
func (c *Client) GetBestChildRun(ctx context.Context, runID, metric string) (*domain.Run, error) {
	query := url.Values{}
	if metric != "" {
		query.Set("metric", metric)
	}

	var run domain.Run
	if err := c.do(ctx, http.MethodGet, "/runs/"+escape(runID)+"/best", query, nil, &run); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoBestRun, runID)
		}
		return nil, fmt.Errorf("get best child of run %s: %w", runID, err)
	}
	if run.ParentID == "" {
		run.ParentID = runID
	}
	return &run, nil
}

func (c *Client) DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	query := url.Values{}
	query.Set("path", path)

	var data []byte
	err := c.do(ctx, http.MethodGet, "/runs/"+escape(runID)+"/artifacts/content", query, nil, &data)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrArtifactNotFound, runID, path)
		}
		return nil, fmt.Errorf("download artifact %s of run %s: %w", path, runID, err)
	}
	return data, nil
}

// GetExplanation downloads precomputed global feature importance. raw
// selects input-column importances instead of engineered features.
func (c *Client) GetExplanation(ctx context.Context, runID string, raw bool) (*domain.FeatureImportance, error) {
	query := url.Values{}
	query.Set("raw", strconv.FormatBool(raw))

	var fi domain.FeatureImportance
	err := c.do(ctx, http.MethodGet, "/runs/"+escape(runID)+"/explanations", query, nil, &fi)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrExplanationNotFound, runID)
		}
		return nil, fmt.Errorf("get explanation of run %s: %w", runID, err)
	}
	fi.Raw = raw
	return &fi, nil
}

func (c *Client) CancelRun(ctx context.Context, runID string) error {
	if err := c.do(ctx, http.MethodPost, "/runs/"+escape(runID)+"/cancel", nil, nil, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
		}
		return fmt.Errorf("cancel run %s: %w", runID, err)
	}
	return nil
}
