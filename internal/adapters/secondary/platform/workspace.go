package platform

import (
	"context"
	"fmt"
	"net/http"

	"automl-orchestrator/internal/core/domain"
)

func (c *Client) GetWorkspace(ctx context.Context) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := c.do(ctx, http.MethodGet, "", nil, nil, &ws); err != nil {
		return nil, fmt.Errorf("get workspace %s: %w", c.ref, err)
	}
	ws.Ref = c.ref
	if ws.Name == "" {
		ws.Name = c.ref.Name
	}
	return &ws, nil
}

// GetOrCreateExperiment is idempotent on the platform side: PUT returns the
// existing experiment when one is already registered under name.
func (c *Client) GetOrCreateExperiment(ctx context.Context, name string) (*domain.Experiment, error) {
	if name == "" {
		return nil, domain.ErrInvalidExperimentName
	}

	var exp domain.Experiment
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPut, "/experiments/"+escape(name), nil, body, &exp); err != nil {
		return nil, fmt.Errorf("put experiment %s: %w", name, err)
	}
	if exp.Name == "" {
		exp.Name = name
	}
	exp.WorkspaceName = c.ref.Name
	return &exp, nil
}
