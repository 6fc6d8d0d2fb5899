package platform

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"automl-orchestrator/internal/core/domain"
)

// RegisterModel registers the artifact of a run as a new model version.
func (c *Client) RegisterModel(ctx context.Context, spec domain.ModelSpec) (*domain.Model, error) {
	var m domain.Model
	if err := c.do(ctx, http.MethodPost, "/models", nil, spec, &m); err != nil {
		return nil, fmt.Errorf("register model %s: %w", spec.Name, err)
	}
	if m.Name == "" {
		m.Name = spec.Name
	}
	if m.RunID == "" {
		m.RunID = spec.RunID
	}
	return &m, nil
}

func (c *Client) GetModel(ctx context.Context, name string, version int) (*domain.Model, error) {
	path := "/models/" + escape(name) + "/versions/" + strconv.Itoa(version)

	var m domain.Model
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &m); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s:%d", domain.ErrModelNotFound, name, version)
		}
		return nil, fmt.Errorf("get model %s:%d: %w", name, version, err)
	}
	return &m, nil
}
