package platform

import (
	"context"
	"fmt"
	"net/http"

	"automl-orchestrator/internal/core/domain"
)

type computeRequest struct {
	Type       string             `json:"type"`
	Properties domain.ComputeSpec `json:"properties"`
}

func (c *Client) GetCompute(ctx context.Context, name string) (*domain.ComputeTarget, error) {
	var target domain.ComputeTarget
	err := c.do(ctx, http.MethodGet, "/computes/"+escape(name), nil, nil, &target)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrComputeTargetNotFound, name)
		}
		return nil, fmt.Errorf("get compute %s: %w", name, err)
	}
	if target.Name == "" {
		target.Name = name
	}
	return &target, nil
}

// CreateCompute starts provisioning; the returned target is usually still
// Creating.
func (c *Client) CreateCompute(ctx context.Context, spec domain.ComputeSpec) (*domain.ComputeTarget, error) {
	req := computeRequest{Type: "AmlCompute", Properties: spec}

	var target domain.ComputeTarget
	if err := c.do(ctx, http.MethodPut, "/computes/"+escape(spec.Name), nil, req, &target); err != nil {
		return nil, fmt.Errorf("create compute %s: %w", spec.Name, err)
	}
	if target.Name == "" {
		target.Name = spec.Name
	}
	if target.ProvisioningState == "" {
		target.ProvisioningState = domain.ProvisioningCreating
	}
	return &target, nil
}

func (c *Client) DeleteCompute(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/computes/"+escape(name), nil, nil, nil)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", domain.ErrComputeTargetNotFound, name)
		}
		return fmt.Errorf("delete compute %s: %w", name, err)
	}
	return nil
}
