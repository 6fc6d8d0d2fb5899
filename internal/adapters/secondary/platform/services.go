package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"automl-orchestrator/internal/core/domain"
)

type serviceRequest struct {
	ComputeType string            `json:"compute_type"`
	ModelIDs    []string          `json:"model_ids"`
	EntryScript string            `json:"entry_script"`
	Environment string            `json:"environment,omitempty"`
	CPUCores    float64           `json:"cpu_cores"`
	MemoryGB    float64           `json:"memory_gb"`
	AuthEnabled bool              `json:"auth_enabled"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type serviceResponse struct {
	Name       string `json:"name"`
	ID         string `json:"id"`
	State      string `json:"state"`
	ScoringURI string `json:"scoring_uri"`
	SwaggerURI string `json:"swagger_uri"`
	Error      string `json:"error"`
	PrimaryKey string `json:"primary_key"`
}

func (r *serviceResponse) toDomain() *domain.WebService {
	return &domain.WebService{
		Name:       r.Name,
		Target:     domain.DeployTargetPlatform,
		ExternalID: r.ID,
		State:      domain.ServiceState(r.State),
		ScoringURI: r.ScoringURI,
		SwaggerURI: r.SwaggerURI,
		Error:      r.Error,
		AuthKey:    r.PrimaryKey,
		UpdatedAt:  time.Now(),
	}
}

func (c *Client) Target() domain.DeployTarget {
	return domain.DeployTargetPlatform
}

// Deploy asks the platform to build a container around the models and the
// entry script and expose it over HTTP. The image build and networking are
// remote.
func (c *Client) Deploy(ctx context.Context, spec domain.DeploySpec) (*domain.WebService, error) {
	req := serviceRequest{
		ComputeType: "ContainerInstance",
		ModelIDs:    spec.ModelIDs,
		EntryScript: spec.EntryScript,
		Environment: spec.Environment,
		CPUCores:    spec.CPUCores,
		MemoryGB:    spec.MemoryGB,
		AuthEnabled: spec.AuthEnabled,
		Tags:        spec.Tags,
	}

	var resp serviceResponse
	if err := c.do(ctx, http.MethodPut, "/services/"+escape(spec.Name), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("deploy service %s: %w", spec.Name, err)
	}
	if resp.Name == "" {
		resp.Name = spec.Name
	}
	if resp.State == "" {
		resp.State = string(domain.ServiceStateTransitioning)
	}
	return resp.toDomain(), nil
}

func (c *Client) GetService(ctx context.Context, name string) (*domain.WebService, error) {
	var resp serviceResponse
	if err := c.do(ctx, http.MethodGet, "/services/"+escape(name), nil, nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, name)
		}
		return nil, fmt.Errorf("get service %s: %w", name, err)
	}
	if resp.Name == "" {
		resp.Name = name
	}
	return resp.toDomain(), nil
}

func (c *Client) DeleteService(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/services/"+escape(name), nil, nil, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, name)
		}
		return fmt.Errorf("delete service %s: %w", name, err)
	}
	return nil
}

func (c *Client) GetLogs(ctx context.Context, name string) (string, error) {
	var data []byte
	if err := c.do(ctx, http.MethodGet, "/services/"+escape(name)+"/logs", nil, nil, &data); err != nil {
		return "", fmt.Errorf("get logs of service %s: %w", name, err)
	}
	return string(data), nil
}
