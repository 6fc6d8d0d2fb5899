package services

import (
	"context"
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

var experimentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,254}$`)

type WorkspaceService struct {
	client output.WorkspaceClient
}

func NewWorkspaceService(client output.WorkspaceClient) *WorkspaceService {
	return &WorkspaceService{client: client}
}

// Bind confirms the workspace exists and returns the named experiment,
// creating it on first use.
func (s *WorkspaceService) Bind(ctx context.Context, ref domain.WorkspaceRef, experimentName string) (*domain.Workspace, *domain.Experiment, error) {
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}
	if !experimentNamePattern.MatchString(experimentName) {
		return nil, nil, domain.ErrInvalidExperimentName
	}

	ws, err := s.client.GetWorkspace(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get workspace: %w", err)
	}
	ws.Ref = ref

	exp, err := s.client.GetOrCreateExperiment(ctx, experimentName)
	if err != nil {
		return nil, nil, fmt.Errorf("get or create experiment: %w", err)
	}

	log.WithFields(log.Fields{
		"workspace":  ws.Name,
		"location":   ws.Location,
		"experiment": exp.Name,
	}).Info("workspace bound")

	return ws, exp, nil
}
