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

type DeployService struct {
	runs      output.RunClient
	models    output.ModelClient
	deployers map[domain.DeployTarget]output.ServiceDeployer
	outputDir string
	poll      PollConfig
}

func NewDeployService(
	runs output.RunClient,
	models output.ModelClient,
	outputDir string,
	poll PollConfig,
	deployers ...output.ServiceDeployer,
) *DeployService {
	byTarget := make(map[domain.DeployTarget]output.ServiceDeployer, len(deployers))
	for _, d := range deployers {
		if d != nil {
			byTarget[d.Target()] = d
		}
	}
	return &DeployService{
		runs:      runs,
		models:    models,
		deployers: byTarget,
		outputDir: outputDir,
		poll:      poll,
	}
}

// Register registers the best run's model artifact under name.
func (s *DeployService) Register(ctx context.Context, best *domain.Run, name string, tags map[string]string) (*domain.Model, error) {
	merged := map[string]string{
		"run_id":    best.ID,
		"algorithm": best.Algorithm,
	}
	for k, v := range tags {
		merged[k] = v
	}

	spec := domain.ModelSpec{
		Name:         name,
		Description:  fmt.Sprintf("AutoML %s model from run %s", best.Algorithm, best.ID),
		Tags:         merged,
		RunID:        best.ID,
		ArtifactPath: ModelArtifact,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	model, err := s.models.RegisterModel(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("register model: %w", err)
	}

	log.WithFields(log.Fields{
		"model":   model.Name,
		"version": model.Version,
		"run_id":  best.ID,
	}).Info("model registered")

	return model, nil
}

// FetchEntryScript downloads the scoring script generated for the run and
// writes it to the output directory.
func (s *DeployService) FetchEntryScript(ctx context.Context, runID string) (string, string, error) {
	data, err := s.runs.DownloadArtifact(ctx, runID, ScoringScriptArtifact)
	if err != nil {
		return "", "", fmt.Errorf("download scoring script: %w", err)
	}

	path, err := writeOutput(s.outputDir, filepath.Base(ScoringScriptArtifact), data)
	if err != nil {
		return "", "", err
	}

	log.WithFields(log.Fields{"run_id": runID, "path": path}).Info("scoring script downloaded")
	return string(data), path, nil
}

// Deploy creates the web service and waits for it to become healthy.
// An Unhealthy or Failed service is reported with its logs.
func (s *DeployService) Deploy(ctx context.Context, spec domain.DeploySpec) (*domain.WebService, error) {
	if spec.EntryScript == "" && spec.EntryScriptPath != "" {
		data, err := os.ReadFile(spec.EntryScriptPath)
		if err != nil {
			return nil, fmt.Errorf("read entry script: %w", err)
		}
		spec.EntryScript = string(data)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d, err := s.deployer(spec.Target)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"service": spec.Name, "target": spec.Target})
	logger.WithField("models", spec.ModelIDs).Info("deploying web service")

	ws, err := d.Deploy(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("deploy service: %w", err)
	}
	authKey := ws.AuthKey

	err = pollUntil(ctx, s.poll, "service "+spec.Name, func(ctx context.Context) (bool, error) {
		current, err := d.GetService(ctx, spec.Name)
		if err != nil {
			return false, fmt.Errorf("get service: %w", err)
		}
		ws = current
		logger.WithField("state", ws.State).Debug("polled web service")
		return ws.State.IsTerminal(), nil
	})
	if err != nil {
		return nil, err
	}

	if ws.AuthKey == "" {
		ws.AuthKey = authKey
	}

	if !ws.IsHealthy() {
		logs, logErr := d.GetLogs(ctx, spec.Name)
		if logErr != nil {
			logger.WithError(logErr).Warn("failed to fetch deployment logs")
		}
		logger.WithFields(log.Fields{
			"state": ws.State,
			"error": ws.Error,
			"logs":  logs,
		}).Error("deployment did not become healthy")
		return ws, fmt.Errorf("%w: %s is %s: %s", domain.ErrDeploymentFailed, spec.Name, ws.State, ws.Error)
	}

	logger.WithField("scoring_uri", ws.ScoringURI).Info("web service healthy")
	return ws, nil
}

func (s *DeployService) Get(ctx context.Context, target domain.DeployTarget, name string) (*domain.WebService, error) {
	d, err := s.deployer(target)
	if err != nil {
		return nil, err
	}
	return d.GetService(ctx, name)
}

func (s *DeployService) Logs(ctx context.Context, target domain.DeployTarget, name string) (string, error) {
	d, err := s.deployer(target)
	if err != nil {
		return "", err
	}
	return d.GetLogs(ctx, name)
}

func (s *DeployService) Delete(ctx context.Context, target domain.DeployTarget, name string) error {
	d, err := s.deployer(target)
	if err != nil {
		return err
	}
	if err := d.DeleteService(ctx, name); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	log.WithFields(log.Fields{"service": name, "target": target}).Info("web service deleted")
	return nil
}

func (s *DeployService) deployer(target domain.DeployTarget) (output.ServiceDeployer, error) {
	d, ok := s.deployers[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDeployTarget, target)
	}
	return d, nil
}
