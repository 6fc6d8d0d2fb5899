package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
	"automl-orchestrator/internal/metrics"
)

const finalizeTimeout = 10 * time.Second

// PipelineRequest carries everything one end-to-end orchestration needs.
type PipelineRequest struct {
	Workspace  domain.WorkspaceRef
	Experiment string
	Compute    domain.ComputeSpec
	Datasets   DatasetSources
	// AutoML is completed with the compute target and dataset ids.
	AutoML    domain.AutoMLConfig
	ModelName string
	ModelTags map[string]string
	// Service is completed with the model id, URI and entry script.
	Service     domain.DeploySpec
	SkipDeploy  bool
	KeepService bool
	Labels      map[string]string
}

// PipelineResult collects the handles and outputs of each step.
type PipelineResult struct {
	Pipeline             *domain.Pipeline
	Workspace            *domain.Workspace
	Experiment           *domain.Experiment
	Compute              *domain.ComputeTarget
	Datasets             *domain.DatasetSet
	Run                  *domain.Run
	BestRun              *domain.Run
	Featurization        *domain.FeaturizationSummary
	FeaturizationPath    string
	RawImportance        *domain.FeatureImportance
	EngineeredImportance *domain.FeatureImportance
	Model                *domain.Model
	EntryScriptPath      string
	Service              *domain.WebService
	Scoring              *ScoreResult
}

type PipelineService struct {
	workspace *WorkspaceService
	compute   *ComputeService
	datasets  *DatasetService
	training  *TrainingService
	explain   *ExplainService
	deploy    *DeployService
	scoring   *ScoringService
	repo      output.PipelineRepository
	recorder  metrics.Recorder
}

// NewPipelineService wires the step services. repo may be nil when no
// ledger is configured; recorder may be nil when metrics are off.
func NewPipelineService(
	workspace *WorkspaceService,
	compute *ComputeService,
	datasets *DatasetService,
	training *TrainingService,
	explain *ExplainService,
	deploy *DeployService,
	scoring *ScoringService,
	repo output.PipelineRepository,
	recorder metrics.Recorder,
) *PipelineService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &PipelineService{
		workspace: workspace,
		compute:   compute,
		datasets:  datasets,
		training:  training,
		explain:   explain,
		deploy:    deploy,
		scoring:   scoring,
		repo:      repo,
		recorder:  recorder,
	}
}

// Run executes the steps in order. The first failing step stops the
// pipeline; the partial result is returned with the error.
func (s *PipelineService) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	p, err := domain.NewPipeline(req.Workspace.String(), req.Experiment, req.AutoML.PrimaryMetric)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Labels {
		p.Labels[k] = v
	}
	res := &PipelineResult{Pipeline: p}

	if s.repo != nil {
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("record pipeline: %w", err)
		}
	}
	log.WithFields(log.Fields{
		"pipeline_id": p.ID,
		"workspace":   p.Workspace,
		"experiment":  p.Experiment,
	}).Info("pipeline started")

	err = s.runSteps(ctx, req, res)
	if err != nil {
		p.MarkFailed(err)
		s.recorder.IncPipelineOutcome("failed")
	} else {
		p.MarkSucceeded()
		s.recorder.IncPipelineOutcome("succeeded")
	}
	s.finish(ctx, p)

	if err != nil {
		return res, err
	}
	log.WithFields(log.Fields{
		"pipeline_id": p.ID,
		"best_run":    p.BestRunID,
		"service":     p.ServiceName,
	}).Info("pipeline succeeded")
	return res, nil
}

func (s *PipelineService) runSteps(ctx context.Context, req PipelineRequest, res *PipelineResult) error {
	p := res.Pipeline

	if err := s.step(ctx, p, domain.StepBindWorkspace, func() error {
		ws, exp, err := s.workspace.Bind(ctx, req.Workspace, req.Experiment)
		res.Workspace, res.Experiment = ws, exp
		return err
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepAcquireCompute, func() error {
		target, err := s.compute.GetOrCreate(ctx, req.Compute)
		if err != nil {
			return err
		}
		res.Compute = target
		p.ComputeTarget = target.Name
		return nil
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepRegisterDatasets, func() error {
		set, err := s.datasets.RegisterAll(ctx, req.Datasets.Specs())
		res.Datasets = set
		return err
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepSubmitTraining, func() error {
		cfg := req.AutoML
		cfg.ComputeTarget = res.Compute.Name
		cfg.TrainingDataID = res.Datasets.Training.ID
		if res.Datasets.Validation != nil {
			cfg.ValidationDataID = res.Datasets.Validation.ID
		}
		if cfg.LabelColumn == "" {
			cfg.LabelColumn = req.Datasets.LabelColumn
		}
		run, err := s.training.Submit(ctx, res.Experiment.Name, &cfg, res.Compute)
		if err != nil {
			return err
		}
		res.Run = run
		p.RunID = run.ID
		return nil
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepWaitTraining, func() error {
		run, err := s.training.Wait(ctx, res.Run.ID)
		if run != nil {
			res.Run = run
		}
		return err
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepRetrieveBestRun, func() error {
		best, err := s.training.BestRun(ctx, res.Run.ID, req.AutoML.PrimaryMetric)
		if err != nil {
			return err
		}
		res.BestRun = best
		p.BestRunID = best.ID
		p.BestAlgorithm = best.Algorithm
		if score, ok := best.PrimaryScore(req.AutoML.PrimaryMetric); ok {
			p.BestScore = &score
			s.recorder.SetBestScore(req.AutoML.PrimaryMetric, score)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepFeaturization, func() error {
		summary, path, err := s.explain.FeaturizationSummary(ctx, res.BestRun.ID)
		res.Featurization, res.FeaturizationPath = summary, path
		return err
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepExplanations, func() error {
		raw, err := s.explain.FeatureImportance(ctx, res.BestRun.ID, true)
		if err != nil {
			return err
		}
		engineered, err := s.explain.FeatureImportance(ctx, res.BestRun.ID, false)
		if err != nil {
			return err
		}
		res.RawImportance, res.EngineeredImportance = raw, engineered
		return nil
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepRegisterModel, func() error {
		model, err := s.deploy.Register(ctx, res.BestRun, req.ModelName, req.ModelTags)
		if err != nil {
			return err
		}
		res.Model = model
		p.ModelName = model.Name
		p.ModelVersion = model.Version
		return nil
	}); err != nil {
		return err
	}

	if req.SkipDeploy {
		for _, step := range []string{domain.StepDeployService, domain.StepScore, domain.StepCleanup} {
			s.recorder.IncStepResult(step, metrics.ResultSkipped)
		}
		log.WithField("pipeline_id", p.ID).Info("deployment skipped")
		return nil
	}

	if err := s.step(ctx, p, domain.StepDeployService, func() error {
		script, path, err := s.deploy.FetchEntryScript(ctx, res.BestRun.ID)
		if err != nil {
			return err
		}
		res.EntryScriptPath = path

		spec := req.Service
		spec.ModelIDs = []string{res.Model.ID}
		spec.ModelURI = res.Model.URI
		spec.EntryScript = script
		spec.EntryScriptPath = path
		p.ServiceName = spec.Name
		p.DeployTarget = spec.Target

		ws, err := s.deploy.Deploy(ctx, spec)
		res.Service = ws
		if ws != nil {
			p.ScoringURI = ws.ScoringURI
		}
		return err
	}); err != nil {
		return err
	}

	if err := s.step(ctx, p, domain.StepScore, func() error {
		opts := output.TableOptions{
			LabelColumn:  req.Datasets.LabelColumn,
			FloatColumns: req.Datasets.FloatColumns,
		}
		result, err := s.scoring.ScoreTestSet(ctx, res.Service, req.Datasets.TestURL, opts)
		res.Scoring = result
		if result != nil && result.Evaluation != nil {
			acc := result.Evaluation.Accuracy
			p.Accuracy = &acc
		}
		return err
	}); err != nil {
		return err
	}

	if req.KeepService {
		s.recorder.IncStepResult(domain.StepCleanup, metrics.ResultSkipped)
		return nil
	}

	return s.step(ctx, p, domain.StepCleanup, func() error {
		if err := s.deploy.Delete(ctx, req.Service.Target, req.Service.Name); err != nil {
			return err
		}
		p.ScoringURI = ""
		return nil
	})
}

// step runs fn as the named step, recording it in the ledger and metrics.
func (s *PipelineService) step(ctx context.Context, p *domain.Pipeline, name string, fn func() error) error {
	p.Enter(name)
	s.save(ctx, p)

	logger := log.WithFields(log.Fields{"pipeline_id": p.ID, "step": name})
	logger.Info("step started")
	start := time.Now()

	err := fn()
	elapsed := time.Since(start)
	s.recorder.ObserveStepDuration(name, elapsed)

	if err != nil {
		s.recorder.IncStepResult(name, metrics.ResultFailed)
		logger.WithError(err).WithField("elapsed", elapsed).Error("step failed")
		return fmt.Errorf("%s: %w", strings.ReplaceAll(name, "_", " "), err)
	}

	s.recorder.IncStepResult(name, metrics.ResultSuccess)
	logger.WithField("elapsed", elapsed).Info("step finished")
	return nil
}

// save updates the ledger record. Ledger errors never fail the pipeline.
func (s *PipelineService) save(ctx context.Context, p *domain.Pipeline) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Update(ctx, p); err != nil {
		log.WithError(err).WithField("pipeline_id", p.ID).Warn("failed to update pipeline record")
	}
}

// finish writes the final ledger state and pushes metrics. It outlives a
// cancelled ctx so an interrupted run is still recorded as failed.
func (s *PipelineService) finish(ctx context.Context, p *domain.Pipeline) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if p != nil {
		s.save(ctx, p)
	}
	if err := s.recorder.Push(ctx); err != nil {
		log.WithError(err).Warn("failed to push pipeline metrics")
	}
}

// CleanupRequest names what to tear down. Target is a pipeline id or a
// service name.
type CleanupRequest struct {
	Target        string
	DeployTarget  domain.DeployTarget
	DeleteCompute bool
	ComputeName   string
}

// Cleanup deletes the web service a pipeline deployed and, on request, its
// compute cluster. A service that is already gone is not an error.
func (s *PipelineService) Cleanup(ctx context.Context, req CleanupRequest) (*domain.Pipeline, error) {
	record, err := s.resolveRecord(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	service := req.Target
	target := req.DeployTarget
	compute := req.ComputeName
	if record != nil {
		service = record.ServiceName
		if record.DeployTarget != "" {
			target = record.DeployTarget
		}
		if compute == "" {
			compute = record.ComputeTarget
		}
	}
	if target == "" {
		target = domain.DeployTargetPlatform
	}

	logger := log.WithFields(log.Fields{"service": service, "target": target})
	start := time.Now()

	if service != "" {
		err := s.deploy.Delete(ctx, target, service)
		switch {
		case errors.Is(err, domain.ErrServiceNotFound):
			logger.Info("web service already deleted")
		case err != nil:
			s.recorder.IncStepResult(domain.StepCleanup, metrics.ResultFailed)
			return record, err
		}
	}

	if req.DeleteCompute && compute != "" {
		if err := s.compute.Delete(ctx, compute); err != nil {
			s.recorder.IncStepResult(domain.StepCleanup, metrics.ResultFailed)
			return record, err
		}
	}

	s.recorder.ObserveStepDuration(domain.StepCleanup, time.Since(start))
	s.recorder.IncStepResult(domain.StepCleanup, metrics.ResultSuccess)
	s.recorder.IncPipelineOutcome("cleaned_up")

	if record != nil {
		record.MarkCleanedUp()
		record.ScoringURI = ""
	}
	s.finish(ctx, record)
	return record, nil
}

// resolveRecord finds the ledger record for a pipeline id or service name.
// Without a ledger, or for an unknown service name, it returns nil.
func (s *PipelineService) resolveRecord(ctx context.Context, target string) (*domain.Pipeline, error) {
	id, parseErr := uuid.Parse(target)
	if s.repo == nil {
		if parseErr == nil {
			return nil, fmt.Errorf("cleanup pipeline %s: %w", target, domain.ErrLedgerDisabled)
		}
		return nil, nil
	}

	if parseErr == nil {
		record, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	}

	record, err := s.repo.LatestByService(ctx, target)
	if errors.Is(err, domain.ErrPipelineNotFound) {
		return nil, nil
	}
	return record, err
}

// LedgerService reads recorded pipelines.
type LedgerService struct {
	repo output.PipelineRepository
}

func NewLedgerService(repo output.PipelineRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error) {
	if s.repo == nil {
		return nil, domain.ErrLedgerDisabled
	}
	return s.repo.GetByID(ctx, id)
}

func (s *LedgerService) List(ctx context.Context, filter output.PipelineFilter) ([]*domain.Pipeline, int, error) {
	if s.repo == nil {
		return nil, 0, domain.ErrLedgerDisabled
	}
	if filter.Status != "" && !domain.PipelineStatus(strings.ToUpper(filter.Status)).IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidPipelineFilter, filter.Status)
	}
	filter.Status = strings.ToUpper(filter.Status)
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}
