package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/adapters/secondary/kserve"
	"automl-orchestrator/internal/adapters/secondary/platform"
	"automl-orchestrator/internal/adapters/secondary/postgres"
	"automl-orchestrator/internal/adapters/secondary/scoring"
	"automl-orchestrator/internal/adapters/secondary/tabular"
	"automl-orchestrator/internal/config"
	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
	"automl-orchestrator/internal/core/services"
	"automl-orchestrator/internal/metrics"
)

// app holds the wired services one command invocation uses.
type app struct {
	cfg *config.Config
	ref domain.WorkspaceRef

	pool     *pgxpool.Pool
	recorder metrics.Recorder

	workspace *services.WorkspaceService
	compute   *services.ComputeService
	datasets  *services.DatasetService
	training  *services.TrainingService
	explain   *services.ExplainService
	deploy    *services.DeployService
	scoring   *services.ScoringService
	pipeline  *services.PipelineService
	ledger    *services.LedgerService
}

// commandContext is cancelled on SIGINT/SIGTERM so long polls stop cleanly.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if workspaceConfig != "" {
		cfg.Workspace.ConfigPath = workspaceConfig
	}
	initLogger(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// newApp loads configuration and wires every adapter and service.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working dir: %w", err)
	}
	ref, err := config.ResolveWorkspace(cfg.Workspace, cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}

	client, err := platform.NewClient(ctx, &cfg.Platform, ref)
	if err != nil {
		return nil, fmt.Errorf("create platform client: %w", err)
	}

	deployers := []output.ServiceDeployer{client}
	if cfg.Kubernetes.Enabled {
		kc, err := kserve.NewKServeClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("KServe client init failed (continuing without K8s integration): %v", err)
		} else {
			deployers = append(deployers, kserve.NewDeployer(kc, cfg.Deploy.Namespace))
			log.Debug("KServe deployer initialized")
		}
	}

	a := &app{cfg: cfg, ref: ref, recorder: metrics.NoopRecorder{}}

	var repo output.PipelineRepository
	if cfg.Database.Enabled {
		pool, err := newPool(ctx, cfg.Database)
		if err != nil {
			log.WithError(err).Warn("pipeline ledger unavailable, continuing without it")
		} else {
			a.pool = pool
			repo = postgres.NewPipelineRepository(pool)
		}
	}

	if cfg.Metrics.PushgatewayURL != "" {
		a.recorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry()).
			WithPushgateway(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job)
	}

	interval := cfg.Platform.PollInterval
	a.workspace = services.NewWorkspaceService(client)
	a.compute = services.NewComputeService(client, services.PollConfig{Interval: interval, Timeout: cfg.Compute.ProvisionTimeout})
	a.datasets = services.NewDatasetService(client)
	a.training = services.NewTrainingService(client, services.PollConfig{Interval: interval, Timeout: cfg.AutoML.RunTimeout})
	a.explain = services.NewExplainService(client, cfg.Data.OutputDir)
	a.deploy = services.NewDeployService(client, client, cfg.Data.OutputDir,
		services.PollConfig{Interval: interval, Timeout: cfg.Deploy.Timeout}, deployers...)
	a.scoring = services.NewScoringService(tabular.NewCSVSource(cfg.Platform.Timeout), scoring.NewScoringClient(cfg.Platform.Timeout))
	a.pipeline = services.NewPipelineService(a.workspace, a.compute, a.datasets, a.training,
		a.explain, a.deploy, a.scoring, repo, a.recorder)
	a.ledger = services.NewLedgerService(repo)

	log.WithFields(log.Fields{
		"workspace": ref.String(),
		"endpoint":  cfg.Platform.Endpoint,
		"ledger":    repo != nil,
	}).Debug("automlctl wired")

	return a, nil
}

// newLedgerApp wires only the ledger, for commands that never touch the
// platform.
func newLedgerApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a := &app{cfg: cfg, recorder: metrics.NoopRecorder{}}

	var repo output.PipelineRepository
	if cfg.Database.Enabled {
		pool, err := newPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect ledger db: %w", err)
		}
		a.pool = pool
		repo = postgres.NewPipelineRepository(pool)
	}
	a.ledger = services.NewLedgerService(repo)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// deployTarget resolves a --target flag against the configured default.
func (a *app) deployTarget(flag string) (domain.DeployTarget, error) {
	raw := flag
	if raw == "" {
		raw = a.cfg.Deploy.Target
	}
	target := domain.DeployTarget(raw)
	if !target.IsValid() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownDeployTarget, raw)
	}
	return target, nil
}

func (a *app) computeSpec() domain.ComputeSpec {
	return domain.ComputeSpec{
		Name:                       a.cfg.Compute.Name,
		VMSize:                     a.cfg.Compute.VMSize,
		MinNodes:                   a.cfg.Compute.MinNodes,
		MaxNodes:                   a.cfg.Compute.MaxNodes,
		IdleSecondsBeforeScaleDown: int(a.cfg.Compute.IdleScaleDown.Seconds()),
	}
}

func (a *app) datasetSources() services.DatasetSources {
	return services.DatasetSources{
		Prefix:       a.cfg.Data.DatasetPrefix,
		TrainURL:     a.cfg.Data.TrainURL,
		ValidateURL:  a.cfg.Data.ValidateURL,
		TestURL:      a.cfg.Data.TestURL,
		LabelColumn:  a.cfg.Data.LabelColumn,
		FloatColumns: a.cfg.Data.FloatColumns,
	}
}

func (a *app) tableOptions() output.TableOptions {
	return output.TableOptions{
		LabelColumn:  a.cfg.Data.LabelColumn,
		FloatColumns: a.cfg.Data.FloatColumns,
	}
}

func (a *app) automlConfig() domain.AutoMLConfig {
	c := a.cfg.AutoML
	return domain.AutoMLConfig{
		Task:                   c.Task,
		PrimaryMetric:          c.PrimaryMetric,
		UseDistributed:         c.UseDistributed,
		MaxNodes:               c.MaxNodes,
		AllowedModels:          c.AllowedModels,
		ExperimentTimeoutHours: c.ExperimentTimeoutHours,
		Verbosity:              c.Verbosity,
		LabelColumn:            a.cfg.Data.LabelColumn,
		EnableEarlyStopping:    c.EnableEarlyStopping,
		Featurization:          c.Featurization,
	}
}

// deploySpec is the configured service definition; models and the entry
// script are filled in once a model is registered.
func (a *app) deploySpec(target domain.DeployTarget, name string) domain.DeploySpec {
	if name == "" {
		name = a.cfg.Deploy.ServiceName
	}
	return domain.DeploySpec{
		Name:        name,
		Target:      target,
		Image:       a.cfg.Deploy.Image,
		CPUCores:    a.cfg.Deploy.CPUCores,
		MemoryGB:    a.cfg.Deploy.MemoryGB,
		AuthEnabled: a.cfg.Deploy.AuthEnabled,
		Tags:        map[string]string{"experiment": a.cfg.Workspace.Experiment},
	}
}
