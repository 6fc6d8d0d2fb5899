package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
	"automl-orchestrator/internal/metrics"
	"automl-orchestrator/internal/testutil"
)

type pipelineFixture struct {
	workspace *testutil.MockWorkspaceClient
	compute   *testutil.MockComputeClient
	datasets  *testutil.MockDatasetClient
	runs      *testutil.MockRunClient
	models    *testutil.MockModelClient
	deployer  *testutil.MockServiceDeployer
	source    *testutil.MockTabularSource
	scorer    *testutil.MockScoringClient
	repo      *testutil.MockPipelineRepo
	recorder  *stepRecorder
	svc       *PipelineService
}

type stepRecorder struct {
	results  map[string]string
	outcomes []string
	best     map[string]float64
	pushes   int
	pushCtx  error
}

func newStepRecorder() *stepRecorder {
	return &stepRecorder{results: map[string]string{}, best: map[string]float64{}}
}

func (r *stepRecorder) ObserveStepDuration(string, time.Duration) {}

func (r *stepRecorder) IncStepResult(step string, result metrics.ResultLabel) {
	r.results[step] = string(result)
}

func (r *stepRecorder) IncPipelineOutcome(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *stepRecorder) SetBestScore(metric string, score float64) {
	r.best[metric] = score
}

func (r *stepRecorder) Push(ctx context.Context) error {
	r.pushes++
	r.pushCtx = ctx.Err()
	return ctx.Err()
}

func newPipelineFixture(t *testing.T, withLedger bool) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		workspace: new(testutil.MockWorkspaceClient),
		compute:   new(testutil.MockComputeClient),
		datasets:  new(testutil.MockDatasetClient),
		runs:      new(testutil.MockRunClient),
		models:    new(testutil.MockModelClient),
		deployer:  new(testutil.MockServiceDeployer),
		source:    new(testutil.MockTabularSource),
		scorer:    new(testutil.MockScoringClient),
		recorder:  newStepRecorder(),
	}
	var repo output.PipelineRepository
	if withLedger {
		f.repo = new(testutil.MockPipelineRepo)
		repo = f.repo
	}
	dir := t.TempDir()
	f.svc = NewPipelineService(
		NewWorkspaceService(f.workspace),
		NewComputeService(f.compute, fastPoll),
		NewDatasetService(f.datasets),
		NewTrainingService(f.runs, fastPoll),
		NewExplainService(f.runs, dir),
		NewDeployService(f.runs, f.models, dir, fastPoll, f.deployer),
		NewScoringService(f.source, f.scorer),
		repo,
		f.recorder,
	)
	return f
}

func testPipelineRequest() PipelineRequest {
	return PipelineRequest{
		Workspace:  testRef,
		Experiment: "automl-classification",
		Compute:    clusterSpec(),
		Datasets:   testSources(),
		AutoML:     *testAutoMLConfig(),
		ModelName:  "automl-distributed-model",
		Service: domain.DeploySpec{
			Name:     "automl-distributed-svc",
			Target:   domain.DeployTargetPlatform,
			CPUCores: 2,
			MemoryGB: 2,
		},
	}
}

// expectThroughTraining sets up bind, compute, datasets and a completed run.
func (f *pipelineFixture) expectThroughTraining() {
	f.workspace.On("GetWorkspace", mock.Anything).Return(&domain.Workspace{Name: "ws-1"}, nil)
	f.workspace.On("GetOrCreateExperiment", mock.Anything, "automl-classification").
		Return(&domain.Experiment{Name: "automl-classification"}, nil)
	f.compute.On("GetCompute", mock.Anything, "cpu-cluster").Return(testCluster(), nil)
	f.datasets.On("RegisterDataset", mock.Anything, mock.AnythingOfType("domain.DatasetSpec")).
		Return(&domain.Dataset{ID: "ds-1", Name: "bankmarketing", Version: 1}, nil)
	f.runs.On("SubmitAutoML", mock.Anything, "automl-classification", mock.MatchedBy(func(cfg *domain.AutoMLConfig) bool {
		return cfg.ComputeTarget == "cpu-cluster" && cfg.TrainingDataID == "ds-1" && cfg.ValidationDataID == "ds-1"
	})).Return(&domain.Run{ID: "AutoML_1", Status: domain.RunStatusNotStarted}, nil)
	f.runs.On("GetRun", mock.Anything, "AutoML_1").Return(&domain.Run{ID: "AutoML_1", Status: domain.RunStatusCompleted}, nil)
	f.runs.On("GetBestChildRun", mock.Anything, "AutoML_1", "AUC_weighted").
		Return(&domain.Run{ID: "AutoML_1_3", Algorithm: "LightGBM", Metrics: map[string]float64{"AUC_weighted": 0.947}}, nil)
	f.runs.On("DownloadArtifact", mock.Anything, "AutoML_1_3", FeaturizationSummaryArtifact).Return([]byte(summaryJSON), nil)
	f.runs.On("GetExplanation", mock.Anything, "AutoML_1_3", true).
		Return(&domain.FeatureImportance{Values: map[string]float64{"duration": 1.1}}, nil)
	f.runs.On("GetExplanation", mock.Anything, "AutoML_1_3", false).
		Return(&domain.FeatureImportance{Values: map[string]float64{"duration_MeanImputer": 1.1}}, nil)
	f.models.On("RegisterModel", mock.Anything, mock.AnythingOfType("domain.ModelSpec")).
		Return(&domain.Model{ID: "automl-distributed-model:1", Name: "automl-distributed-model", Version: 1, URI: "models:/automl-distributed-model/1"}, nil)
}

func (f *pipelineFixture) expectDeployAndScore() {
	f.runs.On("DownloadArtifact", mock.Anything, "AutoML_1_3", ScoringScriptArtifact).Return([]byte("def run(data): pass"), nil)
	f.deployer.On("Deploy", mock.Anything, mock.MatchedBy(func(spec domain.DeploySpec) bool {
		return spec.EntryScript == "def run(data): pass" && spec.ModelIDs[0] == "automl-distributed-model:1"
	})).Return(&domain.WebService{Name: "automl-distributed-svc", State: domain.ServiceStateTransitioning}, nil)
	f.deployer.On("GetService", mock.Anything, "automl-distributed-svc").Return(healthyService(), nil)
	f.source.On("Load", mock.Anything, testSources().TestURL, mock.Anything).Return(testBatch(), nil)
	f.scorer.On("Score", mock.Anything, "http://svc/score", "key", mock.Anything).Return([]any{"no", "yes", "no"}, nil)
}

func TestPipelineService_Run(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.expectThroughTraining()
	f.expectDeployAndScore()
	f.deployer.On("DeleteService", mock.Anything, "automl-distributed-svc").Return(nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Pipeline")).Return(nil)
	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Pipeline")).Return(nil)

	res, err := f.svc.Run(context.Background(), testPipelineRequest())
	require.NoError(t, err)

	p := res.Pipeline
	assert.Equal(t, domain.PipelineSucceeded, p.Status)
	assert.Equal(t, domain.StepCleanup, p.Stage)
	assert.Equal(t, "AutoML_1", p.RunID)
	assert.Equal(t, "AutoML_1_3", p.BestRunID)
	require.NotNil(t, p.BestScore)
	assert.InDelta(t, 0.947, *p.BestScore, 1e-9)
	require.NotNil(t, p.Accuracy)
	assert.Equal(t, 1.0, *p.Accuracy)
	assert.Empty(t, p.ScoringURI)

	assert.Len(t, res.Scoring.Predictions, 3)
	assert.Equal(t, "duration", res.RawImportance.Ranked()[0].Name)
	assert.Equal(t, "success", f.recorder.results[domain.StepCleanup])
	assert.Equal(t, []string{"succeeded"}, f.recorder.outcomes)
	assert.Equal(t, 1, f.recorder.pushes)
	f.deployer.AssertCalled(t, "DeleteService", mock.Anything, "automl-distributed-svc")
}

func TestPipelineService_Run_KeepService(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expectThroughTraining()
	f.expectDeployAndScore()

	req := testPipelineRequest()
	req.KeepService = true

	res, err := f.svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "http://svc/score", res.Pipeline.ScoringURI)
	assert.Equal(t, "skipped", f.recorder.results[domain.StepCleanup])
	f.deployer.AssertNotCalled(t, "DeleteService", mock.Anything, mock.Anything)
}

func TestPipelineService_Run_SkipDeploy(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.expectThroughTraining()

	req := testPipelineRequest()
	req.SkipDeploy = true

	res, err := f.svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Model.Version)
	assert.Nil(t, res.Service)
	assert.Equal(t, "skipped", f.recorder.results[domain.StepDeployService])
	f.deployer.AssertNotCalled(t, "Deploy", mock.Anything, mock.Anything)
}

func TestPipelineService_Run_StopsAtFirstFailure(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.workspace.On("GetWorkspace", mock.Anything).Return(&domain.Workspace{Name: "ws-1"}, nil)
	f.workspace.On("GetOrCreateExperiment", mock.Anything, mock.Anything).Return(&domain.Experiment{Name: "automl-classification"}, nil)
	f.compute.On("GetCompute", mock.Anything, "cpu-cluster").Return(testCluster(), nil)
	f.datasets.On("RegisterDataset", mock.Anything, mock.Anything).Return(&domain.Dataset{ID: "ds-1"}, nil)
	f.runs.On("SubmitAutoML", mock.Anything, mock.Anything, mock.Anything).Return(&domain.Run{ID: "AutoML_1"}, nil)
	f.runs.On("GetRun", mock.Anything, "AutoML_1").Return(&domain.Run{ID: "AutoML_1", Status: domain.RunStatusFailed, Error: "out of memory"}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Run(context.Background(), testPipelineRequest())
	assert.ErrorIs(t, err, domain.ErrRunFailed)
	assert.Contains(t, err.Error(), "wait training")
	require.NotNil(t, res)
	assert.Equal(t, domain.PipelineFailed, res.Pipeline.Status)
	assert.Equal(t, domain.StepWaitTraining, res.Pipeline.Stage)
	assert.Contains(t, res.Pipeline.LastError, "out of memory")
	assert.Equal(t, "failed", f.recorder.results[domain.StepWaitTraining])
	assert.Equal(t, []string{"failed"}, f.recorder.outcomes)
	f.runs.AssertNotCalled(t, "GetBestChildRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipelineService_Run_LedgerUpdateErrorsAreNotFatal(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.expectThroughTraining()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	req := testPipelineRequest()
	req.SkipDeploy = true

	_, err := f.svc.Run(context.Background(), req)
	assert.NoError(t, err)
}

// ctxRepo fails writes on a done context the way pgx does.
type ctxRepo struct {
	output.PipelineRepository
	statuses []domain.PipelineStatus
}

func (r *ctxRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	return ctx.Err()
}

func (r *ctxRepo) Update(ctx context.Context, p *domain.Pipeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.statuses = append(r.statuses, p.Status)
	return nil
}

func TestPipelineService_Run_RecordsFailureAfterCancel(t *testing.T) {
	f := newPipelineFixture(t, false)
	repo := &ctxRepo{}
	f.svc.repo = repo

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.workspace.On("GetWorkspace", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	res, err := f.svc.Run(ctx, testPipelineRequest())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, domain.PipelineFailed, res.Pipeline.Status)
	require.NotEmpty(t, repo.statuses)
	assert.Equal(t, domain.PipelineFailed, repo.statuses[len(repo.statuses)-1])
	assert.Equal(t, 1, f.recorder.pushes)
	assert.NoError(t, f.recorder.pushCtx)
}

func TestPipelineService_Cleanup_ByPipelineID(t *testing.T) {
	f := newPipelineFixture(t, true)
	id := uuid.New()
	record := &domain.Pipeline{
		ID:            id,
		ServiceName:   "automl-distributed-svc",
		DeployTarget:  domain.DeployTargetPlatform,
		ComputeTarget: "cpu-cluster",
		Status:        domain.PipelineSucceeded,
		ScoringURI:    "http://svc/score",
	}
	f.repo.On("GetByID", mock.Anything, id).Return(record, nil)
	f.repo.On("Update", mock.Anything, record).Return(nil)
	f.deployer.On("DeleteService", mock.Anything, "automl-distributed-svc").Return(nil)
	f.compute.On("DeleteCompute", mock.Anything, "cpu-cluster").Return(nil)

	got, err := f.svc.Cleanup(context.Background(), CleanupRequest{Target: id.String(), DeleteCompute: true})
	require.NoError(t, err)
	assert.Equal(t, domain.PipelineCleanedUp, got.Status)
	assert.Empty(t, got.ScoringURI)
	f.compute.AssertCalled(t, "DeleteCompute", mock.Anything, "cpu-cluster")
}

func TestPipelineService_Cleanup_ByServiceNameWithoutLedger(t *testing.T) {
	f := newPipelineFixture(t, false)
	f.deployer.On("DeleteService", mock.Anything, "automl-distributed-svc").Return(domain.ErrServiceNotFound)

	got, err := f.svc.Cleanup(context.Background(), CleanupRequest{Target: "automl-distributed-svc"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{"cleaned_up"}, f.recorder.outcomes)
}

func TestPipelineService_Cleanup_PipelineIDWithoutLedger(t *testing.T) {
	f := newPipelineFixture(t, false)

	_, err := f.svc.Cleanup(context.Background(), CleanupRequest{Target: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrLedgerDisabled)
}

func TestPipelineService_Cleanup_DeleteFails(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.repo.On("LatestByService", mock.Anything, "automl-distributed-svc").Return(nil, domain.ErrPipelineNotFound)
	f.deployer.On("DeleteService", mock.Anything, "automl-distributed-svc").Return(errors.New("forbidden"))

	_, err := f.svc.Cleanup(context.Background(), CleanupRequest{Target: "automl-distributed-svc"})
	require.Error(t, err)
	assert.Equal(t, "failed", f.recorder.results[domain.StepCleanup])
}

func TestLedgerService(t *testing.T) {
	repo := new(testutil.MockPipelineRepo)
	svc := NewLedgerService(repo)

	repo.On("List", mock.Anything, output.PipelineFilter{Status: "FAILED", Limit: 20}).
		Return([]*domain.Pipeline{{ID: uuid.New()}}, 1, nil)

	items, total, err := svc.List(context.Background(), output.PipelineFilter{Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)

	_, _, err = svc.List(context.Background(), output.PipelineFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidPipelineFilter)

	_, err = NewLedgerService(nil).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrLedgerDisabled)
}
