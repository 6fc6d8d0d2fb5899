package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/config"
	"automl-orchestrator/internal/core/domain"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return &app{cfg: cfg}
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "compute", "datasets", "train", "explain", "deploy", "score", "cleanup", "history", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "automlctl version "+version+"\n", buf.String())
}

func TestArgsValidation(t *testing.T) {
	assert.Error(t, explainCmd.Args(explainCmd, nil))
	assert.NoError(t, explainCmd.Args(explainCmd, []string{"AutoML_1_3"}))
	assert.Error(t, cleanupCmd.Args(cleanupCmd, []string{"a", "b"}))
	assert.NoError(t, historyCmd.Args(historyCmd, nil))
	assert.Error(t, runCmd.Args(runCmd, []string{"extra"}))
}

func TestApp_DeployTarget(t *testing.T) {
	a := testApp(t)

	target, err := a.deployTarget("")
	require.NoError(t, err)
	assert.Equal(t, domain.DeployTargetPlatform, target)

	target, err = a.deployTarget("kserve")
	require.NoError(t, err)
	assert.Equal(t, domain.DeployTargetKServe, target)

	_, err = a.deployTarget("aks")
	assert.ErrorIs(t, err, domain.ErrUnknownDeployTarget)
}

func TestApp_ComputeSpec(t *testing.T) {
	a := testApp(t)
	a.cfg.Compute.IdleScaleDown = 30 * time.Minute

	spec := a.computeSpec()
	assert.Equal(t, "cpu-cluster", spec.Name)
	assert.Equal(t, 1800, spec.IdleSecondsBeforeScaleDown)
	assert.NoError(t, spec.Validate())
}

func TestApp_AutoMLConfig(t *testing.T) {
	a := testApp(t)

	cfg := a.automlConfig()
	assert.Equal(t, domain.TaskClassification, cfg.Task)
	assert.Equal(t, "y", cfg.LabelColumn)
	assert.Equal(t, []string{"LightGBM"}, cfg.AllowedModels)
	assert.True(t, cfg.UseDistributed)
}

func TestApp_DatasetSources(t *testing.T) {
	a := testApp(t)

	specs := a.datasetSources().Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, "bankmarketing_train", specs[0].Name)
	assert.Equal(t, []string{"duration"}, specs[0].FloatColumns)
}

func TestApp_DeploySpec(t *testing.T) {
	a := testApp(t)

	spec := a.deploySpec(domain.DeployTargetPlatform, "")
	assert.Equal(t, "automl-distributed-svc", spec.Name)
	assert.InDelta(t, 2.0, spec.CPUCores, 1e-9)

	spec = a.deploySpec(domain.DeployTargetKServe, "bank-svc")
	assert.Equal(t, "bank-svc", spec.Name)
	assert.Equal(t, domain.DeployTargetKServe, spec.Target)
}
