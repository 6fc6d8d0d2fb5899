package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline(t *testing.T) {
	p, err := NewPipeline("sub/rg/ws", "automl-exp", "AUC_weighted")
	require.NoError(t, err)
	assert.Equal(t, PipelineRunning, p.Status)
	assert.Equal(t, StepBindWorkspace, p.Stage)
	assert.NotNil(t, p.Labels)

	_, err = NewPipeline("", "automl-exp", "AUC_weighted")
	assert.ErrorIs(t, err, ErrInvalidWorkspace)
	_, err = NewPipeline("ws", "", "AUC_weighted")
	assert.ErrorIs(t, err, ErrInvalidExperimentName)
}

func TestPipeline_Transitions(t *testing.T) {
	p, err := NewPipeline("ws", "exp", "AUC_weighted")
	require.NoError(t, err)

	p.Enter(StepWaitTraining)
	assert.Equal(t, StepWaitTraining, p.Stage)

	p.MarkFailed(errors.New("wait training: run failed"))
	assert.Equal(t, PipelineFailed, p.Status)
	assert.Equal(t, "wait training: run failed", p.LastError)
	assert.Equal(t, StepWaitTraining, p.Stage)

	p.MarkSucceeded()
	assert.Equal(t, PipelineSucceeded, p.Status)
	assert.Empty(t, p.LastError)

	p.MarkCleanedUp()
	assert.Equal(t, PipelineCleanedUp, p.Status)
	assert.Equal(t, StepCleanup, p.Stage)
}

func TestPipelineStatus_IsValid(t *testing.T) {
	assert.True(t, PipelineCleanedUp.IsValid())
	assert.False(t, PipelineStatus("failed").IsValid())
}
