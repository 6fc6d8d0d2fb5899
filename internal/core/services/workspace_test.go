package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	"automl-orchestrator/internal/testutil"
)

var testRef = domain.WorkspaceRef{SubscriptionID: "sub-1", ResourceGroup: "rg-1", Name: "ws-1"}

func TestWorkspaceService_Bind(t *testing.T) {
	client := new(testutil.MockWorkspaceClient)
	svc := NewWorkspaceService(client)

	client.On("GetWorkspace", mock.Anything).Return(&domain.Workspace{ID: "w1", Name: "ws-1", Location: "eastus"}, nil)
	client.On("GetOrCreateExperiment", mock.Anything, "automl-classification").
		Return(&domain.Experiment{ID: "e1", Name: "automl-classification", WorkspaceName: "ws-1"}, nil)

	ws, exp, err := svc.Bind(context.Background(), testRef, "automl-classification")
	require.NoError(t, err)
	assert.Equal(t, testRef, ws.Ref)
	assert.Equal(t, "automl-classification", exp.Name)
}

func TestWorkspaceService_Bind_Invalid(t *testing.T) {
	svc := NewWorkspaceService(new(testutil.MockWorkspaceClient))

	_, _, err := svc.Bind(context.Background(), domain.WorkspaceRef{Name: "ws-1"}, "exp")
	assert.ErrorIs(t, err, domain.ErrInvalidWorkspace)

	_, _, err = svc.Bind(context.Background(), testRef, "bad name!")
	assert.ErrorIs(t, err, domain.ErrInvalidExperimentName)
}
