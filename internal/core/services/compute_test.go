package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	"automl-orchestrator/internal/testutil"
)

var fastPoll = PollConfig{Interval: time.Millisecond, Timeout: time.Second}

func clusterSpec() domain.ComputeSpec {
	return domain.ComputeSpec{Name: "cpu-cluster", VMSize: "STANDARD_DS12_V2", MaxNodes: 6}
}

func TestComputeService_GetOrCreate_Existing(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, fastPoll)

	existing := &domain.ComputeTarget{Name: "cpu-cluster", MaxNodes: 6, ProvisioningState: domain.ProvisioningSucceeded}
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(existing, nil)

	target, err := svc.GetOrCreate(context.Background(), clusterSpec())
	require.NoError(t, err)
	assert.Same(t, existing, target)
	client.AssertNotCalled(t, "CreateCompute", mock.Anything, mock.Anything)
}

func TestComputeService_GetOrCreate_CreatesWhenNotFound(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, fastPoll)

	creating := &domain.ComputeTarget{Name: "cpu-cluster", ProvisioningState: domain.ProvisioningCreating}
	ready := &domain.ComputeTarget{Name: "cpu-cluster", MaxNodes: 6, ProvisioningState: domain.ProvisioningSucceeded}

	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(nil, domain.ErrComputeTargetNotFound).Once()
	client.On("CreateCompute", mock.Anything, clusterSpec()).Return(creating, nil)
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(creating, nil).Once()
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(ready, nil)

	target, err := svc.GetOrCreate(context.Background(), clusterSpec())
	require.NoError(t, err)
	assert.True(t, target.IsReady())
	client.AssertNumberOfCalls(t, "CreateCompute", 1)
}

func TestComputeService_GetOrCreate_ProvisioningFailed(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, fastPoll)

	failed := &domain.ComputeTarget{
		Name:              "cpu-cluster",
		ProvisioningState: domain.ProvisioningFailed,
		Errors:            []string{"quota exceeded"},
	}
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(nil, domain.ErrComputeTargetNotFound).Once()
	client.On("CreateCompute", mock.Anything, mock.AnythingOfType("domain.ComputeSpec")).Return(failed, nil)

	_, err := svc.GetOrCreate(context.Background(), clusterSpec())
	assert.ErrorIs(t, err, domain.ErrComputeProvisioningFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestComputeService_GetOrCreate_OtherErrorPropagates(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, fastPoll)

	boom := errors.New("forbidden")
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(nil, boom)

	_, err := svc.GetOrCreate(context.Background(), clusterSpec())
	assert.ErrorIs(t, err, boom)
	client.AssertNotCalled(t, "CreateCompute", mock.Anything, mock.Anything)
}

func TestComputeService_GetOrCreate_InvalidSpec(t *testing.T) {
	svc := NewComputeService(new(testutil.MockComputeClient), fastPoll)

	_, err := svc.GetOrCreate(context.Background(), domain.ComputeSpec{Name: "CPU", MaxNodes: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidComputeName)
}

func TestComputeService_GetOrCreate_Timeout(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, PollConfig{Interval: time.Millisecond, Timeout: 20 * time.Millisecond})

	creating := &domain.ComputeTarget{Name: "cpu-cluster", ProvisioningState: domain.ProvisioningCreating}
	client.On("GetCompute", mock.Anything, "cpu-cluster").Return(creating, nil)

	_, err := svc.GetOrCreate(context.Background(), clusterSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for compute cpu-cluster")
}

func TestComputeService_Delete(t *testing.T) {
	client := new(testutil.MockComputeClient)
	svc := NewComputeService(client, fastPoll)
	client.On("DeleteCompute", mock.Anything, "cpu-cluster").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), "cpu-cluster"))
	client.AssertExpectations(t)
}
