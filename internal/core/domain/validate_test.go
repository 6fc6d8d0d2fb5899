package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ComputeSpec
		wantErr error
	}{
		{name: "valid", spec: ComputeSpec{Name: "cpu-cluster", MinNodes: 0, MaxNodes: 6}},
		{name: "uppercase", spec: ComputeSpec{Name: "CPU", MaxNodes: 1}, wantErr: ErrInvalidComputeName},
		{name: "too long", spec: ComputeSpec{Name: "a-very-long-cluster-name", MaxNodes: 1}, wantErr: ErrInvalidComputeName},
		{name: "min above max", spec: ComputeSpec{Name: "cpu-cluster", MinNodes: 4, MaxNodes: 2}, wantErr: ErrInvalidNodeCount},
		{name: "no nodes", spec: ComputeSpec{Name: "cpu-cluster", MaxNodes: 0}, wantErr: ErrInvalidNodeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDatasetSpec_Validate(t *testing.T) {
	ok := DatasetSpec{Name: "bank_train", SourceURLs: []string{"https://example.com/train.csv"}}
	assert.NoError(t, ok.Validate())

	assert.ErrorIs(t, DatasetSpec{SourceURLs: ok.SourceURLs}.Validate(), ErrInvalidDatasetName)
	assert.ErrorIs(t, DatasetSpec{Name: "x"}.Validate(), ErrInvalidDatasetURL)
	assert.ErrorIs(t, DatasetSpec{Name: "x", SourceURLs: []string{"/tmp/train.csv"}}.Validate(), ErrInvalidDatasetURL)
}

func TestModelSpec_Validate(t *testing.T) {
	assert.NoError(t, ModelSpec{Name: "automl-distributed-model"}.Validate())
	assert.ErrorIs(t, ModelSpec{Name: "bad name"}.Validate(), ErrInvalidModelName)
}

func TestDeploySpec_Validate(t *testing.T) {
	base := DeploySpec{
		Name:        "automl-distributed-svc",
		Target:      DeployTargetPlatform,
		ModelIDs:    []string{"m:1"},
		EntryScript: "import json",
		CPUCores:    2,
		MemoryGB:    2,
	}
	assert.NoError(t, base.Validate())

	tests := []struct {
		name    string
		mutate  func(s *DeploySpec)
		wantErr error
	}{
		{name: "name", mutate: func(s *DeploySpec) { s.Name = "Svc" }, wantErr: ErrInvalidServiceName},
		{name: "target", mutate: func(s *DeploySpec) { s.Target = "aks" }, wantErr: ErrUnknownDeployTarget},
		{name: "models", mutate: func(s *DeploySpec) { s.ModelIDs = nil }, wantErr: ErrMissingModels},
		{name: "resources", mutate: func(s *DeploySpec) { s.MemoryGB = 0 }, wantErr: ErrInvalidResources},
		{name: "entry script", mutate: func(s *DeploySpec) { s.EntryScript = "" }, wantErr: ErrMissingEntryScript},
		{name: "kserve image", mutate: func(s *DeploySpec) { s.Target = DeployTargetKServe }, wantErr: ErrMissingImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			tt.mutate(&spec)
			assert.ErrorIs(t, spec.Validate(), tt.wantErr)
		})
	}
}

func TestWebService_Transitions(t *testing.T) {
	ws := &WebService{Name: "svc", State: ServiceStateTransitioning}
	assert.False(t, ws.State.IsTerminal())
	assert.False(t, ws.IsHealthy())

	ws.MarkHealthy("http://svc/score")
	assert.True(t, ws.IsHealthy())

	ws.MarkFailed("crash loop")
	assert.True(t, ws.State.IsTerminal())
	assert.False(t, ws.IsHealthy())
	assert.Equal(t, "crash loop", ws.Error)
}
