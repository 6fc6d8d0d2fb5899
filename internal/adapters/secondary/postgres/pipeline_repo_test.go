package postgres

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

func TestPipelineWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter output.PipelineFilter
		where  string
		args   []interface{}
	}{
		{
			name:  "no filter",
			where: "TRUE",
			args:  []interface{}{},
		},
		{
			name:   "experiment only",
			filter: output.PipelineFilter{Experiment: "automl-classification"},
			where:  "TRUE AND experiment = $1",
			args:   []interface{}{"automl-classification"},
		},
		{
			name:   "status and service",
			filter: output.PipelineFilter{Status: "FAILED", ServiceName: "automl-svc"},
			where:  "TRUE AND status = $1 AND service_name = $2",
			args:   []interface{}{"FAILED", "automl-svc"},
		},
		{
			name: "all fields",
			filter: output.PipelineFilter{
				Status:      "RUNNING",
				Experiment:  "automl-classification",
				ServiceName: "automl-svc",
				Limit:       5,
				Offset:      10,
			},
			where: "TRUE AND status = $1 AND experiment = $2 AND service_name = $3",
			args:  []interface{}{"RUNNING", "automl-classification", "automl-svc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := pipelineWhere(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

// fakeRow hands fixed values to Scan in column order.
type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		if r.values[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func pipelineRowValues(id uuid.UUID, labels []byte) []interface{} {
	now := time.Now()
	score := 0.947
	return []interface{}{
		id, now, now, "sub/rg/ws", "automl-classification", "cpu-cluster",
		"AutoML_1", "AutoML_1_7", "LightGBM", "AUC_weighted", &score,
		"automl-distributed-model", 1, "automl-svc", "http://svc/score", "platform",
		domain.StepScore, "SUCCEEDED", "", nil, labels,
	}
}

func TestScanPipeline(t *testing.T) {
	id := uuid.New()
	p, err := scanPipeline(fakeRow{values: pipelineRowValues(id, []byte(`{"owner":"ml-team"}`))})
	require.NoError(t, err)

	assert.Equal(t, id, p.ID)
	assert.Equal(t, domain.DeployTargetPlatform, p.DeployTarget)
	assert.Equal(t, domain.PipelineSucceeded, p.Status)
	require.NotNil(t, p.BestScore)
	assert.InDelta(t, 0.947, *p.BestScore, 1e-9)
	assert.Nil(t, p.Accuracy)
	assert.Equal(t, map[string]string{"owner": "ml-team"}, p.Labels)
}

func TestScanPipeline_EmptyLabels(t *testing.T) {
	p, err := scanPipeline(fakeRow{values: pipelineRowValues(uuid.New(), nil)})
	require.NoError(t, err)
	assert.NotNil(t, p.Labels)
	assert.Empty(t, p.Labels)
}

func TestScanPipeline_NoRows(t *testing.T) {
	_, err := scanPipeline(fakeRow{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
