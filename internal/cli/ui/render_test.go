package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
)

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "-", FormatScore(nil))
	v := 0.912345
	assert.Equal(t, "0.9123", FormatScore(&v))
}

func TestKeyValues_SkipsEmpty(t *testing.T) {
	out := KeyValues([2]string{"Name", "cpu-cluster"}, [2]string{"Error", ""})
	assert.Contains(t, out, "cpu-cluster")
	assert.NotContains(t, out, "Error")
}

func TestTable_Alignment(t *testing.T) {
	out := Table([]string{"A", "B"}, [][]string{{"long-value", "x"}, {"s", "y"}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "x"), strings.Index(lines[2], "y"))
}

func TestRenderImportance_Top(t *testing.T) {
	fi := &domain.FeatureImportance{Values: map[string]float64{
		"duration":    0.5,
		"nr.employed": 0.2,
		"age":         0.1,
	}}
	out := RenderImportance(fi, 2)
	assert.Contains(t, out, "duration")
	assert.Contains(t, out, "nr.employed")
	assert.NotContains(t, out, "age")
	assert.Less(t, strings.Index(out, "duration"), strings.Index(out, "nr.employed"))
}

func TestRenderEvaluation(t *testing.T) {
	ev, err := domain.Evaluate([]string{"no", "yes", "no"}, []any{"no", "no", "no"})
	require.NoError(t, err)

	out := RenderEvaluation(ev)
	assert.Contains(t, out, "0.6667")
	assert.Contains(t, out, "yes")
}

func TestRenderPipelines_Empty(t *testing.T) {
	assert.Contains(t, RenderPipelines(nil), "No pipelines recorded")
}

func TestRenderPipeline(t *testing.T) {
	p, err := domain.NewPipeline("sub/rg/ws", "automl-exp", "AUC_weighted")
	require.NoError(t, err)
	p.ModelName = "automl-distributed-model"
	p.ModelVersion = 2

	out := RenderPipeline(p)
	assert.Contains(t, out, "automl-distributed-model:2")
	assert.Contains(t, out, "RUNNING")
}
