package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	ev, err := Evaluate([]string{"no", "yes", "no", "yes"}, []any{"no", "yes", "yes", "no"})
	require.NoError(t, err)

	assert.Equal(t, 4, ev.Total)
	assert.Equal(t, 2, ev.Correct)
	assert.InDelta(t, 0.5, ev.Accuracy, 1e-9)
	assert.Equal(t, []string{"no", "yes"}, ev.Classes)
	assert.Equal(t, [][]int{{1, 1}, {1, 1}}, ev.Matrix)
}

func TestEvaluate_NumericLabels(t *testing.T) {
	ev, err := Evaluate([]string{"1", "0", "1.0"}, []any{float64(1), float64(0), "1"})
	require.NoError(t, err)
	assert.Equal(t, 3, ev.Correct)
}

func TestEvaluate_BoolLabels(t *testing.T) {
	ev, err := Evaluate([]string{"True", "FALSE", "true"}, []any{true, false, "False"})
	require.NoError(t, err)
	assert.Equal(t, 2, ev.Correct)
	assert.Equal(t, []string{"false", "true"}, ev.Classes)
}

func TestEvaluate_CountMismatch(t *testing.T) {
	_, err := Evaluate([]string{"no"}, []any{"no", "yes"})
	assert.ErrorIs(t, err, ErrPredictionCountMismatch)
}

func TestEvaluate_Empty(t *testing.T) {
	ev, err := Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, ev.Accuracy)
}

func TestPredictionString(t *testing.T) {
	assert.Equal(t, "", PredictionString(nil))
	assert.Equal(t, "yes", PredictionString("yes"))
	assert.Equal(t, "1", PredictionString(1.0))
	assert.Equal(t, "true", PredictionString(true))
	assert.Equal(t, "3", PredictionString(3))
}
