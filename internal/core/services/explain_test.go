package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
	"automl-orchestrator/internal/testutil"
)

const summaryJSON = `[
	{"RawFeatureName": "age", "TypeDetected": "Numeric", "Dropped": "No", "EngineeredFeatureCount": 1, "Transformations": ["MeanImputer"]},
	{"RawFeatureName": "job", "TypeDetected": "Categorical", "Dropped": "No", "EngineeredFeatureCount": 12, "Transformations": ["OneHotEncoder"]}
]`

func TestExplainService_FeaturizationSummary(t *testing.T) {
	runs := new(testutil.MockRunClient)
	dir := t.TempDir()
	svc := NewExplainService(runs, dir)

	runs.On("DownloadArtifact", mock.Anything, "best", FeaturizationSummaryArtifact).Return([]byte(summaryJSON), nil)

	summary, path, err := svc.FeaturizationSummary(context.Background(), "best")
	require.NoError(t, err)
	assert.Len(t, summary.Entries, 2)
	assert.Equal(t, 13, summary.EngineeredFeatureCount())
	assert.Equal(t, filepath.Join(dir, "featurization_summary.json"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, summaryJSON, string(written))
}

func TestExplainService_FeaturizationSummary_Invalid(t *testing.T) {
	runs := new(testutil.MockRunClient)
	svc := NewExplainService(runs, t.TempDir())
	runs.On("DownloadArtifact", mock.Anything, "best", FeaturizationSummaryArtifact).Return([]byte(`{"not": "a list"}`), nil)

	_, _, err := svc.FeaturizationSummary(context.Background(), "best")
	assert.ErrorIs(t, err, domain.ErrInvalidFeaturizationData)
}

func TestExplainService_FeatureImportance(t *testing.T) {
	runs := new(testutil.MockRunClient)
	svc := NewExplainService(runs, t.TempDir())

	runs.On("GetExplanation", mock.Anything, "best", true).
		Return(&domain.FeatureImportance{Values: map[string]float64{"duration": 1.2, "nr.employed": 0.4}}, nil)

	imp, err := svc.FeatureImportance(context.Background(), "best", true)
	require.NoError(t, err)
	assert.True(t, imp.Raw)
	assert.Equal(t, "duration", imp.Ranked()[0].Name)
}

func TestExplainService_FeatureImportance_NotFound(t *testing.T) {
	runs := new(testutil.MockRunClient)
	svc := NewExplainService(runs, t.TempDir())
	runs.On("GetExplanation", mock.Anything, "best", false).Return(nil, domain.ErrExplanationNotFound)

	_, err := svc.FeatureImportance(context.Background(), "best", false)
	assert.ErrorIs(t, err, domain.ErrExplanationNotFound)
}
