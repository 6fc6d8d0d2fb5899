package domain

import "errors"

// ============================================================================
// Workspace Errors
// ============================================================================

var (
	ErrWorkspaceConfigNotFound = errors.New("workspace config.json not found")
	ErrInvalidWorkspace        = errors.New("workspace subscription, resource group and name are required")
	ErrInvalidExperimentName   = errors.New("experiment name is required")
)

// ============================================================================
// Compute Errors
// ============================================================================

var (
	// ErrComputeTargetNotFound is the one error the orchestration recovers
	// from: it triggers cluster creation.
	ErrComputeTargetNotFound     = errors.New("compute target not found")
	ErrInvalidComputeName        = errors.New("compute name must be 2-16 chars of lowercase letters, digits and '-', starting with a letter")
	ErrInvalidNodeCount          = errors.New("compute node counts must satisfy 0 <= min <= max and max >= 1")
	ErrComputeProvisioningFailed = errors.New("compute provisioning failed")
)

// ============================================================================
// Dataset Errors
// ============================================================================

var (
	ErrInvalidDatasetName  = errors.New("dataset name is required")
	ErrInvalidDatasetURL   = errors.New("dataset requires at least one http(s) source url")
	ErrLabelColumnNotFound = errors.New("label column not found in data")
	ErrEmptyDataset        = errors.New("dataset has no rows")
)

// ============================================================================
// AutoML / Run Errors
// ============================================================================

var (
	ErrUnsupportedTask          = errors.New("only classification tasks are supported")
	ErrInvalidPrimaryMetric     = errors.New("primary metric is not valid for classification")
	ErrInvalidTimeout           = errors.New("experiment_timeout_hours must be at least 0.25")
	ErrInvalidMaxNodes          = errors.New("max_nodes must be >= 1 and fit the compute cluster")
	ErrUnknownModel             = errors.New("allowed model is not a known classification algorithm")
	ErrModelNotDistributable    = errors.New("allowed model does not support distributed training")
	ErrMissingLabelColumn       = errors.New("label column is required")
	ErrMissingTrainingData      = errors.New("training dataset is required")
	ErrMissingComputeTarget     = errors.New("compute target is required")
	ErrInvalidVerbosity         = errors.New("verbosity must be one of debug, info, warning, error")
	ErrRunNotFound              = errors.New("run not found")
	ErrRunFailed                = errors.New("run failed")
	ErrRunCanceled              = errors.New("run canceled")
	ErrNoBestRun                = errors.New("run has no completed child run")
	ErrArtifactNotFound         = errors.New("run artifact not found")
	ErrExplanationNotFound      = errors.New("model explanation not found")
	ErrInvalidFeaturizationData = errors.New("featurization summary is not valid json")
)

// ============================================================================
// Model / Deployment Errors
// ============================================================================

var (
	ErrInvalidModelName     = errors.New("model name must be 1-255 chars of letters, digits, '.', '_' or '-'")
	ErrModelNotFound        = errors.New("model not found")
	ErrInvalidServiceName   = errors.New("service name must be 3-32 chars of lowercase letters, digits and '-', starting with a letter")
	ErrInvalidResources     = errors.New("cpu cores and memory must be positive")
	ErrMissingEntryScript   = errors.New("entry script is required for platform deployments")
	ErrMissingModels        = errors.New("at least one model is required for deployment")
	ErrMissingImage         = errors.New("container image is required for kserve deployments")
	ErrUnknownDeployTarget  = errors.New("unknown deployment target")
	ErrServiceNotFound      = errors.New("web service not found")
	ErrDeploymentFailed     = errors.New("web service deployment failed")
	ErrServiceNotReady      = errors.New("web service has no scoring uri")
	ErrKubernetesNotEnabled = errors.New("kubernetes integration is not enabled")
)

// ============================================================================
// Scoring Errors
// ============================================================================

var (
	ErrScoringFailed           = errors.New("scoring request failed")
	ErrPredictionCountMismatch = errors.New("prediction count does not match label count")
)

// ============================================================================
// Ledger Errors
// ============================================================================

var (
	ErrPipelineNotFound      = errors.New("pipeline not found")
	ErrPipelineExists        = errors.New("pipeline already recorded")
	ErrLedgerDisabled        = errors.New("pipeline ledger is not configured")
	ErrInvalidPipelineFilter = errors.New("invalid pipeline filter")
)
