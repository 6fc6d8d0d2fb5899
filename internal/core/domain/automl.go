package domain

import "strings"

const TaskClassification = "classification"

// ClassificationMetrics are the primary metrics the platform accepts for
// classification experiments.
var ClassificationMetrics = map[string]bool{
	"accuracy":                         true,
	"AUC_weighted":                     true,
	"average_precision_score_weighted": true,
	"norm_macro_recall":                true,
	"precision_score_weighted":         true,
}

// ClassificationModels lists the algorithm names accepted in allowed_models.
var ClassificationModels = map[string]bool{
	"AveragedPerceptronClassifier": true,
	"BernoulliNaiveBayes":          true,
	"DecisionTree":                 true,
	"ExtremeRandomTrees":           true,
	"GradientBoosting":             true,
	"KNN":                          true,
	"LightGBM":                     true,
	"LinearSVM":                    true,
	"LogisticRegression":           true,
	"MultinomialNaiveBayes":        true,
	"RandomForest":                 true,
	"SGD":                          true,
	"SVM":                          true,
	"TabnetClassifier":             true,
	"XGBoostClassifier":            true,
}

// DistributedModels can train across several nodes.
var DistributedModels = map[string]bool{
	"LightGBM":          true,
	"XGBoostClassifier": true,
}

var verbosityLevels = map[string]int{
	"debug":   10,
	"info":    20,
	"warning": 30,
	"error":   40,
}

const MinExperimentTimeoutHours = 0.25

// AutoMLConfig is the declarative job configuration submitted to the
// platform. Training itself is entirely remote.
type AutoMLConfig struct {
	Task                   string   `json:"task"`
	PrimaryMetric          string   `json:"primary_metric"`
	UseDistributed         bool     `json:"use_distributed"`
	MaxNodes               int      `json:"max_nodes"`
	AllowedModels          []string `json:"allowed_models"`
	ExperimentTimeoutHours float64  `json:"experiment_timeout_hours"`
	Verbosity              string   `json:"-"`
	LabelColumn            string   `json:"label_column_name"`
	ComputeTarget          string   `json:"compute_target"`
	TrainingDataID         string   `json:"training_data"`
	ValidationDataID       string   `json:"validation_data,omitempty"`
	EnableEarlyStopping    bool     `json:"enable_early_stopping"`
	Featurization          string   `json:"featurization,omitempty"`
}

// Validate checks the configuration against the cluster it will run on.
// compute may be nil when the cluster is not known yet.
func (c *AutoMLConfig) Validate(compute *ComputeTarget) error {
	if c.Task != TaskClassification {
		return ErrUnsupportedTask
	}
	if !ClassificationMetrics[c.PrimaryMetric] {
		return ErrInvalidPrimaryMetric
	}
	if c.ExperimentTimeoutHours < MinExperimentTimeoutHours {
		return ErrInvalidTimeout
	}
	if c.MaxNodes < 1 {
		return ErrInvalidMaxNodes
	}
	if _, ok := verbosityLevels[strings.ToLower(c.Verbosity)]; !ok {
		return ErrInvalidVerbosity
	}
	for _, m := range c.AllowedModels {
		if !ClassificationModels[m] {
			return ErrUnknownModel
		}
		if c.UseDistributed && !DistributedModels[m] {
			return ErrModelNotDistributable
		}
	}
	if c.UseDistributed && compute != nil && c.MaxNodes > compute.MaxNodes {
		return ErrInvalidMaxNodes
	}
	if strings.TrimSpace(c.LabelColumn) == "" {
		return ErrMissingLabelColumn
	}
	if c.ComputeTarget == "" {
		return ErrMissingComputeTarget
	}
	if c.TrainingDataID == "" {
		return ErrMissingTrainingData
	}
	return nil
}

// VerbosityLevel maps the verbosity name to the numeric level the platform
// expects. Unknown names map to info.
func (c *AutoMLConfig) VerbosityLevel() int {
	if lvl, ok := verbosityLevels[strings.ToLower(c.Verbosity)]; ok {
		return lvl
	}
	return verbosityLevels["info"]
}
