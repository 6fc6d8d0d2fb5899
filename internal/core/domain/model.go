package domain

import "regexp"

var modelNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,255}$`)

// ModelSpec registers a model from a run's artifact.
type ModelSpec struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	RunID        string            `json:"run_id"`
	ArtifactPath string            `json:"artifact_path"`
}

func (s ModelSpec) Validate() error {
	if !modelNamePattern.MatchString(s.Name) {
		return ErrInvalidModelName
	}
	return nil
}

// Model is a registered model version.
type Model struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     int               `json:"version"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	RunID       string            `json:"run_id"`
	URI         string            `json:"uri"`
}
