package domain

import (
	"regexp"
	"time"
)

// ============================================================================
// Value Objects
// ============================================================================

// DeployTarget selects where a model is served.
type DeployTarget string

const (
	DeployTargetPlatform DeployTarget = "platform"
	DeployTargetKServe   DeployTarget = "kserve"
)

// IsValid checks if the target is known
func (t DeployTarget) IsValid() bool {
	return t == DeployTargetPlatform || t == DeployTargetKServe
}

// ServiceState represents the state of a deployed web service
type ServiceState string

const (
	ServiceStateTransitioning ServiceState = "Transitioning"
	ServiceStateHealthy       ServiceState = "Healthy"
	ServiceStateUnhealthy     ServiceState = "Unhealthy"
	ServiceStateFailed        ServiceState = "Failed"
	ServiceStateDeleting      ServiceState = "Deleting"
)

// IsTerminal reports whether deployment polling can stop.
func (s ServiceState) IsTerminal() bool {
	return s == ServiceStateHealthy || s == ServiceStateUnhealthy || s == ServiceStateFailed
}

// ============================================================================
// Entities
// ============================================================================

var serviceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{2,31}$`)

// DeploySpec describes a model deployment as a web service.
type DeploySpec struct {
	Name            string            `json:"name"`
	Target          DeployTarget      `json:"-"`
	ModelIDs        []string          `json:"model_ids"`
	ModelURI        string            `json:"-"`
	EntryScript     string            `json:"entry_script,omitempty"`
	EntryScriptPath string            `json:"-"`
	Environment     string            `json:"environment,omitempty"`
	Image           string            `json:"-"`
	CPUCores        float64           `json:"cpu_cores"`
	MemoryGB        float64           `json:"memory_gb"`
	AuthEnabled     bool              `json:"auth_enabled"`
	Tags            map[string]string `json:"tags,omitempty"`
}

// Validate checks the definition against the selected target
func (s DeploySpec) Validate() error {
	if !serviceNamePattern.MatchString(s.Name) {
		return ErrInvalidServiceName
	}
	if !s.Target.IsValid() {
		return ErrUnknownDeployTarget
	}
	if len(s.ModelIDs) == 0 {
		return ErrMissingModels
	}
	if s.CPUCores <= 0 || s.MemoryGB <= 0 {
		return ErrInvalidResources
	}
	switch s.Target {
	case DeployTargetPlatform:
		if s.EntryScript == "" {
			return ErrMissingEntryScript
		}
	case DeployTargetKServe:
		if s.Image == "" {
			return ErrMissingImage
		}
	}
	return nil
}

// WebService represents a deployed model serving endpoint
type WebService struct {
	Name       string       `json:"name"`
	Target     DeployTarget `json:"compute_type"`
	ExternalID string       `json:"external_id,omitempty"`
	State      ServiceState `json:"state"`
	ScoringURI string       `json:"scoring_uri,omitempty"`
	SwaggerURI string       `json:"swagger_uri,omitempty"`
	Error      string       `json:"error,omitempty"`
	AuthKey    string       `json:"-"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// MarkHealthy records a ready endpoint
func (ws *WebService) MarkHealthy(scoringURI string) {
	ws.State = ServiceStateHealthy
	ws.ScoringURI = scoringURI
	ws.Error = ""
	ws.UpdatedAt = time.Now()
}

// MarkFailed records deployment failure
func (ws *WebService) MarkFailed(err string) {
	ws.State = ServiceStateFailed
	ws.Error = err
	ws.UpdatedAt = time.Now()
}

// IsHealthy returns true if the endpoint accepts scoring calls
func (ws *WebService) IsHealthy() bool {
	return ws.State == ServiceStateHealthy && ws.ScoringURI != ""
}
