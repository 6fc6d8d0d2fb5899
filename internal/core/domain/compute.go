package domain

import (
	"regexp"
	"time"
)

// ProvisioningState is the remote fleet manager's view of a cluster.
type ProvisioningState string

const (
	ProvisioningCreating  ProvisioningState = "Creating"
	ProvisioningSucceeded ProvisioningState = "Succeeded"
	ProvisioningFailed    ProvisioningState = "Failed"
	ProvisioningCanceled  ProvisioningState = "Canceled"
	ProvisioningDeleting  ProvisioningState = "Deleting"
)

// IsTerminal reports whether polling can stop.
func (s ProvisioningState) IsTerminal() bool {
	return s == ProvisioningSucceeded || s == ProvisioningFailed || s == ProvisioningCanceled
}

var computeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{1,15}$`)

// ComputeSpec is the provisioning configuration for a cluster.
type ComputeSpec struct {
	Name                       string `json:"name"`
	VMSize                     string `json:"vm_size"`
	MinNodes                   int    `json:"min_nodes"`
	MaxNodes                   int    `json:"max_nodes"`
	IdleSecondsBeforeScaleDown int    `json:"idle_seconds_before_scaledown"`
}

func (s ComputeSpec) Validate() error {
	if !computeNamePattern.MatchString(s.Name) {
		return ErrInvalidComputeName
	}
	if s.MinNodes < 0 || s.MaxNodes < 1 || s.MinNodes > s.MaxNodes {
		return ErrInvalidNodeCount
	}
	return nil
}

// ComputeTarget is a provisioned (or provisioning) cluster.
type ComputeTarget struct {
	Name              string            `json:"name"`
	VMSize            string            `json:"vm_size"`
	MinNodes          int               `json:"min_nodes"`
	MaxNodes          int               `json:"max_nodes"`
	ProvisioningState ProvisioningState `json:"provisioning_state"`
	CurrentNodeCount  int               `json:"current_node_count"`
	Errors            []string          `json:"errors,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func (c *ComputeTarget) IsReady() bool {
	return c.ProvisioningState == ProvisioningSucceeded
}
