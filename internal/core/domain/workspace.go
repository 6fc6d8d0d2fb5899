package domain

import "strings"

// WorkspaceRef identifies a workspace on the platform.
type WorkspaceRef struct {
	SubscriptionID string `json:"subscription_id"`
	ResourceGroup  string `json:"resource_group"`
	Name           string `json:"workspace_name"`
}

func (r WorkspaceRef) Validate() error {
	if strings.TrimSpace(r.SubscriptionID) == "" ||
		strings.TrimSpace(r.ResourceGroup) == "" ||
		strings.TrimSpace(r.Name) == "" {
		return ErrInvalidWorkspace
	}
	return nil
}

func (r WorkspaceRef) String() string {
	return r.SubscriptionID + "/" + r.ResourceGroup + "/" + r.Name
}

// Workspace is the platform's view of a bound workspace.
type Workspace struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Location string       `json:"location"`
	Ref      WorkspaceRef `json:"-"`
}

type Experiment struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WorkspaceName string `json:"workspace_name"`
}
