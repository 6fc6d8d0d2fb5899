package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"automl-orchestrator/internal/core/domain"
)

const workspaceFileName = "config.json"

// workspaceDirs are checked, in order, in every directory walked.
var workspaceDirs = []string{".", ".automl"}

// FindWorkspaceFile locates a workspace config.json. An explicit path wins;
// otherwise the search starts at dir and walks up to the filesystem root.
func FindWorkspaceFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrWorkspaceConfigNotFound, explicit)
		}
		return explicit, nil
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve search dir: %w", err)
	}

	for {
		for _, sub := range workspaceDirs {
			candidate := filepath.Join(dir, sub, workspaceFileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", domain.ErrWorkspaceConfigNotFound
		}
		dir = parent
	}
}

// ResolveWorkspace returns the workspace reference from explicit settings
// when complete, falling back to the config.json discovered on disk.
func ResolveWorkspace(cfg WorkspaceConfig, searchDir string) (domain.WorkspaceRef, error) {
	ref := domain.WorkspaceRef{
		SubscriptionID: cfg.SubscriptionID,
		ResourceGroup:  cfg.ResourceGroup,
		Name:           cfg.Name,
	}
	if ref.Validate() == nil && cfg.ConfigPath == "" {
		return ref, nil
	}

	path, err := FindWorkspaceFile(cfg.ConfigPath, searchDir)
	if err != nil {
		if errors.Is(err, domain.ErrWorkspaceConfigNotFound) && ref.Validate() == nil {
			return ref, nil
		}
		return domain.WorkspaceRef{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return domain.WorkspaceRef{}, fmt.Errorf("read workspace config %s: %w", path, err)
	}

	fromFile := domain.WorkspaceRef{
		SubscriptionID: v.GetString("subscription_id"),
		ResourceGroup:  v.GetString("resource_group"),
		Name:           v.GetString("workspace_name"),
	}
	// Explicit values override the file field by field.
	if ref.SubscriptionID != "" {
		fromFile.SubscriptionID = ref.SubscriptionID
	}
	if ref.ResourceGroup != "" {
		fromFile.ResourceGroup = ref.ResourceGroup
	}
	if ref.Name != "" {
		fromFile.Name = ref.Name
	}

	if err := fromFile.Validate(); err != nil {
		return domain.WorkspaceRef{}, fmt.Errorf("workspace config %s: %w", path, err)
	}
	return fromFile, nil
}
