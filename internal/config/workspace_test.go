package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automl-orchestrator/internal/core/domain"
)

const workspaceJSON = `{
	"subscription_id": "sub-123",
	"resource_group": "rg-ml",
	"workspace_name": "ws-bank"
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindWorkspaceFile_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".automl", "config.json"), workspaceJSON)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := FindWorkspaceFile("", nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".automl", "config.json"), path)
}

func TestFindWorkspaceFile_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ws.json")
	writeFile(t, path, workspaceJSON)

	got, err := FindWorkspaceFile(path, "/")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = FindWorkspaceFile(filepath.Join(dir, "missing.json"), "/")
	assert.ErrorIs(t, err, domain.ErrWorkspaceConfigNotFound)
}

func TestResolveWorkspace_FromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), workspaceJSON)

	ref, err := ResolveWorkspace(WorkspaceConfig{}, dir)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkspaceRef{SubscriptionID: "sub-123", ResourceGroup: "rg-ml", Name: "ws-bank"}, ref)
}

func TestResolveWorkspace_ExplicitOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, workspaceJSON)

	ref, err := ResolveWorkspace(WorkspaceConfig{ConfigPath: path, Name: "ws-other"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "sub-123", ref.SubscriptionID)
	assert.Equal(t, "ws-other", ref.Name)
}

func TestResolveWorkspace_ExplicitOnly(t *testing.T) {
	cfg := WorkspaceConfig{SubscriptionID: "s", ResourceGroup: "r", Name: "w"}

	ref, err := ResolveWorkspace(cfg, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "s/r/w", ref.String())
}

func TestResolveWorkspace_Incomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{"subscription_id": "sub-123"}`)

	_, err := ResolveWorkspace(WorkspaceConfig{ConfigPath: path}, dir)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkspace)
}
