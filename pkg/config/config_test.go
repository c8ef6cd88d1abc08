package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".langflow"), cfg.LangflowHome)
	assert.Equal(t, "components", cfg.ComponentDir)
	assert.Equal(t, ".venv", cfg.Venv.Dir)
	assert.Equal(t, "python3", cfg.Venv.Python)
	assert.Equal(t, "langflow", cfg.Venv.Package)
	assert.Equal(t, "http://127.0.0.1:7860", cfg.Host.URL)
	assert.Equal(t, DefaultRegions, cfg.Watsonx.Regions)
	assert.Equal(t, DefaultAPIVersion, cfg.Watsonx.APIVersion)
	assert.Equal(t, "WATSONX_API_KEY", cfg.Watsonx.APIKeyEnv)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wxflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
langflow_home: /opt/langflow
component_dir: /srv/components
venv:
  dir: /opt/venv
  python: python3.12
watsonx:
  regions:
    - https://us-south.ml.cloud.ibm.com
  api_version: "2025-01-01"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/langflow", cfg.LangflowHome)
	assert.Equal(t, "/srv/components", cfg.ComponentDir)
	assert.Equal(t, "/opt/venv", cfg.Venv.Dir)
	assert.Equal(t, "python3.12", cfg.Venv.Python)
	// Unset keys keep their defaults.
	assert.Equal(t, "langflow", cfg.Venv.Package)
	assert.Equal(t, []string{"https://us-south.ml.cloud.ibm.com"}, cfg.Watsonx.Regions)
	assert.Equal(t, "2025-01-01", cfg.Watsonx.APIVersion)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wxflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watsonx:\n  regions: []\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestComponentDestRoot(t *testing.T) {
	cfg := Config{LangflowHome: "/home/u/.langflow"}
	assert.Equal(t, "/home/u/.langflow/components", cfg.ComponentDestRoot())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".langflow"), expandHome("~/.langflow"))
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
