package verify

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/langflow-tools/wxflow/pkg/cmd/deploy"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func makeSourceTree(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "llm", "watsonx.py"), "# watsonx llm component\n")
	writeFile(t, filepath.Join(dir, "embeddings", "watsonx_embeddings.py"), "# watsonx embeddings component\n")
	return dir
}

func runCommand(cmd *cobra.Command, args ...string) error {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestVerify_AfterDeploy(t *testing.T) {
	src := makeSourceTree(t)
	home := t.TempDir()

	require.NoError(t, runCommand(deploy.NewCommand(), "--source-dir", src, "--langflow-home", home))
	require.NoError(t, runCommand(NewCommand(), "--source-dir", src, "--langflow-home", home))
}

func TestVerify_TamperedDeployment(t *testing.T) {
	src := makeSourceTree(t)
	home := t.TempDir()

	require.NoError(t, runCommand(deploy.NewCommand(), "--source-dir", src, "--langflow-home", home))

	writeFile(t, filepath.Join(home, "components", "llm", "watsonx.py"), "# tampered\n")

	require.Error(t, runCommand(NewCommand(), "--source-dir", src, "--langflow-home", home))
}

func TestVerify_NothingDeployed(t *testing.T) {
	src := makeSourceTree(t)
	home := t.TempDir()

	require.Error(t, runCommand(NewCommand(), "--source-dir", src, "--langflow-home", home))
}

func TestVerify_DoesNotCreateDestination(t *testing.T) {
	src := makeSourceTree(t)
	home := t.TempDir()

	_ = runCommand(NewCommand(), "--source-dir", src, "--langflow-home", home)

	_, err := os.Stat(filepath.Join(home, "components"))
	require.True(t, os.IsNotExist(err))
}
