package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/langflow-tools/wxflow/pkg/validation"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

func makeVenv(t *testing.T, dir string) {
	writeFile(t, filepath.Join(dir, "pyvenv.cfg"), 0o644)
	writeFile(t, filepath.Join(dir, "bin", "python"), 0o755)
}

func makeComponents(t *testing.T, dir string) {
	writeFile(t, filepath.Join(dir, "llm", "watsonx.py"), 0o644)
	writeFile(t, filepath.Join(dir, "embeddings", "watsonx_embeddings.py"), 0o644)
}

func newLauncher(t *testing.T, venvDir, componentDir string) *Launcher {
	l, err := New(Config{VenvDir: venvDir, ComponentDir: componentDir}, zerolog.Nop())
	require.NoError(t, err)
	return l
}

func TestCheckPreconditions_NoVenv(t *testing.T) {
	componentDir := t.TempDir()
	makeComponents(t, componentDir)

	l := newLauncher(t, filepath.Join(t.TempDir(), ".venv"), componentDir)

	err := l.CheckPreconditions()
	require.True(t, errors.Is(err, validation.ErrVenvMissing))
}

func TestCheckPreconditions_NoHostExecutable(t *testing.T) {
	venvDir := filepath.Join(t.TempDir(), ".venv")
	makeVenv(t, venvDir)
	componentDir := t.TempDir()
	makeComponents(t, componentDir)

	l := newLauncher(t, venvDir, componentDir)

	err := l.CheckPreconditions()
	require.True(t, errors.Is(err, validation.ErrHostNotInstalled))
}

func TestCheckPreconditions_MissingComponentSource(t *testing.T) {
	venvDir := filepath.Join(t.TempDir(), ".venv")
	makeVenv(t, venvDir)
	writeFile(t, filepath.Join(venvDir, "bin", "langflow"), 0o755)

	componentDir := t.TempDir()
	makeComponents(t, componentDir)
	require.NoError(t, os.Remove(filepath.Join(componentDir, "llm", "watsonx.py")))

	l := newLauncher(t, venvDir, componentDir)

	err := l.CheckPreconditions()
	require.True(t, errors.Is(err, validation.ErrComponentSourceMissing))
}

func TestCheckPreconditions_VenvCheckedFirst(t *testing.T) {
	// With everything missing, the venv error wins: nothing later is
	// even looked at.
	l := newLauncher(t, filepath.Join(t.TempDir(), ".venv"), filepath.Join(t.TempDir(), "components"))

	err := l.CheckPreconditions()
	require.True(t, errors.Is(err, validation.ErrVenvMissing))
}

func TestCheckPreconditions_AllGood(t *testing.T) {
	venvDir := filepath.Join(t.TempDir(), ".venv")
	makeVenv(t, venvDir)
	writeFile(t, filepath.Join(venvDir, "bin", "langflow"), 0o755)

	componentDir := t.TempDir()
	makeComponents(t, componentDir)

	l := newLauncher(t, venvDir, componentDir)
	require.NoError(t, l.CheckPreconditions())
}
