package deployer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/validation"
)

func makeComponent(t *testing.T, srcDir, dstDir, name, content string) component.Component {
	src := filepath.Join(srcDir, name)
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	info, err := os.Stat(src)
	require.NoError(t, err)

	return component.Component{
		Kind:            component.KindLLM,
		Name:            name,
		SourcePath:      src,
		DestinationPath: filepath.Join(dstDir, name),
		FileInfo:        info,
	}
}

func deployAll(conf Config, components ...component.Component) error {
	d := New(conf, zerolog.Nop())

	in := make(chan component.Component, len(components))
	for _, c := range components {
		in <- c
	}
	close(in)

	return d.Start(context.Background(), in, nil, nil)
}

func TestDeployer_CopiesByteIdentical(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	c := makeComponent(t, srcDir, dstDir, "watsonx.py", "# component source\nclass WatsonxComponent: pass\n")

	err := deployAll(Config{MaxConcurrentFiles: 2, BlockSize: 8}, c)
	require.NoError(t, err)

	got, err := os.ReadFile(c.DestinationPath)
	require.NoError(t, err)
	want, err := os.ReadFile(c.SourcePath)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeployer_ExistingDestinationWithoutForce(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	c := makeComponent(t, srcDir, dstDir, "watsonx.py", "new content\n")
	require.NoError(t, os.WriteFile(c.DestinationPath, []byte("old content\n"), 0o644))

	err := deployAll(Config{MaxConcurrentFiles: 1, BlockSize: 1024}, c)
	assert.True(t, errors.Is(err, validation.ErrDestinationFileExists))

	// The old copy is untouched.
	got, err := os.ReadFile(c.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "old content\n", string(got))
}

func TestDeployer_ForceOverwrites(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	c := makeComponent(t, srcDir, dstDir, "watsonx.py", "new content\n")
	require.NoError(t, os.WriteFile(c.DestinationPath, []byte("an older, longer content\n"), 0o644))

	err := deployAll(Config{MaxConcurrentFiles: 1, BlockSize: 1024, Force: true}, c)
	require.NoError(t, err)

	got, err := os.ReadFile(c.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "new content\n", string(got))
}

func TestDeployer_EmptyFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	c := makeComponent(t, srcDir, dstDir, "empty.py", "")

	err := deployAll(Config{MaxConcurrentFiles: 1, BlockSize: 1024}, c)
	require.NoError(t, err)

	stat, err := os.Stat(c.DestinationPath)
	require.NoError(t, err)
	assert.Zero(t, stat.Size())
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, (&Config{MaxConcurrentFiles: 0, BlockSize: 1}).Validate())
	assert.Error(t, (&Config{MaxConcurrentFiles: 1, BlockSize: 0}).Validate())
	assert.NoError(t, (&Config{MaxConcurrentFiles: 1, BlockSize: 1}).Validate())
}
