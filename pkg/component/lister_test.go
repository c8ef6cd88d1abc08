package component

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langflow-tools/wxflow/pkg/validation"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func makeSourceTree(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "llm", "watsonx.py"), "# llm component\n")
	writeFile(t, filepath.Join(dir, "embeddings", "watsonx_embeddings.py"), "# embeddings component\n")
	return dir
}

func collect(t *testing.T, conf Config) ([]Component, error) {
	l := New(conf, zerolog.Nop())

	components := make(chan Component, 16)
	err := l.Start(context.Background(), components)
	close(components)

	var out []Component
	for c := range components {
		out = append(out, c)
	}
	return out, err
}

func TestLister_DiscoversRequiredComponents(t *testing.T) {
	src := makeSourceTree(t)
	dst := t.TempDir()

	conf := Config{SourceDir: src, DestRoot: dst}
	require.NoError(t, conf.Validate())

	components, err := collect(t, conf)
	require.NoError(t, err)
	require.Len(t, components, 2)

	names := []string{components[0].Name, components[1].Name}
	sort.Strings(names)
	assert.Equal(t, []string{"watsonx.py", "watsonx_embeddings.py"}, names)

	for _, c := range components {
		assert.Equal(t, filepath.Join(dst, string(c.Kind), c.Name), c.DestinationPath)
	}

	// Destination kind directories are created up front.
	for _, kind := range Kinds {
		stat, err := os.Stat(filepath.Join(dst, string(kind)))
		require.NoError(t, err)
		assert.True(t, stat.IsDir())
	}
}

func TestLister_ExtraComponentsIncluded(t *testing.T) {
	src := makeSourceTree(t)
	writeFile(t, filepath.Join(src, "llm", "other_model.py"), "# another component\n")
	writeFile(t, filepath.Join(src, "llm", "notes.txt"), "not a component\n")

	components, err := collect(t, Config{SourceDir: src, DestRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Len(t, components, 3)
}

func TestLister_MissingRequiredSource(t *testing.T) {
	src := makeSourceTree(t)
	require.NoError(t, os.Remove(filepath.Join(src, "llm", "watsonx.py")))

	conf := Config{SourceDir: src, DestRoot: t.TempDir()}
	err := conf.Validate()
	assert.True(t, errors.Is(err, validation.ErrComponentSourceMissing))
}

func TestLister_DoNotCreateDirs(t *testing.T) {
	src := makeSourceTree(t)
	dst := t.TempDir()

	_, err := collect(t, Config{SourceDir: src, DestRoot: dst, DoNotCreateDirs: true})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "llm"))
	assert.True(t, os.IsNotExist(err))
}
