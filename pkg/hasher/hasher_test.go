package hasher

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langflow-tools/wxflow/pkg/component"
)

func makePair(t *testing.T, srcContent, dstContent string) component.Component {
	dir := t.TempDir()
	src := filepath.Join(dir, "watsonx.py")
	dst := filepath.Join(dir, "deployed_watsonx.py")

	require.NoError(t, os.WriteFile(src, []byte(srcContent), 0o644))
	if dstContent != "" || dstContent == "" {
		require.NoError(t, os.WriteFile(dst, []byte(dstContent), 0o644))
	}

	info, err := os.Stat(src)
	require.NoError(t, err)

	return component.Component{
		Kind:            component.KindLLM,
		Name:            "watsonx.py",
		SourcePath:      src,
		DestinationPath: dst,
		FileInfo:        info,
	}
}

func verifyAll(components ...component.Component) error {
	h := New(Config{MaxConcurrentFiles: 2, CopyBufferSize: 16}, zerolog.Nop())

	in := make(chan component.Component, len(components))
	for _, c := range components {
		in <- c
	}
	close(in)

	return h.Start(context.Background(), in, nil, nil)
}

func TestHasher_MatchingPair(t *testing.T) {
	c := makePair(t, "identical content\n", "identical content\n")
	assert.NoError(t, verifyAll(c))
}

func TestHasher_MismatchedPair(t *testing.T) {
	c := makePair(t, "source content\n", "tampered content\n")
	assert.Error(t, verifyAll(c))
}

func TestHasher_MissingDestination(t *testing.T) {
	c := makePair(t, "source content\n", "")
	require.NoError(t, os.Remove(c.DestinationPath))
	assert.Error(t, verifyAll(c))
}

func TestHasher_KeepsVerifyingAfterFailure(t *testing.T) {
	bad := makePair(t, "source\n", "different\n")
	good := makePair(t, "fine\n", "fine\n")

	h := New(Config{MaxConcurrentFiles: 1, CopyBufferSize: 16}, zerolog.Nop())

	in := make(chan component.Component, 2)
	in <- bad
	in <- good
	close(in)

	err := h.Start(context.Background(), in, nil, nil)
	assert.Error(t, err)
	// Both pairs were fully hashed even though the first one mismatched.
	assert.EqualValues(t, 4, h.Stats().FilesProcessed)
}

func TestHashOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	hash, err := HashOne(context.Background(), make([]byte, 8), path, nil, nil)
	require.NoError(t, err)

	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		hex.EncodeToString(hash))
}
