package hasher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/utils/cp"
	"github.com/langflow-tools/wxflow/pkg/utils/progress"
)

// HashOne computes the SHA-256 hash of a single file.
func HashOne(
	ctx context.Context,
	copyBuffer []byte,
	file string,
	rateLimiter *rate.Limiter,
	progressTracker func(int64, int64),
) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file for hashing")
	}
	defer f.Close()

	hash := sha256.New()

	_, err = cp.Copy(ctx, hash, f,
		cp.WithBuffer(copyBuffer),
		cp.WithRateLimiter(rateLimiter),
		cp.WithProgressTracker(progressTracker),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to hash file")
	}

	return hash.Sum(nil), nil
}

// Hasher verifies that deployed components are byte-identical to their
// sources by hashing both sides of each pair.
type Hasher struct {
	logger zerolog.Logger

	conf Config

	// Stats
	filesBeingHashed atomic.Int64
	filesHashed      atomic.Int64
	bytesHashed      atomic.Int64
	ioCompleted      atomic.Int64
}

func New(config Config, logger zerolog.Logger) *Hasher {
	return &Hasher{
		conf:   config,
		logger: logger.With().Str("component", "hasher").Logger(),
	}
}

func (h *Hasher) Stats() progress.Stats {
	return progress.Stats{
		FilesBeingProcessed: h.filesBeingHashed.Load(),
		FilesProcessed:      h.filesHashed.Load(),
		BytesProcessed:      h.bytesHashed.Load(),
		IOCompleted:         h.ioCompleted.Load(),
	}
}

// Start hashes component pairs from the provided channel until it is closed.
//
// It returns an error if any component is missing on the destination side or
// has a mismatched hash. Individual failures are logged and counted; the
// remaining components are still verified.
//
// transferRateLimiter is shared between the src and dst side, so you need to
// double the limit if you want a per-side limit.
func (h *Hasher) Start(
	ctx context.Context,
	components <-chan component.Component,
	transferRateLimiter *rate.Limiter,
	fileRateLimiter *rate.Limiter,
) error {
	eg, ctx := errgroup.WithContext(ctx)

	failed := atomic.Int64{}

	for i := 0; i < h.conf.MaxConcurrentFiles; i++ {
		eg.Go(func() error {
			f := h.verifyPairs(ctx, components, transferRateLimiter, fileRateLimiter)
			failed.Add(int64(f))
			return nil // Never return error here, as we want to verify all components.
		})
	}

	if err := eg.Wait(); err != nil {
		return errors.Wrap(err, "failed to hash components")
	}

	if failed.Load() > 0 {
		return errors.New("some components are missing or have mismatched hashes, see logs for details")
	}

	return nil
}

func (h *Hasher) verifyPairs(
	ctx context.Context,
	components <-chan component.Component,
	transferRateLimiter *rate.Limiter,
	fileRateLimiter *rate.Limiter,
) int {
	failed := 0

	copyBuffer := make([]byte, h.conf.CopyBufferSize)

	for c := range components {
		if fileRateLimiter != nil {
			if err := fileRateLimiter.Wait(ctx); err != nil {
				failed++
				h.logger.Error().Err(err).Msg("Failed to wait for file rate limiter")
				continue
			}
		}

		srcHash, err := h.hashFile(ctx, c.SourcePath, copyBuffer, transferRateLimiter)
		if err != nil {
			failed++
			h.logger.Error().Err(err).Str("source", c.SourcePath).Msg("Failed to hash component source")
			continue
		}

		dstHash, err := h.hashFile(ctx, c.DestinationPath, copyBuffer, transferRateLimiter)
		if err != nil {
			failed++
			h.logger.Error().Err(err).Str("destination", c.DestinationPath).Msg("Failed to hash deployed component")
			continue
		}

		logger := h.logger.With().Str("source", c.SourcePath).Str("destination", c.DestinationPath).
			Str("sourceHash", hex.EncodeToString(srcHash)).Str("destinationHash", hex.EncodeToString(dstHash)).
			Logger()

		if !bytes.Equal(srcHash, dstHash) {
			failed++
			logger.Warn().Msg("Source and deployed component hashes do not match")
			continue
		}

		logger.Debug().Msg("Source and deployed component hashes match")
	}

	return failed
}

func (h *Hasher) updateBytesHashed(bytes, _ int64) {
	h.bytesHashed.Add(bytes)
	h.ioCompleted.Add(1)
}

func (h *Hasher) hashFile(
	ctx context.Context,
	file string,
	copyBuffer []byte,
	rateLimiter *rate.Limiter,
) ([]byte, error) {
	h.filesBeingHashed.Add(1)
	defer h.filesBeingHashed.Add(-1)

	hash, err := HashOne(ctx, copyBuffer, file, rateLimiter, h.updateBytesHashed)
	if err != nil {
		return nil, err
	}

	h.filesHashed.Add(1)

	return hash, nil
}
