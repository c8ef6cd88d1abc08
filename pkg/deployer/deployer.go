package deployer

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/detailyang/go-fallocate"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/utils/cp"
	"github.com/langflow-tools/wxflow/pkg/utils/progress"
	"github.com/langflow-tools/wxflow/pkg/utils/size"
	"github.com/langflow-tools/wxflow/pkg/validation"
)

// Deployer copies component files into the Langflow component directory.
// Files are pulled from a channel and copied concurrently, one goroutine per
// file.
type Deployer struct {
	conf   Config
	logger zerolog.Logger

	// Stats
	filesBeingCopied atomic.Int64
	filesCopied      atomic.Int64
	bytesCopied      atomic.Int64
	ioCompleted      atomic.Int64
}

func New(conf Config, logger zerolog.Logger) *Deployer {
	return &Deployer{
		conf:   conf,
		logger: logger.With().Str("component", "deployer").Logger(),
	}
}

func (d *Deployer) Stats() progress.Stats {
	return progress.Stats{
		FilesBeingProcessed: d.filesBeingCopied.Load(),
		FilesProcessed:      d.filesCopied.Load(),
		BytesProcessed:      d.bytesCopied.Load(),
		IOCompleted:         d.ioCompleted.Load(),
	}
}

// Start copies components from the provided channel until it is closed.
// Any copy failure aborts the whole deployment.
//
// Both rate limiters can be nil, in which case no rate limiting is applied.
func (d *Deployer) Start(
	ctx context.Context,
	incoming <-chan component.Component,
	transferRateLimiter *rate.Limiter,
	fileRateLimiter *rate.Limiter,
) error {
	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < d.conf.MaxConcurrentFiles; i++ {
		eg.Go(func() error {
			// Local copy buffer, avoid reallocations.
			copyBuffer := make([]byte, d.conf.BlockSize)

			for c := range incoming {
				if fileRateLimiter != nil {
					if err := fileRateLimiter.Wait(ctx); err != nil {
						return errors.Wrap(err, "failed to wait for file rate limiter")
					}
				}

				if err := d.copyFile(ctx, c, copyBuffer, transferRateLimiter); err != nil {
					return errors.Wrapf(err, "failed to deploy component %s", c.SourcePath)
				}
			}

			return nil
		})
	}

	return eg.Wait()
}

func (d *Deployer) updateBytesCopied(bytes, _ int64) {
	d.bytesCopied.Add(bytes)
	d.ioCompleted.Add(1)
}

func (d *Deployer) copyFile(
	ctx context.Context,
	c component.Component,
	copyBuffer []byte,
	rateLimiter *rate.Limiter,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	d.filesBeingCopied.Add(1)
	defer d.filesBeingCopied.Add(-1)

	srcFD, err := os.Open(c.SourcePath) // RO
	if err != nil {
		return errors.Wrap(err, "failed to open for reading")
	}
	defer srcFD.Close()

	flags := os.O_WRONLY | os.O_CREATE
	if d.conf.Force {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	dstFD, err := os.OpenFile(c.DestinationPath, flags, c.FileInfo.Mode())
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(validation.ErrDestinationFileExists, "%s", c.DestinationPath)
		}
		return errors.Wrap(err, "failed to open for writing")
	}

	// Preallocate the file to the expected size, if possible.
	if fileSize := c.FileInfo.Size(); fileSize > 0 {
		if err := fallocate.Fallocate(dstFD, 0, fileSize); err != nil {
			// fallocate can fail on some filesystems, so we only log the error
			// and don't fail the whole operation. The copy will still work.
			d.logger.Warn().Err(err).Str("destination", c.DestinationPath).
				Msg("Failed to preallocate disk space for destination file. Continuing anyway.")
		}
	}

	_, err = cp.Copy(ctx, dstFD, srcFD,
		cp.WithBuffer(copyBuffer),
		cp.WithRateLimiter(rateLimiter),
		cp.WithProgressTracker(d.updateBytesCopied),
	)
	if err != nil {
		_ = dstFD.Close()
		return errors.Wrap(err, "failed to copy component")
	}

	if err := dstFD.Close(); err != nil {
		return errors.Wrap(err, "failed to close destination file")
	}

	d.filesCopied.Add(1)
	d.logger.Debug().
		Str("source", c.SourcePath).
		Str("destination", c.DestinationPath).
		Int64("size", c.FileInfo.Size()).
		Str("sizeHuman", size.FormatBytes(c.FileInfo.Size())).
		Msg("Deployed component")

	return nil
}
