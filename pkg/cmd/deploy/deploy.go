package deploy

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/deployer"
	"github.com/langflow-tools/wxflow/pkg/hasher"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
	"github.com/langflow-tools/wxflow/pkg/utils/progress"
	"github.com/langflow-tools/wxflow/pkg/utils/size"
)

var (
	sourceDir    string
	langflowHome string

	maxConcurrentFiles = 4
	blockSize          = "256k"

	transferRateLimitStr string
	fileRateLimitStr     string
	force                bool
	verify               bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "deploy",
		Short:        "Copy the watsonx components into the Langflow component directory",
		Args:         cobra.NoArgs,
		RunE:         runDeploy,
		SilenceUsage: true,
	}

	f := cmd.Flags()

	f.BoolVarP(&force, "force", "f", false, "Overwrite components that are already deployed")
	f.BoolVar(&verify, "verify", false, "Hash source and deployed components after copying")
	f.StringVar(&sourceDir, "source-dir", "", "Component source directory (default from config)")
	f.StringVar(&langflowHome, "langflow-home", "", "Langflow user directory (default from config)")

	f.IntVarP(&maxConcurrentFiles, "concurrent-files", "c", maxConcurrentFiles, "Maximum number of concurrently copied files")
	f.StringVar(&blockSize, "block-size", blockSize, "Internal input and output block size (e.g., 32k, 1m)")

	f.StringVar(&transferRateLimitStr, "transfer-rate-limit", "", "Limit bytes copied per second (e.g., 1m, 500k)")
	f.StringVar(&fileRateLimitStr, "file-rate-limit", "", "Limit files copied per second")

	return cmd
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	var logger zerolog.Logger
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var progressBar *progress.Progress
	progressDone := make(chan struct{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progressBar = progress.New(os.Stderr, 100*time.Millisecond)

		// So we can print out summary.
		defer func() {
			cancel()
			<-progressDone
		}()

		go func() {
			defer close(progressDone)
			progressBar.Start(ctx)
		}()
	}

	if progressBar == nil {
		logger = log.GetLogger(os.Stderr, false)
	} else {
		logger = log.GetLogger(progressBar, true)
	}

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}
	if sourceDir != "" {
		cfg.ComponentDir = sourceDir
	}
	if langflowHome != "" {
		cfg.LangflowHome = langflowHome
	}

	listerConfig := component.Config{
		SourceDir: cfg.ComponentDir,
		DestRoot:  cfg.ComponentDestRoot(),
		Force:     force,
	}
	if err := listerConfig.Validate(); err != nil {
		return err
	}

	deployerConfig := deployer.Config{
		MaxConcurrentFiles: maxConcurrentFiles,
		BlockSize:          int(size.MustParse(blockSize)),
		Force:              force,
	}
	if err := deployerConfig.Validate(); err != nil {
		return err
	}

	err = Deploy(ctx, logger, listerConfig, deployerConfig, progressBar)
	if err != nil {
		return err
	}

	if verify {
		hasherConfig := hasher.Config{
			MaxConcurrentFiles: maxConcurrentFiles,
			CopyBufferSize:     int(size.MustParse(blockSize)),
		}
		return Verify(ctx, logger, listerConfig, hasherConfig, progressBar)
	}

	return nil
}

// Deploy runs the lister-to-deployer pipeline. It is shared with the start
// command, which deploys before launching the host.
func Deploy(
	ctx context.Context,
	logger zerolog.Logger,
	listerConfig component.Config,
	deployerConfig deployer.Config,
	progressBar *progress.Progress,
) error {
	eg, ctx := errgroup.WithContext(ctx)

	l := component.New(listerConfig, logger)
	components := make(chan component.Component, 64)
	eg.Go(func() error {
		defer close(components)
		return l.Start(ctx, components)
	})

	transferRateLimit := size.MustParse(transferRateLimitStr)
	fileRateLimit := size.MustParse(fileRateLimitStr)

	eg.Go(func() error {
		var transferRateLimiter *rate.Limiter
		var fileRateLimiter *rate.Limiter
		if transferRateLimit > 0 {
			// Each file is copied one block at a time, so the burst must
			// cover a block per concurrent file.
			transferRateLimiter = rate.NewLimiter(rate.Limit(transferRateLimit), deployerConfig.BlockSize*deployerConfig.MaxConcurrentFiles)
		}
		if fileRateLimit > 0 {
			fileRateLimiter = rate.NewLimiter(rate.Limit(fileRateLimit), deployerConfig.MaxConcurrentFiles)
		}

		d := deployer.New(deployerConfig, logger)
		if progressBar != nil {
			progressBar.SetStatsGetter(d.Stats)
		}

		return d.Start(ctx, components, transferRateLimiter, fileRateLimiter)
	})

	return eg.Wait()
}

// Verify runs the lister-to-hasher pipeline over the same component set,
// comparing sources against deployed copies. Shared with the verify command.
func Verify(
	ctx context.Context,
	logger zerolog.Logger,
	listerConfig component.Config,
	hasherConfig hasher.Config,
	progressBar *progress.Progress,
) error {
	if err := hasherConfig.Validate(); err != nil {
		return err
	}

	// Verification must not touch the destination.
	listerConfig.DoNotCreateDirs = true

	eg, ctx := errgroup.WithContext(ctx)

	l := component.New(listerConfig, logger)
	components := make(chan component.Component, 64)
	eg.Go(func() error {
		defer close(components)
		return l.Start(ctx, components)
	})

	eg.Go(func() error {
		h := hasher.New(hasherConfig, logger)
		if progressBar != nil {
			progressBar.SetStatsGetter(h.Stats)
		}

		return h.Start(ctx, components, nil, nil)
	})

	return eg.Wait()
}
