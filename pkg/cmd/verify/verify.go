package verify

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/cmd/deploy"
	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/config"
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
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verify",
		Short:        "Check that deployed components are byte-identical to their sources",
		Args:         cobra.NoArgs,
		RunE:         runVerify,
		SilenceUsage: true,
	}

	f := cmd.Flags()

	f.StringVar(&sourceDir, "source-dir", "", "Component source directory (default from config)")
	f.StringVar(&langflowHome, "langflow-home", "", "Langflow user directory (default from config)")
	f.IntVarP(&maxConcurrentFiles, "concurrent-files", "c", maxConcurrentFiles, "Maximum number of files hashed concurrently")
	f.StringVar(&blockSize, "block-size", blockSize, "Internal input and output block size (e.g., 32k, 1m)")

	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	var logger zerolog.Logger
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var progressBar *progress.Progress
	progressDone := make(chan struct{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progressBar = progress.New(os.Stderr, 100*time.Millisecond)
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
		SourceDir:       cfg.ComponentDir,
		DestRoot:        cfg.ComponentDestRoot(),
		DoNotCreateDirs: true,
	}
	if err := listerConfig.Validate(); err != nil {
		return err
	}

	hasherConfig := hasher.Config{
		MaxConcurrentFiles: maxConcurrentFiles,
		CopyBufferSize:     int(size.MustParse(blockSize)),
	}

	return deploy.Verify(ctx, logger, listerConfig, hasherConfig, progressBar)
}
