package start

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/cmd/deploy"
	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/deployer"
	"github.com/langflow-tools/wxflow/pkg/host"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
)

var (
	sourceDir    string
	langflowHome string
	venvDir      string
	skipDeploy   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [flags] [-- langflow-args...]",
		Short: "Deploy the watsonx components and run Langflow",
		Long: `
Checks that the virtual environment and the component sources are in place,
deploys the components into the Langflow user directory (existing copies are
overwritten so the host always loads the current sources), then runs
Langflow in the foreground. Arguments after -- are passed to langflow run.
`,
		Args:         cobra.ArbitraryArgs,
		RunE:         runStart,
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.BoolVar(&skipDeploy, "skip-deploy", false, "Start the host without redeploying the components")
	f.StringVar(&sourceDir, "source-dir", "", "Component source directory (default from config)")
	f.StringVar(&langflowHome, "langflow-home", "", "Langflow user directory (default from config)")
	f.StringVar(&venvDir, "venv-dir", "", "Virtual environment directory (default from config)")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := log.GetLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	if venvDir != "" {
		cfg.Venv.Dir = venvDir
	}

	launcher, err := host.New(host.Config{
		VenvDir:      cfg.Venv.Dir,
		ComponentDir: cfg.ComponentDir,
		APIKeyEnv:    cfg.Watsonx.APIKeyEnv,
		ProjectIDEnv: cfg.Watsonx.ProjectIDEnv,
		Args:         args,
	}, logger)
	if err != nil {
		return err
	}

	// Nothing is deployed or started if any precondition fails.
	if err := launcher.CheckPreconditions(); err != nil {
		return err
	}

	if !skipDeploy {
		listerConfig := component.Config{
			SourceDir: cfg.ComponentDir,
			DestRoot:  cfg.ComponentDestRoot(),
			Force:     true,
		}
		if err := listerConfig.Validate(); err != nil {
			return err
		}

		deployerConfig := deployer.Config{
			MaxConcurrentFiles: 4,
			BlockSize:          256 * 1024,
			Force:              true,
		}

		if err := deploy.Deploy(ctx, logger, listerConfig, deployerConfig, nil); err != nil {
			return err
		}

		logger.Info().Str("destination", cfg.ComponentDestRoot()).Msg("Deployed watsonx components")
	}

	launcher.CredentialReminder()

	return launcher.Run(ctx)
}
