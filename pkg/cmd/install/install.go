package install

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
	"github.com/langflow-tools/wxflow/pkg/venv"
)

var (
	venvDir string
	python  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "install",
		Short:        "Create the Python virtual environment and install Langflow into it",
		Args:         cobra.NoArgs,
		RunE:         runInstall,
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&venvDir, "venv-dir", "", "Virtual environment directory (default from config)")
	f.StringVar(&python, "python", "", "Python interpreter used to create the venv (default from config)")

	return cmd
}

func runInstall(cmd *cobra.Command, _ []string) error {
	logger := log.GetLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}
	if venvDir != "" {
		cfg.Venv.Dir = venvDir
	}
	if python != "" {
		cfg.Venv.Python = python
	}

	mgr, err := venv.New(venv.Config{
		Dir:     cfg.Venv.Dir,
		Python:  cfg.Venv.Python,
		Package: cfg.Venv.Package,
	}, venv.NewExecRunner(), logger)
	if err != nil {
		return err
	}

	created, err := mgr.Ensure(cmd.Context())
	if err != nil {
		return err
	}
	if created {
		logger.Info().Str("dir", cfg.Venv.Dir).Msg("Created virtual environment")
	}

	if err := mgr.InstallHost(cmd.Context()); err != nil {
		return err
	}

	logger.Info().Msg("Installation complete. Run `wxflow start` to deploy the components and start Langflow.")

	return nil
}
