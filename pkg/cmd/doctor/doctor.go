package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/catalog"
	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/component"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/flow"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
	"github.com/langflow-tools/wxflow/pkg/validation"
	"github.com/langflow-tools/wxflow/pkg/venv"
)

var timeout = 5 * time.Second

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "doctor",
		Short:        "Check that the environment is ready to install and run Langflow",
		Args:         cobra.NoArgs,
		RunE:         runDoctor,
		SilenceUsage: true,
	}

	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "Timeout for reachability checks")

	return cmd
}

type check struct {
	name string
	// optional checks report problems without failing the run.
	optional bool
	run      func() (string, error)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	logger := log.GetLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}

	checks := buildChecks(cmd.Context(), cfg, logger)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")

	failed := 0
	for _, c := range checks {
		detail, err := c.run()

		status := "ok"
		if err != nil {
			detail = err.Error()
			if c.optional {
				status = "warn"
			} else {
				status = "fail"
				failed++
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", c.name, status, detail)
	}

	_ = w.Flush()

	if failed > 0 {
		return errors.Errorf("%d required checks failed", failed)
	}

	return nil
}

func buildChecks(ctx context.Context, cfg *config.Config, logger zerolog.Logger) []check {
	return []check{
		{
			name: "home directory",
			run: func() (string, error) {
				home, err := os.UserHomeDir()
				if err != nil {
					return "", errors.Wrap(err, "HOME is not usable")
				}
				return home, nil
			},
		},
		{
			name: "python interpreter",
			run: func() (string, error) {
				path, err := exec.LookPath(cfg.Venv.Python)
				if err != nil {
					return "", errors.Wrapf(err, "%s not found in PATH", cfg.Venv.Python)
				}

				mgr, err := venv.New(venv.Config{
					Dir:     cfg.Venv.Dir,
					Python:  cfg.Venv.Python,
					Package: cfg.Venv.Package,
				}, venv.NewExecRunner(), logger)
				if err != nil {
					return "", err
				}

				version, err := mgr.Version(ctx, cfg.Venv.Python)
				if err != nil {
					return "", err
				}

				major, minor, err := venv.ParseVersion(version)
				if err != nil {
					return "", err
				}
				if major < venv.MinPythonMajor || (major == venv.MinPythonMajor && minor < venv.MinPythonMinor) {
					return "", errors.Errorf("python %s is too old, need at least %d.%d",
						version, venv.MinPythonMajor, venv.MinPythonMinor)
				}

				return fmt.Sprintf("%s (%s)", path, version), nil
			},
		},
		{
			name:     "virtual environment",
			optional: true,
			run: func() (string, error) {
				if err := validation.ValidateVenv(cfg.Venv.Dir); err != nil {
					return "", err
				}
				return cfg.Venv.Dir, nil
			},
		},
		{
			name:     "langflow executable",
			optional: true,
			run: func() (string, error) {
				path := filepath.Join(cfg.Venv.Dir, "bin", "langflow")
				if err := validation.ValidateExecutable(path); err != nil {
					return "", err
				}
				return path, nil
			},
		},
		{
			name: "component sources",
			run: func() (string, error) {
				count := 0
				for _, kind := range component.Kinds {
					for _, name := range component.Required[kind] {
						path := filepath.Join(cfg.ComponentDir, string(kind), name)
						if err := validation.ValidateComponentSource(path); err != nil {
							return "", err
						}
						count++
					}
				}
				return fmt.Sprintf("%d required files in %s", count, cfg.ComponentDir), nil
			},
		},
		{
			name:     "langflow host",
			optional: true,
			run: func() (string, error) {
				client := flow.NewClient(cfg.Host.URL, timeout)
				if err := client.Ping(ctx); err != nil {
					return "", err
				}
				return cfg.Host.URL, nil
			},
		},
		{
			name:     "watsonx catalog",
			optional: true,
			run: func() (string, error) {
				client := catalog.NewClient(cfg.Watsonx.APIVersion, timeout, logger)
				ids, err := client.ModelIDs(ctx, cfg.Watsonx.ReferenceRegion, catalog.FunctionChat)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d chat models in %s", len(ids), catalog.ShortRegion(cfg.Watsonx.ReferenceRegion)), nil
			},
		},
	}
}
