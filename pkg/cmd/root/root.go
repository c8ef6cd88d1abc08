package root

import (
	"github.com/spf13/cobra"

	"github.com/langflow-tools/wxflow/pkg/utils/log"
)

// ConfigPath is the --config flag, read by every subcommand when loading
// the configuration.
var ConfigPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wxflow",
		Short: "Set up and run IBM watsonx.ai components in Langflow",
		Long: `
wxflow wires IBM watsonx.ai foundation-model and embedding components into a
local Langflow installation.

Typical workflow:
  wxflow install       create the Python virtual environment and install Langflow
  wxflow start         deploy the watsonx components and run Langflow
  wxflow models        compare available foundation models across watsonx regions
  wxflow invoke ID     send a chat message to a running flow

Components are read from ./components/<kind>/*.py and deployed into
~/.langflow/components/<kind>/. Paths, regions, and credential variable names
can be overridden in a wxflow.yaml config file or WXFLOW_* environment
variables.
`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.CountVarP(&log.Verbosity, "verbose", "v", "Enable verbose output (-v for debug, -vv for trace)")
	pf.StringVar(&ConfigPath, "config", "", "Path to the config file (default ./wxflow.yaml, ~/.config/wxflow/wxflow.yaml)")

	return cmd
}
