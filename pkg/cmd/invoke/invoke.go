package invoke

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/flow"
)

var (
	input   = "hello world!"
	hostURL string
	timeout = 30 * time.Second
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "invoke FLOW_ID",
		Short:        "Send a chat message to a flow on a running Langflow instance",
		Args:         cobra.ExactArgs(1),
		RunE:         runInvoke,
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", input, "Chat input to send to the flow")
	f.StringVar(&hostURL, "url", "", "Langflow base URL (default from config)")
	f.DurationVar(&timeout, "timeout", timeout, "Request timeout")

	return cmd
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}
	if hostURL != "" {
		cfg.Host.URL = hostURL
	}

	client := flow.NewClient(cfg.Host.URL, timeout)

	reply, err := client.Run(cmd.Context(), args[0], input)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)

	return nil
}
