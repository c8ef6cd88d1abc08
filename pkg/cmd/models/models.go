package models

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/catalog"
	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/config"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
)

var (
	function  = "chat"
	reference string
	timeout   = 10 * time.Second
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Compare available watsonx foundation models across regions",
		Long: `
Fetches the active (non-deprecated, non-withdrawn) foundation models from
every configured watsonx region and reports per-region counts, models
missing or unique compared to the reference region, models common to all
regions, and a master model-to-regions table.
`,
		Args:         cobra.NoArgs,
		RunE:         runModels,
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&function, "function", function, "Model function to list: chat or embedding")
	f.StringVar(&reference, "reference", "", "Reference region, as a base URL or short code like us-south (default from config)")
	f.DurationVar(&timeout, "timeout", timeout, "Per-request timeout")

	return cmd
}

func runModels(cmd *cobra.Command, _ []string) error {
	logger := log.GetLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}

	var fn catalog.Function
	switch function {
	case "chat":
		fn = catalog.FunctionChat
	case "embedding":
		fn = catalog.FunctionEmbedding
	default:
		return errors.Errorf("unknown function %q, must be chat or embedding", function)
	}

	ref, err := resolveReference(cfg.Watsonx.Regions, reference, cfg.Watsonx.ReferenceRegion)
	if err != nil {
		return err
	}

	client := catalog.NewClient(cfg.Watsonx.APIVersion, timeout, logger)

	sets, err := client.FetchRegions(cmd.Context(), cfg.Watsonx.Regions, fn)
	if err != nil {
		return err
	}

	comparison := catalog.Compare(sets, ref)
	catalog.WriteReport(cmd.OutOrStdout(), sets, comparison)

	return nil
}

// resolveReference accepts either a full base URL or a short region code
// and returns the matching configured region.
func resolveReference(regions []string, flagValue, configured string) (string, error) {
	want := flagValue
	if want == "" {
		want = configured
	}

	for _, region := range regions {
		if region == want || catalog.ShortRegion(region) == want {
			return region, nil
		}
	}

	return "", errors.Errorf("reference region %q is not one of the configured regions", want)
}
