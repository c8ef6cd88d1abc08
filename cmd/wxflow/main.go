package main

import (
	"os"

	"golang.org/x/term"

	"github.com/langflow-tools/wxflow/pkg/cmd/deploy"
	"github.com/langflow-tools/wxflow/pkg/cmd/doctor"
	"github.com/langflow-tools/wxflow/pkg/cmd/install"
	"github.com/langflow-tools/wxflow/pkg/cmd/invoke"
	"github.com/langflow-tools/wxflow/pkg/cmd/models"
	"github.com/langflow-tools/wxflow/pkg/cmd/root"
	"github.com/langflow-tools/wxflow/pkg/cmd/start"
	"github.com/langflow-tools/wxflow/pkg/cmd/verify"
	"github.com/langflow-tools/wxflow/pkg/utils/log"
)

var (
	logger = log.GetLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
)

func main() {
	rootCmd := root.NewCommand()

	rootCmd.AddCommand(install.NewCommand())
	rootCmd.AddCommand(deploy.NewCommand())
	rootCmd.AddCommand(verify.NewCommand())
	rootCmd.AddCommand(start.NewCommand())
	rootCmd.AddCommand(models.NewCommand())
	rootCmd.AddCommand(invoke.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("Error executing wxflow")
	}
}
