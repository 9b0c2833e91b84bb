package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// errActionFailed marks failures that were already shown as notifications.
var errActionFailed = errors.New("action failed")

type rootFlags struct {
	configFile string
	envFile    string
	baseURL    string
	logLevel   string
	jsonOutput bool
}

func Execute() error {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errActionFailed) {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	state := &cliState{flags: flags}

	rootCmd := &cobra.Command{
		Use:           "legalai",
		Short:         "Legal AI CLI: analyze cases, search jurisprudence and manage documents",
		Long:          "legalai is a terminal client for the Legal AI service. It signs you in, predicts case outcomes, searches jurisprudence, generates and summarizes legal documents, and manages your cases.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.configFile, "config", "", "Config file (default ~/.legalai/config.toml)")
	persistent.StringVar(&flags.envFile, "env-file", "", "Dotenv file to load (default .env)")
	persistent.StringVar(&flags.baseURL, "base-url", "", "Legal AI API base URL")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	persistent.BoolVar(&flags.jsonOutput, "json", false, "Emit JSON events instead of styled output")

	rootCmd.AddCommand(
		newVersionCmd(flags),
		newAuthCmd(state),
		newAnalyzeCmd(state),
		newSearchCmd(state),
		newGenerateCmd(state),
		newDocumentsCmd(state),
		newCasesCmd(state),
		newShellCmd(state),
	)

	return rootCmd
}
