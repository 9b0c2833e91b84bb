package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/legalai-cli/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !flags.jsonOutput {
				_, err := fmt.Fprintln(out, version.Version)
				return err
			}
			return json.NewEncoder(out).Encode(map[string]string{
				"version":    version.Version,
				"user_agent": version.UserAgent(),
			})
		},
	}
}
