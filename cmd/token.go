package cmd

import (
	"fmt"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/internal/token"

	"github.com/spf13/cobra"
)

var showToken bool

var tokenCmd = &cobra.Command{
	Use:   "token [--show]",
	Short: "Acquires a credential once with the configured strategy and prints it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Sinks are not needed here, so the full validation is skipped.
		cfg := config.LoadConfig()

		cred, err := token.NewProvider(cfg).Acquire(cmd.Context())
		if err != nil {
			return err
		}

		if showToken {
			fmt.Fprintln(cmd.OutOrStdout(), cred.String())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), cred.Redacted())
		}
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&showToken, "show", false, "Print the full credential instead of a redacted one.")
	rootCmd.AddCommand(tokenCmd)
}
