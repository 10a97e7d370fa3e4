package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/searchcond/internal/core/auth"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Generate an API key for SEARCHCOND_API_KEY",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateAPIKey()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
		return err
	},
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
}
