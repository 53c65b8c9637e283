package main

import (
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the configured credentials",
	Long: `Log in with the resolved profile, environment and flag credentials
and print the session identity. Every other command logs in the same
way before it runs.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, _ []string) error {
	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatSession(os.Stdout, c.Session())
}
