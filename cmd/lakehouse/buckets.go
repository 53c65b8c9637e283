package main

import (
	"os"

	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List storage buckets",
	Args:  cobra.NoArgs,
	RunE:  runBuckets,
}

func runBuckets(cmd *cobra.Command, _ []string) error {
	mode, err := getMode()
	if err != nil {
		return err
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	res, err := c.ListBuckets(cmd.Context(), mode)
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatResult(os.Stdout, res)
}
