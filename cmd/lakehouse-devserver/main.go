package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "lakehouse-devserver",
	Short:   "Local lakehouse API for development and testing",
	Long: `lakehouse-devserver serves the lakehouse REST API from a local
catalog database and a blob directory. Uploads and downloads go
through short-lived signed URLs, as with a production deployment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./devserver.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: LAKEHOUSE_DEV_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: lakehouse.db, env: LAKEHOUSE_DEV_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "blob directory (default: ./data, env: LAKEHOUSE_DEV_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("users-file", "", "JSON file of login users (env: LAKEHOUSE_DEV_AUTH_USERS_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: LAKEHOUSE_DEV_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
