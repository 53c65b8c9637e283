package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/config"
	"github.com/lakehouselib/lakehouse/devserver/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog table and blob directory",
	Long: `Create the catalog documents table and the blob directory when
they are missing, then validate the table schema. Running it again
is harmless.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	counts := make([]any, 0, 4)
	for _, kind := range []lakehouse.CatalogKind{lakehouse.CatalogCollections, lakehouse.CatalogFiles} {
		docs, err := repo.List(ctx, kind)
		if err != nil {
			return fmt.Errorf("count %s: %w", kind, err)
		}
		counts = append(counts, string(kind), len(docs))
	}

	slog.Info("migration complete", append([]any{"table", cfg.Database.Table, "storage", cfg.Storage.Path}, counts...)...)
	return nil
}
