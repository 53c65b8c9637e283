package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/config"
	"github.com/lakehouselib/lakehouse/dataset"
	"github.com/lakehouselib/lakehouse/devserver"
)

var seedCmd = &cobra.Command{
	Use:   "seed [flags] <file1> [file2] ...",
	Short: "Import local files into a collection",
	Long: `Register local files in the catalog and copy them into blob storage
without going through HTTP. The collection is created when no
collection of that name exists.

Tabular files (csv, tsv, json, md, html, xlsx, parquet) are recorded
as structured, everything else as unstructured.

Examples:
  # Seed two files into a new s3 collection
  lakehouse-devserver seed --collection demo --bucket demo-bucket a.csv b.parquet

  # Seed a directory recursively as processed data
  lakehouse-devserver seed -c demo -r --level processed ./fixtures`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

var (
	seedCollection  string
	seedStorageType string
	seedBucket      string
	seedLevel       string
	seedOwner       string
	seedRecursive   bool
	seedPublic      bool
	seedQuiet       bool
)

func init() {
	seedCmd.Flags().StringVarP(&seedCollection, "collection", "c", "", "collection name (required)")
	seedCmd.Flags().StringVar(&seedStorageType, "storage-type", string(lakehouse.StorageS3), "storage type of a new collection: gcs, s3, hdfs")
	seedCmd.Flags().StringVar(&seedBucket, "bucket", "lakehouse-dev", "bucket name, or namenode address for hdfs, of a new collection")
	seedCmd.Flags().StringVar(&seedLevel, "level", string(lakehouse.LevelRaw), "processing level: raw, processed, curated")
	seedCmd.Flags().StringVar(&seedOwner, "as", "admin@localhost", "email recorded as inserted_by")
	seedCmd.Flags().BoolVarP(&seedRecursive, "recursive", "r", false, "recursively seed directories")
	seedCmd.Flags().BoolVar(&seedPublic, "public", false, "mark new records public")
	seedCmd.Flags().BoolVarP(&seedQuiet, "quiet", "q", false, "suppress per-file output")
	_ = seedCmd.MarkFlagRequired("collection")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	level, err := lakehouse.ParseProcessingLevel(seedLevel)
	if err != nil {
		return err
	}

	var files []string
	for _, arg := range args {
		found, collectErr := collectFiles(arg, seedRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		slog.Info("no files to seed")
		return nil
	}

	service, closeService, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeService()

	who := devserver.Identity{UserID: "seed", Email: seedOwner, Role: "admin"}

	collectionID, err := ensureCollection(ctx, service, who)
	if err != nil {
		return err
	}

	for _, path := range files {
		rec, seedErr := seedFile(ctx, service, who, collectionID, path, level)
		if seedErr != nil {
			return fmt.Errorf("seed %s: %w", path, seedErr)
		}
		if !seedQuiet {
			slog.Info("seeded", "path", path, "id", rec.String("id"), "size", rec.String("file_size"))
		}
	}

	slog.Info("seed complete", "collection", seedCollection, "files", len(files))
	return nil
}

// ensureCollection returns the id of the collection named seedCollection,
// creating it when missing.
func ensureCollection(ctx context.Context, service *devserver.Service, who devserver.Identity) (string, error) {
	found, err := service.Search(ctx, lakehouse.CatalogCollections, []lakehouse.Filter{
		{PropertyName: "collection_name", Operator: lakehouse.OpEqual, PropertyValue: seedCollection},
	})
	if err != nil {
		return "", fmt.Errorf("find collection: %w", err)
	}
	if len(found) > 0 {
		return found[0].String("id"), nil
	}

	req := lakehouse.NewRecord(
		"collection_name", seedCollection,
		"storage_type", seedStorageType,
		"public", seedPublic,
		"secret", false,
	)
	if lakehouse.StorageType(seedStorageType) == lakehouse.StorageHDFS {
		req.Set("namenode_address", seedBucket)
	} else {
		req.Set("bucket_name", seedBucket)
	}

	doc, err := service.CreateCollection(ctx, who, req)
	if err != nil {
		return "", err
	}
	slog.Info("collection created", "collection", seedCollection, "id", doc.String("id"))
	return doc.String("id"), nil
}

func seedFile(ctx context.Context, service *devserver.Service, who devserver.Identity, collectionID, path string, level lakehouse.ProcessingLevel) (lakehouse.Record, error) {
	category := lakehouse.FileStructured
	if dataset.FormatOf(path) == dataset.FormatText {
		category = lakehouse.FileUnstructured
	}

	slot, err := service.RequestUpload(ctx, who, lakehouse.NewRecord(
		"collection_catalog_id", collectionID,
		"file_name", filepath.Base(path),
		"file_category", string(category),
		"processing_level", string(level),
		"public", seedPublic,
	))
	if err != nil {
		return lakehouse.Record{}, err
	}

	f, err := os.Open(path) //#nosec G304 -- path is user-provided input
	if err != nil {
		return lakehouse.Record{}, err
	}
	_, err = service.AppendChunk(ctx, slot.CatalogRecordID, f)
	_ = f.Close()
	if err != nil {
		_, _ = service.SetFileStatus(ctx, slot.CatalogRecordID, devserver.StatusFailed)
		return lakehouse.Record{}, err
	}

	return service.SetFileStatus(ctx, slot.CatalogRecordID, devserver.StatusReady)
}

// collectFiles gathers the regular files under path.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to seed recursively)", path)
	}

	var files []string
	err = filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, walkPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
