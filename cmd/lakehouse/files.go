package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/client"
	"github.com/lakehouselib/lakehouse/dataset"
	"github.com/lakehouselib/lakehouse/output"
)

var filesCmd = &cobra.Command{
	Use:     "files",
	Aliases: []string{"file"},
	Short:   "List, search and transfer files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files",
	Long: `List every file, optionally leaving out processing levels.

Examples:
  lakehouse files list
  lakehouse files list --no-raw --sort file_size --desc`,
	Args: cobra.NoArgs,
	RunE: runFilesList,
}

var filesSearchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search files",
	Long: `Search files with query expressions. A record matches when every
expression holds.

Examples:
  lakehouse files search "file_size>=1048576" "processing_level=curated"
  lakehouse files search --keyword sales`,
	RunE: runFilesSearch,
}

var filesShowCmd = &cobra.Command{
	Use:   "show <file-id>",
	Short: "Show a file's catalog record",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesShow,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload a file into a collection",
	Long: `Upload a local file into a collection. The file is sent in chunks to
a signed URL and marked ready once every chunk arrived.

Examples:
  lakehouse files upload ./sales.csv --collection 2f6c... --category structured
  lakehouse files upload ./report.pdf --collection 2f6c... --name q3-report --level curated`,
	Args: cobra.ExactArgs(1),
	RunE: runFilesUpload,
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <file-id> [output-dir]",
	Short: "Download a file",
	Long: `Download a file into output-dir, or the working directory. The file
keeps its catalog name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFilesDownload,
}

var filesLoadCmd = &cobra.Command{
	Use:   "load <file-id>",
	Short: "Print a file as a table",
	Long: `Download a file and print it. csv, tsv, json, md, html, xlsx and
parquet files are printed as a table; anything else as text.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilesLoad,
}

var (
	filesSort        string
	filesDesc        bool
	filesNoRaw       bool
	filesNoProcessed bool
	filesNoCurated   bool
	filesKeyword     string

	uploadCollection  string
	uploadName        string
	uploadCategory    string
	uploadLevel       string
	uploadVersion     int
	uploadDescription string
	uploadPublic      bool
)

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesSearchCmd)
	filesCmd.AddCommand(filesShowCmd)
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesDownloadCmd)
	filesCmd.AddCommand(filesLoadCmd)

	filesListCmd.Flags().StringVar(&filesSort, "sort", "", "sort by a record field")
	filesListCmd.Flags().BoolVar(&filesDesc, "desc", false, "sort descending")
	filesListCmd.Flags().BoolVar(&filesNoRaw, "no-raw", false, "leave out raw files")
	filesListCmd.Flags().BoolVar(&filesNoProcessed, "no-processed", false, "leave out processed files")
	filesListCmd.Flags().BoolVar(&filesNoCurated, "no-curated", false, "leave out curated files")

	filesSearchCmd.Flags().StringVarP(&filesKeyword, "keyword", "k", "", "match file names containing the keyword")

	filesUploadCmd.Flags().StringVarP(&uploadCollection, "collection", "C", "", "collection id (required)")
	filesUploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "catalog file name (default: local file name)")
	filesUploadCmd.Flags().StringVar(&uploadCategory, "category", "", "file category: structured, unstructured (default: from extension)")
	filesUploadCmd.Flags().StringVar(&uploadLevel, "level", string(lakehouse.LevelRaw), "processing level: raw, processed, curated")
	filesUploadCmd.Flags().IntVar(&uploadVersion, "version", 1, "file version")
	filesUploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "file description")
	filesUploadCmd.Flags().BoolVar(&uploadPublic, "public", false, "make the file public")
	_ = filesUploadCmd.MarkFlagRequired("collection")
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	mode, err := getMode()
	if err != nil {
		return err
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	res, err := c.ListFiles(cmd.Context(), client.FileListOptions{
		ListOptions:      client.ListOptions{SortKey: filesSort, Desc: filesDesc},
		ExcludeRaw:       filesNoRaw,
		ExcludeProcessed: filesNoProcessed,
		ExcludeCurated:   filesNoCurated,
	}, mode)
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatResult(os.Stdout, res)
}

func runFilesSearch(cmd *cobra.Command, args []string) error {
	if filesKeyword == "" && len(args) == 0 {
		return cmd.Usage()
	}
	mode, err := getMode()
	if err != nil {
		return err
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	var res *output.Result
	if filesKeyword != "" {
		res, err = c.SearchFilesByKeyword(cmd.Context(), filesKeyword, mode)
	} else {
		res, err = c.SearchFiles(cmd.Context(), mode, args...)
	}
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatResult(os.Stdout, res)
}

func runFilesShow(cmd *cobra.Command, args []string) error {
	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	rec, err := c.FileRecord(cmd.Context(), args[0])
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatRecord(os.Stdout, "File "+args[0], rec)
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	localPath := args[0]

	category := lakehouse.FileUnstructured
	if dataset.FormatOf(localPath) != dataset.FormatText {
		category = lakehouse.FileStructured
	}
	if cmd.Flags().Changed("category") {
		var err error
		if category, err = lakehouse.ParseFileCategory(uploadCategory); err != nil {
			return err
		}
	}
	level, err := lakehouse.ParseProcessingLevel(uploadLevel)
	if err != nil {
		return err
	}

	name := uploadName
	if name == "" {
		base := filepath.Base(localPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	rec, err := c.UploadFile(cmd.Context(), client.UploadOptions{
		LocalPath:    localPath,
		FileName:     name,
		CollectionID: uploadCollection,
		Category:     category,
		Description:  uploadDescription,
		Version:      uploadVersion,
		Public:       uploadPublic,
		Level:        level,
	})
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatRecord(os.Stdout, "Uploaded", rec)
}

func runFilesDownload(cmd *cobra.Command, args []string) error {
	outputDir := ""
	if len(args) > 1 {
		outputDir = args[1]
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	res, err := c.DownloadFile(cmd.Context(), args[0], outputDir)
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatDownload(os.Stdout, res)
}

func runFilesLoad(cmd *cobra.Command, args []string) error {
	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	ds, err := c.LoadDataset(cmd.Context(), args[0])
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatDataset(os.Stdout, ds.Name, ds.Table, ds.Content)
}
