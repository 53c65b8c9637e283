package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/client"
	"github.com/lakehouselib/lakehouse/output"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection", "col"},
	Short:   "Create, list and search collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Long: `List every collection.

Examples:
  lakehouse collections list
  lakehouse collections list --sort inserted_at --desc
  lakehouse collections list -o json`,
	Args: cobra.NoArgs,
	RunE: runCollectionsList,
}

var collectionsSearchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search collections",
	Long: `Search collections with query expressions. A record matches when
every expression holds.

Operators: =  !=  >  <  >=  <=  and * (contains, case-insensitive)

Examples:
  lakehouse collections search "collection_name*sales"
  lakehouse collections search "public=True" "inserted_at>1747934722"
  lakehouse collections search --keyword sales`,
	RunE: runCollectionsSearch,
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Long: `Create a collection backed by a gcs or s3 bucket, or an hdfs
namenode.

Examples:
  lakehouse collections create sales --storage-type s3 --bucket sales-raw
  lakehouse collections create logs --storage-type hdfs --bucket namenode:8020 --secret`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionsCreate,
}

var (
	listSort     string
	listDesc     bool
	searchWord   string
	createType   string
	createBucket string
	createDesc   string
	createPublic bool
	createSecret bool
)

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsSearchCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)

	collectionsListCmd.Flags().StringVar(&listSort, "sort", "", "sort by a record field")
	collectionsListCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")

	collectionsSearchCmd.Flags().StringVarP(&searchWord, "keyword", "k", "", "match collection names containing the keyword")

	collectionsCreateCmd.Flags().StringVarP(&createType, "storage-type", "t", string(lakehouse.StorageS3), "storage type: gcs, s3, hdfs")
	collectionsCreateCmd.Flags().StringVarP(&createBucket, "bucket", "b", "", "bucket name, or namenode address for hdfs")
	collectionsCreateCmd.Flags().StringVarP(&createDesc, "description", "d", "", "collection description")
	collectionsCreateCmd.Flags().BoolVar(&createPublic, "public", false, "make the collection public")
	collectionsCreateCmd.Flags().BoolVar(&createSecret, "secret", false, "mark the collection secret")
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	mode, err := getMode()
	if err != nil {
		return err
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	res, err := c.ListCollections(cmd.Context(), client.ListOptions{SortKey: listSort, Desc: listDesc}, mode)
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatResult(os.Stdout, res)
}

func runCollectionsSearch(cmd *cobra.Command, args []string) error {
	if searchWord == "" && len(args) == 0 {
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
	if searchWord != "" {
		res, err = c.SearchCollectionsByKeyword(cmd.Context(), searchWord, mode)
	} else {
		res, err = c.SearchCollections(cmd.Context(), mode, args...)
	}
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatResult(os.Stdout, res)
}

func runCollectionsCreate(cmd *cobra.Command, args []string) error {
	storageType, err := lakehouse.ParseStorageType(createType)
	if err != nil {
		return err
	}

	c, err := getClient(cmd.Context())
	if err != nil {
		return handleError(err)
	}

	rec, err := c.CreateCollection(cmd.Context(), client.CollectionOptions{
		StorageType: storageType,
		Name:        args[0],
		Bucket:      createBucket,
		Description: createDesc,
		Public:      createPublic,
		Secret:      createSecret,
	})
	if err != nil {
		return handleError(err)
	}
	return getFormatter().FormatRecord(os.Stdout, "Created collection", rec)
}
