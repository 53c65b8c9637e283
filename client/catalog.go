package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/output"
	"github.com/lakehouselib/lakehouse/table"
)

type recordsResponse struct {
	Records []lakehouse.Record `json:"records"`
}

type bucketsResponse struct {
	BucketList []lakehouse.Record `json:"bucket_list"`
}

// CreateCollection creates a collection and returns the backend's response.
func (c *Client) CreateCollection(ctx context.Context, opts CollectionOptions) (lakehouse.Record, error) {
	if err := validateOptions(opts); err != nil {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w", err)
	}

	payload := lakehouse.NewRecord(
		"storage_type", opts.StorageType,
		"collection_name", opts.Name,
		"public", opts.Public,
		"secret", opts.Secret,
	)
	if opts.Description != "" {
		payload.Set("collection_description", opts.Description)
	}
	if opts.StorageType == lakehouse.StorageHDFS {
		payload.Set("namenode_address", opts.Bucket)
	} else if opts.Bucket != "" {
		payload.Set("bucket_name", opts.Bucket)
	}

	var resp lakehouse.Record
	err := c.do(ctx, request{method: http.MethodPost, path: "/storage/collections/create", body: payload}, &resp)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("create collection %s: %w", opts.Name, err)
	}

	c.logger.Info("collection created", "collection_name", opts.Name, "storage_type", opts.StorageType)
	return resp, nil
}

// FileRecord returns the catalog record of a file.
func (c *Client) FileRecord(ctx context.Context, fileID string) (lakehouse.Record, error) {
	if fileID == "" {
		return lakehouse.Record{}, fmt.Errorf("%w: file id is required", lakehouse.ErrInvalidInput)
	}

	var rec lakehouse.Record
	err := c.do(ctx, request{method: http.MethodGet, path: "/catalog/file/id/" + url.PathEscape(fileID)}, &rec)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("get file record %s: %w", fileID, err)
	}
	return rec, nil
}

// ListCollections lists every collection visible to the session. Table modes
// show the collection columns with display dates and identities; raw and
// JSON modes return the full records.
func (c *Client) ListCollections(ctx context.Context, opts ListOptions, mode output.Mode) (*output.Result, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}

	var resp recordsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/catalog/collections/all"}, &resp); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	records, err := lakehouse.SortRecords(resp.Records, opts.SortKey, opts.Desc)
	if err != nil {
		return nil, err
	}
	return present(records, mode, output.CollectionsTable)
}

// ListFiles lists every file visible to the session, keeping only the
// processing levels selected by opts.
func (c *Client) ListFiles(ctx context.Context, opts FileListOptions, mode output.Mode) (*output.Result, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}

	var resp recordsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/catalog/files/all"}, &resp); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	records, err := lakehouse.SortRecords(resp.Records, opts.SortKey, opts.Desc)
	if err != nil {
		return nil, err
	}
	records = lakehouse.FilterByLevel(records, opts.Levels()...)
	return present(records, mode, output.FilesTable)
}

// ListBuckets lists the storage buckets sorted by bucket_name.
func (c *Client) ListBuckets(ctx context.Context, mode output.Mode) (*output.Result, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}

	var resp bucketsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/storage/bucket-list"}, &resp); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	records, err := lakehouse.SortRecords(resp.BucketList, "bucket_name", false)
	if err != nil {
		return nil, err
	}
	return present(records, mode, table.FromRecords)
}

// SearchCollections searches collections with query expressions such as
// "collection_name*lake" or "inserted_at>1747934722". All expressions must
// hold for a record to match.
func (c *Client) SearchCollections(ctx context.Context, mode output.Mode, queries ...string) (*output.Result, error) {
	return c.searchQueries(ctx, lakehouse.CatalogCollections, mode, queries)
}

// SearchCollectionsByKeyword finds collections whose name contains keyword.
func (c *Client) SearchCollectionsByKeyword(ctx context.Context, keyword string, mode output.Mode) (*output.Result, error) {
	return c.Search(ctx, lakehouse.CatalogCollections, mode, lakehouse.KeywordFilter("collection_name", keyword))
}

// SearchFiles searches files with query expressions.
func (c *Client) SearchFiles(ctx context.Context, mode output.Mode, queries ...string) (*output.Result, error) {
	return c.searchQueries(ctx, lakehouse.CatalogFiles, mode, queries)
}

// SearchFilesByKeyword finds files whose name contains keyword.
func (c *Client) SearchFilesByKeyword(ctx context.Context, keyword string, mode output.Mode) (*output.Result, error) {
	return c.Search(ctx, lakehouse.CatalogFiles, mode, lakehouse.KeywordFilter("file_name", keyword))
}

func (c *Client) searchQueries(ctx context.Context, kind lakehouse.CatalogKind, mode output.Mode, queries []string) (*output.Result, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	conds, err := lakehouse.ParseQueries(queries...)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, kind, mode, lakehouse.FiltersFromConditions(conds)...)
}

// Search posts filters to the search endpoint of a catalog and formats the
// matching records.
func (c *Client) Search(ctx context.Context, kind lakehouse.CatalogKind, mode output.Mode, filters ...lakehouse.Filter) (*output.Result, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: catalog %q", lakehouse.ErrInvalidInput, kind)
	}
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	payload, err := lakehouse.NewFilterPayload(filters...)
	if err != nil {
		return nil, err
	}

	var resp recordsResponse
	err = c.do(ctx, request{method: http.MethodPost, path: "/catalog/" + string(kind) + "/search", body: payload}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}

	c.logger.Debug("catalog searched", "catalog", kind, "filters", len(payload.Filters), "matches", len(resp.Records))
	return output.Format(resp.Records, mode)
}

func checkMode(mode output.Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %s", lakehouse.ErrUnsupportedOutputFormat, mode)
	}
	return nil
}

// present formats a listing: table modes get the projected table, raw and
// JSON modes the records.
func present(records []lakehouse.Record, mode output.Mode, project func([]lakehouse.Record) *table.Table) (*output.Result, error) {
	switch mode {
	case output.ModeTable, output.ModeText:
		return output.FormatTable(project(records), mode)
	default:
		return output.Format(records, mode)
	}
}
