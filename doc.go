// Package lakehouse provides the domain model shared by the lakehouse client
// library: catalog records, the query-expression language used by catalog
// searches, and the filter payload sent to the backend.
//
// A lakehouse backend organizes files into collections, each backed by one
// storage system (GCS, S3 or HDFS), and indexes both in a catalog. Clients
// move file contents through time-limited signed URLs and talk to the
// catalog over a small JSON API.
//
// # Key Components
//
//   - Record: an ordered catalog record as returned by the backend
//   - ParseQueries: turns "key<op>value" expressions into Conditions
//   - Filter / FilterPayload: validated search filters ready for transmission
//   - SortRecords / FilterByLevel: client-side listing helpers
//
// # Query Language
//
// Each query is KEY OPERATOR VALUE, where KEY is an identifier of at least two
// characters and OPERATOR is one of =, !=, >, <, >=, <= or * (substring match):
//
//	conds, err := lakehouse.ParseQueries("collection_name*lake", "inserted_at>1747934722")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := lakehouse.NewFilterPayload(lakehouse.FiltersFromConditions(conds)...)
//
// See the client package for the HTTP client, the output package for
// rendering records and the devserver package for a local backend.
package lakehouse
