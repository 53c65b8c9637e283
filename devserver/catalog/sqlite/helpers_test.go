package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/lakehouselib/lakehouse/devserver/catalog"
	"github.com/lakehouselib/lakehouse/devserver/catalog/sqlite"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// getTestDatabase opens an in-memory database on a single connection so every
// query sees the same data.
func getTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open sqlite database")
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	db := getTestDatabase(t)
	ctx := context.Background()

	tables := catalog.Tables{Documents: fmt.Sprintf("documents_%s", getRandomString(t))}
	require.NoError(t, sqlite.Migrate(ctx, db, tables), "failed to migrate")

	repo, err := sqlite.NewRepo(db, tables)
	require.NoError(t, err, "failed to create repo")

	t.Cleanup(func() { _ = sqlite.DropTables(ctx, db, tables) })
	return repo
}
