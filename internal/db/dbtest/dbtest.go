// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"ms-booking/internal/config"
	"ms-booking/internal/db"
	"ms-booking/internal/logger"
)

// New returns a repository over a fresh in-memory sqlite database with the
// schema applied. The database is closed when the test ends.
func New(t testing.TB) *db.DB {
	t.Helper()

	ctx := context.Background()
	bunDB, err := db.Open(ctx, config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, logger.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	if err := db.CreateSchema(ctx, bunDB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db.New(bunDB)
}
