package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"ms-booking/internal/config"
	"ms-booking/internal/db"
	"ms-booking/internal/logger"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(files, "sql/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups, downs := 0, 0
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups++
			_, err := fs.Stat(files, strings.TrimSuffix(name, ".up.sql")+".down.sql")
			assert.NoError(t, err, "missing down migration for %s", name)
		case strings.HasSuffix(name, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestEmbeddedSourceOpens(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestSchemaCoversSeatHolds(t *testing.T) {
	up, err := fs.ReadFile(files, "sql/000001_create_booking_schema.up.sql")
	require.NoError(t, err)
	for _, col := range []string{"lock_token", "locked_until", "show_seats_lock_check", "payment_status"} {
		assert.Contains(t, string(up), col)
	}
}

func TestApplySQLite(t *testing.T) {
	ctx := context.Background()
	bunDB, err := db.Open(ctx, config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, logger.NewNop())
	require.NoError(t, err)
	defer bunDB.Close()

	require.NoError(t, Apply(ctx, bunDB, "sqlite", logger.NewNop()))
	// idempotent
	require.NoError(t, Apply(ctx, bunDB, "sqlite", logger.NewNop()))

	movies, err := db.New(bunDB).ListMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, movies)
}
