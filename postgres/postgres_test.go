package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/narrative"
	"github.com/meikuraledutech/narrative/internal/storetest"
	"github.com/meikuraledutech/narrative/postgres"
	"github.com/stretchr/testify/require"
)

var _ narrative.Store = (*postgres.PGStore)(nil)

// TestStore needs a disposable database; its tables are dropped between cases.
func TestStore(t *testing.T) {
	dsn := os.Getenv("NARRATIVE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NARRATIVE_TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	storetest.Run(t, func(t *testing.T) narrative.Store {
		s := postgres.New(pool)
		require.NoError(t, s.DropSchema(ctx))
		require.NoError(t, s.CreateSchema(ctx))
		t.Cleanup(func() { _ = s.DropSchema(ctx) })
		return s
	})
}
