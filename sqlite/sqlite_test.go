package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/narrative"
	"github.com/meikuraledutech/narrative/internal/storetest"
	"github.com/meikuraledutech/narrative/sqlite"
	"github.com/stretchr/testify/require"
)

var _ narrative.Store = (*sqlite.Store)(nil)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) narrative.Store {
		s, err := sqlite.Open(filepath.Join(t.TempDir(), "narrative.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.CreateSchema(context.Background()))
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	require.Error(t, err)
}

func TestDropSchema(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "narrative.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateSchema(ctx))
	require.NoError(t, s.DropSchema(ctx))
	_, err = s.ListDomains(ctx)
	require.Error(t, err)
	require.NoError(t, s.CreateSchema(ctx))
}
