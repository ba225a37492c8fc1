//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/product-search/internal/store"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ps_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr, 4)
	require.NoError(t, err)

	t.Cleanup(s.Close)

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_SnapshotLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	snap := testSnapshot("red shoes", 40)
	rec := store.NewSnapshotRecord("sess-1", snap)
	require.NoError(t, s.SaveSnapshot(ctx, rec))
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetSnapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got.Snapshot())
	assert.Equal(t, 40, got.ResultCount)

	require.NoError(t, s.SaveSnapshot(ctx, store.NewSnapshotRecord("sess-1", testSnapshot("blue shoes", 20))))
	got, err = s.GetSnapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "blue shoes", got.Query)

	require.NoError(t, s.SaveSnapshot(ctx, store.NewSnapshotRecord("sess-2", testSnapshot("red hats", 5))))

	prefix := "red"
	list, total, err := s.ListSnapshots(ctx, &store.SnapshotQuery{QueryPrefix: &prefix})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "sess-2", list[0].ID)

	require.NoError(t, s.DeleteSnapshot(ctx, "sess-2"))
	require.ErrorIs(t, s.DeleteSnapshot(ctx, "sess-2"), store.ErrNotFound)

	_, err = s.GetSnapshot(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_PruneSnapshots(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, store.NewSnapshotRecord("fresh", testSnapshot("a", 1))))

	n, err := s.PruneSnapshots(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A negative window puts the cutoff in the future.
	n, err = s.PruneSnapshots(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
