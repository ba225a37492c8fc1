package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 10

// PostgresStore implements SnapshotStore using pgxpool (connection-pooled
// PostgreSQL). It backs the HTTP server.
type PostgresStore struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, nowFunc: time.Now}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// SaveSnapshot inserts or replaces a snapshot by ID.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error {
	if rec.ID == "" {
		return errors.New("snapshot id is required")
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("marshaling snapshot results: %w", err)
	}
	rec.ResultCount = len(rec.Results)

	args := pgx.NamedArgs{
		"id":           rec.ID,
		"query":        rec.Query,
		"page":         rec.Page,
		"results":      results,
		"result_count": rec.ResultCount,
	}
	if err := s.pool.QueryRow(ctx, queryUpsertSnapshot, args).Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", rec.ID, err)
	}
	return nil
}

// GetSnapshot returns the snapshot with id or ErrNotFound.
func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*SnapshotRecord, error) {
	var (
		rec     SnapshotRecord
		results []byte
	)
	err := s.pool.QueryRow(ctx, queryGetSnapshot, id).Scan(
		&rec.ID, &rec.Query, &rec.Page, &results, &rec.ResultCount, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %s: %w", id, err)
	}
	if err := json.Unmarshal(results, &rec.Results); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s results: %w", id, err)
	}
	return &rec, nil
}

// ListSnapshots returns snapshot headers matching q.
func (s *PostgresStore) ListSnapshots(ctx context.Context, q *SnapshotQuery) ([]SnapshotRecord, int, error) {
	if q == nil {
		q = &SnapshotQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting snapshots: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Page, &rec.ResultCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, total, nil
}

// DeleteSnapshot removes a snapshot. Deleting a missing snapshot returns
// ErrNotFound.
func (s *PostgresStore) DeleteSnapshot(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteSnapshot, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneSnapshots deletes snapshots not updated within olderThan.
func (s *PostgresStore) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx, queryPruneSnapshots, s.nowFunc().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
