package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements SnapshotStore on a local SQLite file. It backs the
// terminal results screen, which has no server to talk to.
type SQLiteStore struct {
	db      *sql.DB
	nowFunc func() time.Time
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteNowFunc overrides the time function for testing.
func WithSQLiteNowFunc(f func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		s.nowFunc = f
	}
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &SQLiteStore{db: db, nowFunc: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	_ = s.db.Close() //nolint:errcheck // nothing useful to do on close failure
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies pending schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return runSQLiteMigrations(ctx, s.db)
}

// SaveSnapshot inserts or replaces a snapshot by ID.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error {
	if rec.ID == "" {
		return errors.New("snapshot id is required")
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("marshaling snapshot results: %w", err)
	}
	rec.ResultCount = len(rec.Results)

	var created, updated int64
	err = s.db.QueryRowContext(ctx, sqliteUpsertSnapshot,
		rec.ID, rec.Query, rec.Page, string(results), rec.ResultCount, s.nowFunc().UnixMilli(),
	).Scan(&created, &updated)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return nil
}

// GetSnapshot returns the snapshot with id or ErrNotFound.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*SnapshotRecord, error) {
	var (
		rec              SnapshotRecord
		results          string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, sqliteGetSnapshot, id).Scan(
		&rec.ID, &rec.Query, &rec.Page, &results, &rec.ResultCount, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s results: %w", id, err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, nil
}

// ListSnapshots returns snapshot headers matching q.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, q *SnapshotQuery) ([]SnapshotRecord, int, error) {
	if q == nil {
		q = &SnapshotQuery{}
	}
	dataSQL, countSQL, args := q.toSQL(questionPlaceholder)

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting snapshots: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var (
			rec              SnapshotRecord
			created, updated int64
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Page, &rec.ResultCount, &created, &updated); err != nil {
			return nil, 0, fmt.Errorf("scanning snapshot: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created).UTC()
		rec.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, total, nil
}

// DeleteSnapshot removes a snapshot. Deleting a missing snapshot returns
// ErrNotFound.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, sqliteDeleteSnapshot, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneSnapshots deletes snapshots not updated within olderThan.
func (s *SQLiteStore) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.nowFunc().Add(-olderThan).UnixMilli()
	res, err := s.db.ExecContext(ctx, sqlitePruneSnapshots, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(n), nil
}

var (
	_ SnapshotStore = (*SQLiteStore)(nil)
	_ SnapshotStore = (*PostgresStore)(nil)
)
