// Package store persists search session snapshots so a results screen can
// be restored after the process that hosted it went away. Everything above
// this package depends on the SnapshotStore interface, never on a concrete
// backend.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/donaldgifford/product-search/internal/session"
	domain "github.com/donaldgifford/product-search/pkg/types"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotRecord is a stored session snapshot.
type SnapshotRecord struct {
	ID          string           `json:"id"`
	Query       string           `json:"query"`
	Page        string           `json:"page"`
	Results     []domain.Product `json:"results"`
	ResultCount int              `json:"result_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewSnapshotRecord builds a record for snap under id.
func NewSnapshotRecord(id string, snap session.Snapshot) *SnapshotRecord {
	results := snap.Results
	if results == nil {
		results = []domain.Product{}
	}
	return &SnapshotRecord{
		ID:          id,
		Query:       snap.Query,
		Page:        string(snap.Page),
		Results:     results,
		ResultCount: len(results),
	}
}

// Snapshot converts the record back into a session snapshot.
func (r *SnapshotRecord) Snapshot() session.Snapshot {
	return session.Snapshot{
		Query:   r.Query,
		Page:    session.PageToken(r.Page),
		Results: r.Results,
	}
}

// SnapshotStore defines snapshot persistence.
type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot with rec.ID and fills in
	// its timestamps.
	SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error
	GetSnapshot(ctx context.Context, id string) (*SnapshotRecord, error)
	// ListSnapshots returns snapshot headers without results, plus the total
	// count matching the query.
	ListSnapshots(ctx context.Context, q *SnapshotQuery) ([]SnapshotRecord, int, error)
	DeleteSnapshot(ctx context.Context, id string) error
	// PruneSnapshots deletes snapshots not updated within olderThan.
	PruneSnapshots(ctx context.Context, olderThan time.Duration) (int, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}
