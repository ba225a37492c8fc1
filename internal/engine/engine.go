package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/product-search/internal/metrics"
	"github.com/donaldgifford/product-search/internal/notify"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
)

const (
	defaultIdleTTL   = 30 * time.Minute
	defaultRetention = 7 * 24 * time.Hour
)

var (
	// ErrNoStore is returned by snapshot persistence when no store is
	// configured.
	ErrNoStore = errors.New("no snapshot store configured")

	// ErrNoQuery is returned when saving a session that never searched.
	ErrNoQuery = errors.New("session has no query to save")
)

// Engine hosts search sessions for the API server: it starts and
// registers runners, routes events to them, collects their notices and
// persists their snapshots.
type Engine struct {
	registry *session.Registry
	fetcher  session.Fetcher
	store    store.SnapshotStore
	notifier session.Notifier
	log      *slog.Logger

	runnerOpts   []session.RunnerOption
	noticeBuffer int
	idleTTL      time.Duration
	retention    time.Duration

	mu      sync.Mutex
	inboxes map[string]*notify.Inbox
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(reg *session.Registry, f session.Fetcher, opts ...EngineOption) *Engine {
	eng := &Engine{
		registry:  reg,
		fetcher:   f,
		log:       slog.Default(),
		idleTTL:   defaultIdleTTL,
		retention: defaultRetention,
		inboxes:   make(map[string]*notify.Inbox),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithStore enables snapshot persistence.
func WithStore(s store.SnapshotStore) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithNotifier adds a notifier that sees the notices of every session, in
// addition to the per-session inbox.
func WithNotifier(n session.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithRunnerOptions sets options applied to every new runner.
func WithRunnerOptions(opts ...session.RunnerOption) EngineOption {
	return func(e *Engine) {
		e.runnerOpts = append(e.runnerOpts, opts...)
	}
}

// WithNoticeBuffer sets how many undrained notices each session keeps.
func WithNoticeBuffer(n int) EngineOption {
	return func(e *Engine) {
		e.noticeBuffer = n
	}
}

// WithIdleTTL sets how long a session may go unused before eviction.
func WithIdleTTL(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.idleTTL = d
	}
}

// WithRetention sets how long stored snapshots are kept.
func WithRetention(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.retention = d
	}
}

// HasStore reports whether snapshot persistence is enabled.
func (eng *Engine) HasStore() bool {
	return eng.store != nil
}

// Create starts a session and, when query is not blank, its first search.
func (eng *Engine) Create(ctx context.Context, query string) (string, error) {
	var first session.Event
	if query != "" {
		first = session.NewQuery{Query: query}
	}
	return eng.start(ctx, first)
}

// Restore starts a session from a stored snapshot, or from snap when
// snapshotID is empty. The restored session does not fetch until scrolled.
func (eng *Engine) Restore(ctx context.Context, snapshotID string, snap *session.Snapshot) (string, error) {
	if snapshotID != "" {
		if eng.store == nil {
			return "", ErrNoStore
		}
		rec, err := eng.store.GetSnapshot(ctx, snapshotID)
		if err != nil {
			return "", fmt.Errorf("loading snapshot %s: %w", snapshotID, err)
		}
		s := rec.Snapshot()
		snap = &s
	}
	if snap == nil {
		return "", errors.New("restore needs a snapshot id or a snapshot")
	}

	id, err := eng.start(ctx, session.Restore{Snapshot: *snap})
	if err != nil {
		return "", err
	}
	metrics.SnapshotsRestoredTotal.Inc()
	eng.log.Info("session restored", "session", id, "snapshot", snapshotID, "query", snap.Query)
	return id, nil
}

func (eng *Engine) start(ctx context.Context, first session.Event) (string, error) {
	inbox := notify.NewInbox(eng.noticeBuffer)
	notifiers := notify.Multi{inbox}
	if eng.notifier != nil {
		notifiers = append(notifiers, eng.notifier)
	}

	opts := make([]session.RunnerOption, 0, len(eng.runnerOpts)+2)
	opts = append(opts, session.WithLogger(eng.log))
	opts = append(opts, eng.runnerOpts...)
	opts = append(opts, session.WithNotifier(notifiers))

	run := session.NewRunner(eng.fetcher, opts...)
	// Sessions outlive the request that created them.
	run.Start(context.Background())

	id, err := eng.registry.Add(run)
	if err != nil {
		run.Close()
		return "", err
	}

	eng.mu.Lock()
	eng.inboxes[id] = inbox
	eng.mu.Unlock()

	if first != nil {
		if err := run.Send(ctx, first); err != nil {
			eng.discard(id)
			return "", err
		}
	}
	return id, nil
}

// Send applies ev to the session id.
func (eng *Engine) Send(ctx context.Context, id string, ev session.Event) error {
	run, err := eng.registry.Get(id)
	if err != nil {
		return err
	}
	return run.Send(ctx, ev)
}

// View returns the state of session id with a window of its results.
func (eng *Engine) View(ctx context.Context, id string, offset, limit int) (session.View, error) {
	run, err := eng.registry.Get(id)
	if err != nil {
		return session.View{}, err
	}
	return run.View(ctx, offset, limit)
}

// Snapshot captures session id.
func (eng *Engine) Snapshot(ctx context.Context, id string) (session.Snapshot, error) {
	run, err := eng.registry.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return run.Snapshot(ctx)
}

// Notices drains the notices session id produced since the last call.
func (eng *Engine) Notices(id string) ([]session.Notice, error) {
	if _, err := eng.registry.Get(id); err != nil {
		return nil, err
	}
	eng.mu.Lock()
	inbox, ok := eng.inboxes[id]
	eng.mu.Unlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	return inbox.Drain(), nil
}

// IDs returns the IDs of all running sessions.
func (eng *Engine) IDs() []string {
	return eng.registry.IDs()
}

// Save persists the snapshot of session id under the same ID.
func (eng *Engine) Save(ctx context.Context, id string) (*store.SnapshotRecord, error) {
	if eng.store == nil {
		return nil, ErrNoStore
	}
	run, err := eng.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return eng.persist(ctx, id, run)
}

func (eng *Engine) persist(ctx context.Context, id string, run *session.Runner) (*store.SnapshotRecord, error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing session %s: %w", id, err)
	}
	if snap.Query == "" {
		return nil, ErrNoQuery
	}

	rec := store.NewSnapshotRecord(id, snap)
	if err := eng.store.SaveSnapshot(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving snapshot %s: %w", id, err)
	}
	metrics.SnapshotsSavedTotal.Inc()
	return rec, nil
}

// Close stops session id. With persist set and a store configured, its
// snapshot is saved first; a failed save is logged and does not keep the
// session alive.
func (eng *Engine) Close(ctx context.Context, id string, persist bool) error {
	run, err := eng.registry.Remove(id)
	if err != nil {
		return err
	}
	if persist {
		eng.persistQuietly(ctx, id, run)
	}
	eng.stop(id, run)
	return nil
}

// EvictIdle closes every session unused for longer than the idle TTL,
// saving snapshots first when a store is configured.
func (eng *Engine) EvictIdle(ctx context.Context) int {
	n := eng.registry.EvictIdle(eng.idleTTL, func(id string, run *session.Runner) {
		eng.persistQuietly(ctx, id, run)
		eng.stop(id, run)
		eng.log.Info("evicted idle session", "session", id)
	})
	metrics.SessionsEvictedTotal.Add(float64(n))
	return n
}

// PruneSnapshots deletes stored snapshots older than the retention period.
func (eng *Engine) PruneSnapshots(ctx context.Context) (int, error) {
	if eng.store == nil {
		return 0, nil
	}
	n, err := eng.store.PruneSnapshots(ctx, eng.retention)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	metrics.SnapshotsPrunedTotal.Add(float64(n))
	return n, nil
}

// ListSnapshots lists stored snapshots matching q.
func (eng *Engine) ListSnapshots(ctx context.Context, q *store.SnapshotQuery) ([]store.SnapshotRecord, int, error) {
	if eng.store == nil {
		return nil, 0, ErrNoStore
	}
	return eng.store.ListSnapshots(ctx, q)
}

// DeleteSnapshot removes a stored snapshot.
func (eng *Engine) DeleteSnapshot(ctx context.Context, id string) error {
	if eng.store == nil {
		return ErrNoStore
	}
	return eng.store.DeleteSnapshot(ctx, id)
}

// Ping checks the snapshot store, if any.
func (eng *Engine) Ping(ctx context.Context) error {
	if eng.store == nil {
		return nil
	}
	return eng.store.Ping(ctx)
}

// Shutdown persists and stops every session.
func (eng *Engine) Shutdown(ctx context.Context) {
	for _, id := range eng.registry.IDs() {
		run, err := eng.registry.Remove(id)
		if err != nil {
			continue
		}
		eng.persistQuietly(ctx, id, run)
		eng.stop(id, run)
	}
	eng.log.Info("sessions stopped")
}

func (eng *Engine) persistQuietly(ctx context.Context, id string, run *session.Runner) {
	if eng.store == nil {
		return
	}
	if _, err := eng.persist(ctx, id, run); err != nil && !errors.Is(err, ErrNoQuery) {
		eng.log.Warn("persisting session snapshot", "session", id, "error", err)
	}
}

func (eng *Engine) discard(id string) {
	run, err := eng.registry.Remove(id)
	if err != nil {
		return
	}
	eng.stop(id, run)
}

func (eng *Engine) stop(id string, run *session.Runner) {
	run.Close()
	eng.mu.Lock()
	delete(eng.inboxes, id)
	eng.mu.Unlock()
}
