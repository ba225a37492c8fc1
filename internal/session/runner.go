package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/product-search/internal/metrics"
	"github.com/donaldgifford/product-search/pkg/logger"
)

const defaultUpdateBuffer = 16

// Fetcher loads one page of results for a query. Implementations report
// any failure as an error; the session does not distinguish causes.
type Fetcher interface {
	Fetch(ctx context.Context, query string, page PageToken) (Page, error)
}

// Notifier shows transient notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Update is published after every applied event.
type Update struct {
	View   View
	Change Change
	Count  int
}

// Runner hosts a Session on a single goroutine. Every event, including
// fetch completions, is applied on that goroutine, so the Session needs no
// locking. Fetches run on their own goroutines and report back as events.
type Runner struct {
	session  *Session
	fetcher  Fetcher
	notifier Notifier
	log      *slog.Logger

	triggerOpts  []TriggerOption
	updateBuffer int
	viewLimit    int

	inbox   chan func()
	updates chan Update
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	fetches sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	started bool
	closed  bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithNotifier sets where notices are delivered.
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithTrigger configures the scroll trigger of the hosted session.
func WithTrigger(opts ...TriggerOption) RunnerOption {
	return func(r *Runner) {
		r.triggerOpts = append(r.triggerOpts, opts...)
	}
}

// WithUpdateBuffer sets the capacity of the Updates channel.
func WithUpdateBuffer(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.updateBuffer = n
		}
	}
}

// WithUpdateViewLimit caps how many results each published Update carries.
// Negative means all of them.
func WithUpdateViewLimit(n int) RunnerOption {
	return func(r *Runner) {
		r.viewLimit = n
	}
}

// NewRunner creates a Runner around a fresh idle session. Call Start before
// sending events.
func NewRunner(f Fetcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:      f,
		log:          logger.Discard(),
		updateBuffer: defaultUpdateBuffer,
		viewLimit:    -1,
		inbox:        make(chan func()),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.session = New(r.triggerOpts...)
	r.updates = make(chan Update, r.updateBuffer)
	return r
}

// Start launches the coordination goroutine. It stops when ctx is canceled
// or Close is called. Start is a no-op after the first call or once the
// runner is closed.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(ctx)
	metrics.SessionsActive.Inc()
	go r.loop()
}

func (r *Runner) loop() {
	defer func() {
		metrics.SessionsActive.Dec()
		close(r.updates)
		close(r.done)
	}()
	for {
		select {
		case <-r.ctx.Done():
			return
		case fn := <-r.inbox:
			fn()
		}
	}
}

// Close stops the runner and waits for outstanding fetches to return.
func (r *Runner) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		cancel := r.cancel
		r.mu.Unlock()

		if cancel == nil {
			close(r.updates)
			close(r.done)
			return
		}
		cancel()
		<-r.done
		r.fetches.Wait()
	})
}

// Done is closed once the runner has stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Updates delivers a summary after each applied event. Slow readers miss
// intermediate updates but always see the latest one. The channel is closed
// when the runner stops.
func (r *Runner) Updates() <-chan Update {
	return r.updates
}

// Send applies ev on the coordination goroutine and returns the error the
// session reported for it.
func (r *Runner) Send(ctx context.Context, ev Event) error {
	errc := make(chan error, 1)
	if err := r.do(ctx, func() { errc <- r.apply(ev) }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns a summary with at most limit results from offset.
func (r *Runner) View(ctx context.Context, offset, limit int) (View, error) {
	return inspect(ctx, r, func(s *Session) View { return s.View(offset, limit) })
}

// Snapshot captures the hosted session for persistence.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	return inspect(ctx, r, (*Session).Snapshot)
}

func inspect[T any](ctx context.Context, r *Runner, fn func(*Session) T) (T, error) {
	var zero T
	out := make(chan T, 1)
	if err := r.do(ctx, func() { out <- fn(r.session) }); err != nil {
		return zero, err
	}
	select {
	case v := <-out:
		return v, nil
	case <-r.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Runner) do(ctx context.Context, fn func()) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) apply(ev Event) error {
	effects, err := r.session.Handle(ev)
	if err != nil {
		if errors.Is(err, ErrStaleCompletion) {
			metrics.StaleCompletionsTotal.Inc()
			r.log.Debug("discarded stale fetch completion", "err", err)
			return nil
		}
		return err
	}

	u := Update{}
	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchPage:
			r.dispatch(e.Request)
		case ShowNotice:
			r.notify(e.Notice)
		case RenderList:
			u.Change = e.Change
			u.Count = e.Count
		}
	}

	u.View = r.session.View(0, r.viewLimit)
	r.publish(u)
	return nil
}

func (r *Runner) dispatch(req Request) {
	if req.Page.IsFirst() {
		metrics.PageRequestsTotal.WithLabelValues("first").Inc()
	} else {
		metrics.PageRequestsTotal.WithLabelValues("next").Inc()
		metrics.LoadMoreTriggersTotal.Inc()
	}

	r.log.Debug("fetching page", "query", req.Query, "page", req.Page)

	r.fetches.Add(1)
	go func() {
		defer r.fetches.Done()

		start := time.Now()
		page, err := r.fetcher.Fetch(r.ctx, req.Query, req.Page)
		metrics.PageFetchDuration.Observe(time.Since(start).Seconds())

		res := Result{Page: page}
		if err != nil {
			res = Result{Err: &FetchError{Query: req.Query, Page: req.Page, Err: err}}
			metrics.PageFetchFailuresTotal.Inc()
		}

		_ = r.do(context.Background(), func() { //nolint:errcheck // ErrClosed means nobody is waiting
			if err := r.apply(FetchCompleted{Request: req, Result: res}); err != nil {
				r.log.Warn("applying fetch completion", "query", req.Query, "page", req.Page, "err", err)
			}
		})
	}()
}

func (r *Runner) notify(n Notice) {
	metrics.NoticesTotal.WithLabelValues(string(n.Kind)).Inc()
	if n.Err != nil {
		r.log.Info("page load failed", "query", n.Query, "page", n.Page, "kind", n.Kind, "err", n.Err)
	}
	if r.notifier != nil {
		r.notifier.Notify(r.ctx, n)
	}
}

func (r *Runner) publish(u Update) {
	select {
	case r.updates <- u:
		return
	default:
	}
	// Full: drop the oldest so the latest state is always delivered.
	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- u:
	default:
	}
}
