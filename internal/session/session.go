// Package session implements paginated search result sessions: page cursor,
// result accumulation, scroll-driven next-page triggering, and the state
// machine that ties them to an asynchronous catalog fetch.
//
// Session itself is a pure transition function over Events and produces
// Effects for its host to carry out. Runner is the host used by the server
// and the terminal screen.
package session

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/product-search/pkg/types"
)

// State is the lifecycle state of a Session.
type State string

// Session states.
const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateLoadingMore State = "loading_more"
	StateExhausted   State = "exhausted"
	StateEmpty       State = "empty"
)

// Settled reports whether no request is in flight in this state.
func (s State) Settled() bool {
	return s != StateLoading && s != StateLoadingMore
}

// ExhaustedReason records why a session stopped paginating.
type ExhaustedReason string

// Exhaustion reasons.
const (
	ReasonNone         ExhaustedReason = ""
	ReasonEndOfResults ExhaustedReason = "end_of_results"
	ReasonFetchFailed  ExhaustedReason = "fetch_failed"
)

// Request identifies one outstanding page fetch. Generation changes every
// time the session restarts, so completions of older requests can be told
// apart even when the query text is reused.
type Request struct {
	Query      string
	Page       PageToken
	Generation uint64
}

// Page is a successful fetch result.
type Page struct {
	Records []domain.Product
	// Final is set when the catalog reports this is the last page.
	Final bool
}

// Result is the tagged outcome of one fetch: Err is nil on success.
type Result struct {
	Page Page
	Err  error
}

// Event is an input to Session.Handle.
type Event interface {
	event()
}

// NewQuery starts a search for Query.
type NewQuery struct {
	Query string
}

// Scrolled reports the list position of the hosting view.
type Scrolled struct {
	FirstVisible int
	VisibleCount int
	TotalItems   int
}

// FetchCompleted delivers the outcome of a previously emitted FetchPage.
type FetchCompleted struct {
	Request Request
	Result  Result
}

// Restore rehydrates an idle session from a snapshot without fetching.
type Restore struct {
	Snapshot Snapshot
}

// Resume re-enters the view through back navigation.
type Resume struct {
	Query string
}

func (NewQuery) event()       {}
func (Scrolled) event()       {}
func (FetchCompleted) event() {}
func (Restore) event()        {}
func (Resume) event()         {}

// Effect is an action the host must carry out after Handle returns.
type Effect interface {
	effect()
}

// FetchPage asks the host to fetch a page and deliver FetchCompleted.
type FetchPage struct {
	Request Request
}

// ShowNotice asks the host to show a transient, non-fatal notice.
type ShowNotice struct {
	Notice Notice
}

// Change describes how the result list changed.
type Change string

// List changes.
const (
	ChangeReplaced Change = "replaced"
	ChangeAppended Change = "appended"
)

// RenderList asks the host to redraw the list. Count is the number of
// appended records, or the new total for ChangeReplaced.
type RenderList struct {
	Change Change
	Count  int
}

func (FetchPage) effect()  {}
func (ShowNotice) effect() {}
func (RenderList) effect() {}

// NoticeKind classifies user-facing notices.
type NoticeKind string

// Notice kinds.
const (
	NoticeNoResults   NoticeKind = "no_results"
	NoticeNoMoreItems NoticeKind = "no_more_items"
)

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Query   string     `json:"query"`
	Page    PageToken  `json:"page"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

func newNotice(kind NoticeKind, query string, page PageToken, err error) Notice {
	n := Notice{Kind: kind, Query: query, Page: page, Err: err}
	switch kind {
	case NoticeNoResults:
		n.Message = "No search results found"
	case NoticeNoMoreItems:
		n.Message = "There are no more items to load"
	}
	return n
}

// Session is the state of one search results view.
type Session struct {
	query      string
	state      State
	reason     ExhaustedReason
	generation uint64
	loaded     PageToken // last page whose records were applied
	restored   bool

	// previous is the last answered state, held while the first page of a
	// new query is in flight.
	previous *Snapshot

	cursor  *Cursor
	results *Accumulator
	trigger *Trigger
}

// New creates an idle session.
func New(opts ...TriggerOption) *Session {
	return &Session{
		state:   StateIdle,
		loaded:  FirstPage,
		cursor:  NewCursor(),
		results: NewAccumulator(),
		trigger: NewTrigger(opts...),
	}
}

// Handle applies ev and returns the effects the host must perform.
// A stale FetchCompleted returns no effects and an error wrapping
// ErrStaleCompletion; nothing is mutated in that case.
func (s *Session) Handle(ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case NewQuery:
		return s.onNewQuery(ev.Query)
	case Scrolled:
		return s.onScrolled(ev)
	case FetchCompleted:
		return s.onFetchCompleted(ev)
	case Restore:
		return s.onRestore(ev.Snapshot)
	case Resume:
		return s.onResume(ev.Query)
	default:
		return nil, fmt.Errorf("unknown event %T", ev)
	}
}

func (s *Session) onNewQuery(raw string) ([]Effect, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if q == s.query && !s.state.Settled() {
		// The in-flight request already serves this query.
		return nil, nil
	}
	return s.start(q)
}

func (s *Session) start(q string) ([]Effect, error) {
	if s.state != StateLoading && s.query != "" {
		prev := s.Snapshot()
		s.previous = &prev
	}

	s.query = q
	s.generation++
	s.reason = ReasonNone
	s.restored = false
	s.loaded = FirstPage
	s.cursor.Reset()
	s.results.Replace(nil)
	s.trigger.Reset(FirstPage)

	if err := s.cursor.BeginLoad(FirstPage); err != nil {
		return nil, err
	}
	s.state = StateLoading

	return []Effect{
		RenderList{Change: ChangeReplaced, Count: 0},
		FetchPage{Request: s.request(FirstPage)},
	}, nil
}

func (s *Session) onScrolled(ev Scrolled) ([]Effect, error) {
	if s.state != StateReady || s.cursor.Loading() {
		return nil, nil
	}
	next, ok := s.trigger.OnScrolled(ev.FirstVisible, ev.VisibleCount, ev.TotalItems)
	if !ok {
		return nil, nil
	}
	if err := s.cursor.BeginLoad(next); err != nil {
		return nil, err
	}
	s.state = StateLoadingMore
	return []Effect{FetchPage{Request: s.request(next)}}, nil
}

func (s *Session) onFetchCompleted(ev FetchCompleted) ([]Effect, error) {
	req := ev.Request
	if !s.awaiting(req) {
		return nil, fmt.Errorf("%w: %q page %s (generation %d)",
			ErrStaleCompletion, req.Query, req.Page, req.Generation)
	}

	res := ev.Result
	s.cursor.CompleteLoad(res.Err == nil)

	if s.state == StateLoading {
		return s.completeFirstPage(req, res), nil
	}
	return s.completeNextPage(req, res), nil
}

func (s *Session) completeFirstPage(req Request, res Result) []Effect {
	s.previous = nil
	if res.Err != nil {
		s.state = StateEmpty
		return []Effect{ShowNotice{Notice: newNotice(NoticeNoResults, s.query, req.Page, res.Err)}}
	}

	s.results.Replace(res.Page.Records)
	s.loaded = req.Page
	effects := []Effect{RenderList{Change: ChangeReplaced, Count: s.results.Len()}}

	switch {
	case s.results.Len() == 0:
		s.state = StateEmpty
		effects = append(effects, ShowNotice{Notice: newNotice(NoticeNoResults, s.query, req.Page, nil)})
	case res.Page.Final:
		s.exhaust(ReasonEndOfResults)
	default:
		s.state = StateReady
	}
	return effects
}

func (s *Session) completeNextPage(req Request, res Result) []Effect {
	if res.Err != nil {
		s.exhaust(ReasonFetchFailed)
		return []Effect{ShowNotice{Notice: newNotice(NoticeNoMoreItems, s.query, req.Page, res.Err)}}
	}

	n := s.results.Append(res.Page.Records)
	if n == 0 {
		s.exhaust(ReasonEndOfResults)
		return []Effect{ShowNotice{Notice: newNotice(NoticeNoMoreItems, s.query, req.Page, nil)}}
	}

	s.loaded = req.Page
	effects := []Effect{RenderList{Change: ChangeAppended, Count: n}}
	if res.Page.Final {
		s.exhaust(ReasonEndOfResults)
	} else {
		s.state = StateReady
	}
	return effects
}

func (s *Session) onRestore(snap Snapshot) ([]Effect, error) {
	if s.state != StateIdle {
		return nil, fmt.Errorf("restoring snapshot: session is %s, not idle", s.state)
	}
	q := strings.TrimSpace(snap.Query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	page, err := ParsePageToken(string(snap.Page))
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	s.query = q
	s.generation++
	s.reason = ReasonNone
	s.restored = true
	s.previous = nil
	s.loaded = page
	s.cursor.restore(page)
	s.results.Restore(snap.Results)
	s.trigger.Reset(page)

	if s.results.Len() == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateReady
	}
	return []Effect{RenderList{Change: ChangeReplaced, Count: s.results.Len()}}, nil
}

func (s *Session) onResume(raw string) ([]Effect, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		q = s.query
	}
	if s.state == StateIdle || q != s.query {
		return s.onNewQuery(q)
	}
	render := RenderList{Change: ChangeReplaced, Count: s.results.Len()}
	if s.state == StateExhausted && s.reason == ReasonFetchFailed {
		return s.retryNextPage(render)
	}
	return []Effect{render}, nil
}

// retryNextPage requests the page after the last applied one again. It is
// how a session exhausted by a failed load-more recovers.
func (s *Session) retryNextPage(render RenderList) ([]Effect, error) {
	next := s.loaded.Next()
	if err := s.cursor.BeginLoad(next); err != nil {
		return nil, err
	}
	s.reason = ReasonNone
	s.trigger.Reset(next)
	s.state = StateLoadingMore
	return []Effect{render, FetchPage{Request: s.request(next)}}, nil
}

func (s *Session) awaiting(req Request) bool {
	return s.cursor.Loading() &&
		req.Generation == s.generation &&
		req.Query == s.query &&
		req.Page == s.cursor.Current()
}

func (s *Session) exhaust(reason ExhaustedReason) {
	s.state = StateExhausted
	s.reason = reason
}

func (s *Session) request(page PageToken) Request {
	return Request{Query: s.query, Page: page, Generation: s.generation}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Query returns the active query, empty while idle.
func (s *Session) Query() string { return s.query }

// Reason returns why the session is exhausted, if it is.
func (s *Session) Reason() ExhaustedReason { return s.reason }

// Restored reports whether the session was rehydrated from a snapshot.
func (s *Session) Restored() bool { return s.restored }

// Cursor exposes the page cursor for inspection.
func (s *Session) Cursor() *Cursor { return s.cursor }

// Results exposes the accumulated results for inspection.
func (s *Session) Results() *Accumulator { return s.results }

// Generation returns the restart counter used to tag requests.
func (s *Session) Generation() uint64 { return s.generation }
