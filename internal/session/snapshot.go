package session

import (
	domain "github.com/donaldgifford/product-search/pkg/types"
)

// Snapshot is the persisted state of a session: query, page and results,
// round-tripped verbatim across teardown and restore.
type Snapshot struct {
	Query   string           `json:"query"`
	Page    PageToken        `json:"page"`
	Results []domain.Product `json:"results"`
}

// Snapshot captures the session for persistence. Only applied state is
// recorded: the page is the last one whose records were applied, so a
// restored session asks for an in-flight or failed page again rather than
// skip it. While the first page of a new query is in flight the previous
// query's state is returned, or an empty snapshot when there is none.
func (s *Session) Snapshot() Snapshot {
	if s.state == StateLoading {
		if s.previous == nil {
			return Snapshot{Page: FirstPage, Results: []domain.Product{}}
		}
		prev := *s.previous
		prev.Results = append([]domain.Product{}, prev.Results...)
		return prev
	}
	return Snapshot{
		Query:   s.query,
		Page:    s.loaded,
		Results: s.results.Snapshot(),
	}
}

// View is a read-only summary of a session for hosts and API responses.
type View struct {
	Query    string           `json:"query"`
	State    State            `json:"state"`
	Reason   ExhaustedReason  `json:"reason,omitempty"`
	Page     PageToken        `json:"page"`
	Loading  bool             `json:"loading"`
	Restored bool             `json:"restored"`
	Total    int              `json:"total"`
	Offset   int              `json:"offset"`
	Results  []domain.Product `json:"results"`
}

// View returns a summary including at most limit results from offset.
// A negative limit includes every result.
func (s *Session) View(offset, limit int) View {
	if limit < 0 {
		limit = s.results.Len()
	}
	return View{
		Query:    s.query,
		State:    s.state,
		Reason:   s.reason,
		Page:     s.cursor.Current(),
		Loading:  s.cursor.Loading(),
		Restored: s.restored,
		Total:    s.results.Len(),
		Offset:   max(offset, 0),
		Results:  s.results.Window(offset, limit),
	}
}
