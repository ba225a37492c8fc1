// Package launch turns the ways a results view can be entered into session
// events.
package launch

import (
	"strings"

	"github.com/donaldgifford/product-search/internal/session"
)

// Action says how the results view was entered.
type Action string

// Launch actions.
const (
	// ActionSearch is a system search invocation carrying SearchQuery.
	ActionSearch Action = "search"
	// ActionView is in-app navigation carrying Query as a parameter.
	ActionView Action = "view"
)

// Intent describes one entry into the results view.
type Intent struct {
	Action      Action
	SearchQuery string
	Query       string
	// BackNav is set when the user navigates back to an existing view.
	BackNav bool
}

// QueryFrom picks the query for in. A system search query wins; the
// navigation parameter is used when there is none.
func QueryFrom(in Intent) string {
	if in.Action == ActionSearch {
		if q := strings.TrimSpace(in.SearchQuery); q != "" {
			return q
		}
	}
	return strings.TrimSpace(in.Query)
}

// Event maps in to the session event it should produce. Back navigation
// resumes the current page instead of starting over at page 1.
func Event(in Intent) session.Event {
	q := QueryFrom(in)
	if in.BackNav {
		return session.Resume{Query: q}
	}
	return session.NewQuery{Query: q}
}
