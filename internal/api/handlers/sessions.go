package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/product-search/internal/engine"
	"github.com/donaldgifford/product-search/internal/launch"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
)

const defaultWindow = 50

// SessionsHandler handles search session endpoints.
type SessionsHandler struct {
	engine *engine.Engine
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(eng *engine.Engine) *SessionsHandler {
	return &SessionsHandler{engine: eng}
}

// --- Input/Output types ---

// LaunchBody describes how the results view is entered.
type LaunchBody struct {
	Action      string `json:"action,omitempty"       enum:"search,view," doc:"search for a system search invocation, view for in-app navigation"`
	SearchQuery string `json:"search_query,omitempty" doc:"Query from a system search invocation"`
	Query       string `json:"query,omitempty"        doc:"Query passed as a navigation parameter" example:"red shoes"`
	BackNav     bool   `json:"back_nav,omitempty"     doc:"Re-enter through back navigation, keeping the current page"`
}

func (b *LaunchBody) intent() launch.Intent {
	action := launch.Action(b.Action)
	if action == "" {
		action = launch.ActionView
	}
	return launch.Intent{
		Action:      action,
		SearchQuery: b.SearchQuery,
		Query:       b.Query,
		BackNav:     b.BackNav,
	}
}

// SessionBody is a session ID plus a view of its state.
type SessionBody struct {
	ID string `json:"id" doc:"Session ID"`
	session.View
}

// SessionOutput is the response for endpoints returning a session view.
type SessionOutput struct {
	Body SessionBody
}

// CreateSessionInput is the input for creating a session.
type CreateSessionInput struct {
	Body LaunchBody `required:"false"`
}

// SessionIDInput identifies a session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// GetSessionInput is the input for viewing a session.
type GetSessionInput struct {
	ID     string `path:"id"      doc:"Session ID"`
	Offset int    `query:"offset" doc:"Index of the first result to include" minimum:"0"`
	Limit  int    `query:"limit"  doc:"Maximum results to include (default 50)" minimum:"0" maximum:"500"`
}

// QueryInput is the input for re-entering a session with a query.
type QueryInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body LaunchBody
}

// ScrollInput reports the list position of a session's view.
type ScrollInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		FirstVisible int `json:"first_visible" minimum:"0" doc:"Index of the first visible row"`
		VisibleCount int `json:"visible_count" minimum:"0" doc:"Number of visible rows"`
		TotalItems   int `json:"total_items"   minimum:"0" doc:"Number of rows the view has rendered"`
	}
}

// NoticesOutput is the response for draining notices.
type NoticesOutput struct {
	Body struct {
		Notices []session.Notice `json:"notices"`
	}
}

// SnapshotOutput is the response for capturing a snapshot.
type SnapshotOutput struct {
	Body session.Snapshot
}

// SaveOutput is the response for persisting a snapshot.
type SaveOutput struct {
	Body store.SnapshotRecord
}

// RestoreInput is the input for restoring a session.
type RestoreInput struct {
	Body struct {
		SnapshotID string            `json:"snapshot_id,omitempty" doc:"ID of a stored snapshot"`
		Snapshot   *session.Snapshot `json:"snapshot,omitempty"    doc:"Inline snapshot, used when snapshot_id is empty"`
	}
}

// CloseSessionInput is the input for closing a session.
type CloseSessionInput struct {
	ID      string `path:"id"       doc:"Session ID"`
	Persist bool   `query:"persist" doc:"Save the snapshot before closing (default true)" default:"true"`
}

// ListSessionsOutput is the response for listing sessions.
type ListSessionsOutput struct {
	Body struct {
		IDs []string `json:"ids"`
	}
}

// --- Handlers ---

// ListSessions returns the IDs of all running sessions.
func (h *SessionsHandler) ListSessions(_ context.Context, _ *struct{}) (*ListSessionsOutput, error) {
	out := &ListSessionsOutput{}
	out.Body.IDs = h.engine.IDs()
	return out, nil
}

// CreateSession starts a session and, when a query is given, its first
// search.
func (h *SessionsHandler) CreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	id, err := h.engine.Create(ctx, launch.QueryFrom(input.Body.intent()))
	if err != nil {
		return nil, sessionError(err)
	}
	return h.view(ctx, id, 0, defaultWindow)
}

// GetSession returns the state of a session with a window of its results.
func (h *SessionsHandler) GetSession(ctx context.Context, input *GetSessionInput) (*SessionOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultWindow
	}
	return h.view(ctx, input.ID, input.Offset, limit)
}

// Query starts a new search in a session, or resumes it on back navigation.
func (h *SessionsHandler) Query(ctx context.Context, input *QueryInput) (*SessionOutput, error) {
	if err := h.engine.Send(ctx, input.ID, launch.Event(input.Body.intent())); err != nil {
		return nil, sessionError(err)
	}
	return h.view(ctx, input.ID, 0, defaultWindow)
}

// Scroll reports a list position, which may trigger loading the next page.
func (h *SessionsHandler) Scroll(ctx context.Context, input *ScrollInput) (*SessionOutput, error) {
	ev := session.Scrolled{
		FirstVisible: input.Body.FirstVisible,
		VisibleCount: input.Body.VisibleCount,
		TotalItems:   input.Body.TotalItems,
	}
	if err := h.engine.Send(ctx, input.ID, ev); err != nil {
		return nil, sessionError(err)
	}
	return h.view(ctx, input.ID, input.Body.FirstVisible, defaultWindow)
}

// Notices drains the notices a session produced since the last call.
func (h *SessionsHandler) Notices(_ context.Context, input *SessionIDInput) (*NoticesOutput, error) {
	notices, err := h.engine.Notices(input.ID)
	if err != nil {
		return nil, sessionError(err)
	}
	out := &NoticesOutput{}
	out.Body.Notices = notices
	return out, nil
}

// Snapshot returns the persistable state of a session.
func (h *SessionsHandler) Snapshot(ctx context.Context, input *SessionIDInput) (*SnapshotOutput, error) {
	snap, err := h.engine.Snapshot(ctx, input.ID)
	if err != nil {
		return nil, sessionError(err)
	}
	return &SnapshotOutput{Body: snap}, nil
}

// Save persists the snapshot of a session under the session ID.
func (h *SessionsHandler) Save(ctx context.Context, input *SessionIDInput) (*SaveOutput, error) {
	rec, err := h.engine.Save(ctx, input.ID)
	if err != nil {
		return nil, sessionError(err)
	}
	return &SaveOutput{Body: *rec}, nil
}

// Restore starts a session from a stored or inline snapshot.
func (h *SessionsHandler) Restore(ctx context.Context, input *RestoreInput) (*SessionOutput, error) {
	if input.Body.SnapshotID == "" && input.Body.Snapshot == nil {
		return nil, huma.Error422UnprocessableEntity("snapshot_id or snapshot is required")
	}
	id, err := h.engine.Restore(ctx, input.Body.SnapshotID, input.Body.Snapshot)
	if err != nil {
		return nil, sessionError(err)
	}
	return h.view(ctx, id, 0, defaultWindow)
}

// CloseSession stops a session.
func (h *SessionsHandler) CloseSession(ctx context.Context, input *CloseSessionInput) (*struct{}, error) {
	if err := h.engine.Close(ctx, input.ID, input.Persist); err != nil {
		return nil, sessionError(err)
	}
	return nil, nil
}

func (h *SessionsHandler) view(ctx context.Context, id string, offset, limit int) (*SessionOutput, error) {
	v, err := h.engine.View(ctx, id, offset, limit)
	if err != nil {
		return nil, sessionError(err)
	}
	return &SessionOutput{Body: SessionBody{ID: id, View: v}}, nil
}

// sessionError maps engine and session errors to HTTP errors.
func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return huma.Error404NotFound("session not found")
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("snapshot not found")
	case errors.Is(err, session.ErrEmptyQuery),
		errors.Is(err, session.ErrInvalidPageToken),
		errors.Is(err, engine.ErrNoQuery):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, session.ErrClosed):
		return huma.Error410Gone("session closed")
	case errors.Is(err, session.ErrRegistryFull):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, engine.ErrNoStore):
		return huma.Error501NotImplemented(err.Error())
	default:
		return huma.Error500InternalServerError("session operation failed: " + err.Error())
	}
}

// RegisterSessionRoutes registers session endpoints with the Huma API.
func RegisterSessionRoutes(api huma.API, h *SessionsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-sessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions",
		Summary:     "List sessions",
		Description: "Returns the IDs of all running search sessions.",
		Tags:        []string{"sessions"},
	}, h.ListSessions)

	huma.Register(api, huma.Operation{
		OperationID:   "create-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create a session",
		Description:   "Starts a search session. A query from a system search wins over the navigation parameter.",
		Tags:          []string{"sessions"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID:   "restore-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/restore",
		Summary:       "Restore a session",
		Description:   "Starts a session from a stored or inline snapshot without fetching.",
		Tags:          []string{"sessions"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusNotImplemented},
	}, h.Restore)

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get a session",
		Description: "Returns the state of a session and a window of its results.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "query-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/query",
		Summary:     "Search in a session",
		Description: "Starts a new search, or resumes the current page on back navigation.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.Query)

	huma.Register(api, huma.Operation{
		OperationID: "scroll-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/scroll",
		Summary:     "Report a scroll position",
		Description: "Reports the visible rows; loads the next page when the end is near.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.Scroll)

	huma.Register(api, huma.Operation{
		OperationID: "session-notices",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/notices",
		Summary:     "Drain notices",
		Description: "Returns and clears the notices produced since the last call.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.Notices)

	huma.Register(api, huma.Operation{
		OperationID: "session-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/snapshot",
		Summary:     "Get a snapshot",
		Description: "Returns the query, page and results of a session.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.Snapshot)

	huma.Register(api, huma.Operation{
		OperationID: "save-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/save",
		Summary:     "Save a snapshot",
		Description: "Persists the session snapshot under the session ID.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusNotImplemented},
	}, h.Save)

	huma.Register(api, huma.Operation{
		OperationID:   "close-session",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "Close a session",
		Description:   "Stops a session, saving its snapshot first unless persist=false.",
		Tags:          []string{"sessions"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.CloseSession)
}
