package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
)

// Session is a session ID plus a view of its state.
type Session struct {
	ID string `json:"id"`
	session.View
}

// LaunchRequest describes how a session view is entered.
type LaunchRequest struct {
	Action      string `json:"action,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
	Query       string `json:"query,omitempty"`
	BackNav     bool   `json:"back_nav,omitempty"`
}

type scrollRequest struct {
	FirstVisible int `json:"first_visible"`
	VisibleCount int `json:"visible_count"`
	TotalItems   int `json:"total_items"`
}

type restoreRequest struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	Snapshot   *session.Snapshot `json:"snapshot,omitempty"`
}

// ListSessions returns the IDs of all running sessions.
func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	var resp struct {
		IDs []string `json:"ids"`
	}
	if err := c.get(ctx, "/api/v1/sessions", &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// CreateSession starts a session.
func (c *Client) CreateSession(ctx context.Context, req LaunchRequest) (*Session, error) {
	var s Session
	if err := c.post(ctx, "/api/v1/sessions", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns a session with limit results from offset.
func (c *Client) GetSession(ctx context.Context, id string, offset, limit int) (*Session, error) {
	params := url.Values{}
	if offset > 0 {
		params.Set("offset", fmt.Sprint(offset))
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := "/api/v1/sessions/" + url.PathEscape(id)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var s Session
	if err := c.get(ctx, path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Query starts a new search in a session, or resumes it with BackNav.
func (c *Client) Query(ctx context.Context, id string, req LaunchRequest) (*Session, error) {
	var s Session
	if err := c.post(ctx, sessionPath(id, "query"), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Scroll reports a list position for a session.
func (c *Client) Scroll(ctx context.Context, id string, firstVisible, visibleCount, totalItems int) (*Session, error) {
	req := scrollRequest{
		FirstVisible: firstVisible,
		VisibleCount: visibleCount,
		TotalItems:   totalItems,
	}
	var s Session
	if err := c.post(ctx, sessionPath(id, "scroll"), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Notices drains the pending notices of a session.
func (c *Client) Notices(ctx context.Context, id string) ([]session.Notice, error) {
	var resp struct {
		Notices []session.Notice `json:"notices"`
	}
	if err := c.get(ctx, sessionPath(id, "notices"), &resp); err != nil {
		return nil, err
	}
	return resp.Notices, nil
}

// Snapshot returns the persistable state of a session.
func (c *Client) Snapshot(ctx context.Context, id string) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := c.get(ctx, sessionPath(id, "snapshot"), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save persists the snapshot of a session on the server.
func (c *Client) Save(ctx context.Context, id string) (*store.SnapshotRecord, error) {
	var rec store.SnapshotRecord
	if err := c.post(ctx, sessionPath(id, "save"), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RestoreStored starts a session from a snapshot stored on the server.
func (c *Client) RestoreStored(ctx context.Context, snapshotID string) (*Session, error) {
	return c.restore(ctx, restoreRequest{SnapshotID: snapshotID})
}

// RestoreSnapshot starts a session from snap.
func (c *Client) RestoreSnapshot(ctx context.Context, snap *session.Snapshot) (*Session, error) {
	return c.restore(ctx, restoreRequest{Snapshot: snap})
}

func (c *Client) restore(ctx context.Context, req restoreRequest) (*Session, error) {
	var s Session
	if err := c.post(ctx, "/api/v1/sessions/restore", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CloseSession stops a session, saving its snapshot first when persist is
// set.
func (c *Client) CloseSession(ctx context.Context, id string, persist bool) error {
	path := "/api/v1/sessions/" + url.PathEscape(id) + "?persist=" + fmt.Sprint(persist)
	return c.del(ctx, path, nil)
}

func sessionPath(id, action string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + "/" + action
}
