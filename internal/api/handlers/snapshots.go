package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/product-search/internal/engine"
	"github.com/donaldgifford/product-search/internal/store"
)

// SnapshotsHandler handles stored snapshot endpoints.
type SnapshotsHandler struct {
	engine *engine.Engine
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(eng *engine.Engine) *SnapshotsHandler {
	return &SnapshotsHandler{engine: eng}
}

// ListSnapshotsInput is the input for listing stored snapshots.
type ListSnapshotsInput struct {
	QueryPrefix string `query:"query_prefix" doc:"Only snapshots whose query starts with this"`
	MinResults  int    `query:"min_results"  doc:"Minimum stored result count"                 minimum:"0"`
	Limit       int    `query:"limit"        doc:"Number of snapshots (default 50)"            minimum:"1" maximum:"500"`
	Offset      int    `query:"offset"       doc:"Pagination offset"                           minimum:"0"`
	OrderBy     string `query:"order_by"     doc:"Sort field"                                  enum:"updated_at,created_at,query,result_count,"`
}

// ListSnapshotsOutput is the response for listing stored snapshots.
type ListSnapshotsOutput struct {
	Body struct {
		Snapshots []store.SnapshotRecord `json:"snapshots"`
		Total     int                    `json:"total"`
		Limit     int                    `json:"limit"`
		Offset    int                    `json:"offset"`
	}
}

// DeleteSnapshotInput identifies a stored snapshot.
type DeleteSnapshotInput struct {
	ID string `path:"id" doc:"Snapshot ID"`
}

// ListSnapshots returns stored snapshot headers without results.
func (h *SnapshotsHandler) ListSnapshots(
	ctx context.Context,
	input *ListSnapshotsInput,
) (*ListSnapshotsOutput, error) {
	q := &store.SnapshotQuery{
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}
	if input.QueryPrefix != "" {
		q.QueryPrefix = &input.QueryPrefix
	}
	if input.MinResults != 0 {
		q.MinResults = &input.MinResults
	}

	recs, total, err := h.engine.ListSnapshots(ctx, q)
	if err != nil {
		return nil, sessionError(err)
	}
	if recs == nil {
		recs = []store.SnapshotRecord{}
	}

	resp := &ListSnapshotsOutput{}
	resp.Body.Snapshots = recs
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset
	return resp, nil
}

// DeleteSnapshot removes a stored snapshot.
func (h *SnapshotsHandler) DeleteSnapshot(ctx context.Context, input *DeleteSnapshotInput) (*struct{}, error) {
	if err := h.engine.DeleteSnapshot(ctx, input.ID); err != nil {
		return nil, sessionError(err)
	}
	return nil, nil
}

// RegisterSnapshotRoutes registers stored snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List stored snapshots",
		Description: "Returns stored session snapshots with optional filters and pagination.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusNotImplemented},
	}, h.ListSnapshots)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-snapshot",
		Method:        http.MethodDelete,
		Path:          "/api/v1/snapshots/{id}",
		Summary:       "Delete a stored snapshot",
		Description:   "Deletes a stored session snapshot by ID.",
		Tags:          []string{"snapshots"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusNotImplemented},
	}, h.DeleteSnapshot)
}
