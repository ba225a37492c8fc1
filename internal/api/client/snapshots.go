package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/donaldgifford/product-search/internal/store"
)

// SnapshotList is one page of stored snapshot headers.
type SnapshotList struct {
	Snapshots []store.SnapshotRecord `json:"snapshots"`
	Total     int                    `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// ListSnapshotsParams filters a snapshot listing.
type ListSnapshotsParams struct {
	QueryPrefix string
	MinResults  int
	Limit       int
	Offset      int
	OrderBy     string
}

// ListSnapshots returns stored snapshot headers.
func (c *Client) ListSnapshots(ctx context.Context, p ListSnapshotsParams) (*SnapshotList, error) {
	params := url.Values{}
	if p.QueryPrefix != "" {
		params.Set("query_prefix", p.QueryPrefix)
	}
	if p.MinResults > 0 {
		params.Set("min_results", strconv.Itoa(p.MinResults))
	}
	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		params.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.OrderBy != "" {
		params.Set("order_by", p.OrderBy)
	}

	path := "/api/v1/snapshots"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var list SnapshotList
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteSnapshot removes a stored snapshot.
func (c *Client) DeleteSnapshot(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/snapshots/"+url.PathEscape(id), nil)
}
