package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByUpdated = "updated_at"
	orderByCreated = "created_at"
	orderByQuery   = "query"
	orderByResults = "result_count"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByUpdated: "updated_at DESC",
	orderByCreated: "created_at DESC",
	orderByQuery:   "query ASC",
	orderByResults: "result_count DESC",
}

const defaultOrderBy = "updated_at DESC"

const baseSnapshotsSelect = `SELECT id, query, page, result_count, created_at, updated_at
FROM session_snapshots`

const countSnapshotsSelect = "SELECT COUNT(*) FROM session_snapshots"

// SnapshotQuery defines optional filters for snapshot listings.
type SnapshotQuery struct {
	QueryPrefix *string
	MinResults  *int
	Limit       int // default 50
	Offset      int
	OrderBy     string // "updated_at", "created_at", "query", "result_count"
}

// placeholder renders the n-th positional parameter for a SQL dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string   { return fmt.Sprintf("$%d", n) }
func questionPlaceholder(n int) string { return fmt.Sprintf("?%d", n) }

// ToSQL builds the data and count queries for q using PostgreSQL
// placeholders.
func (q *SnapshotQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	return q.toSQL(dollarPlaceholder)
}

func (q *SnapshotQuery) toSQL(ph placeholder) (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.QueryPrefix != nil && *q.QueryPrefix != "" {
		conditions = append(conditions, fmt.Sprintf("query LIKE %s", ph(paramIdx)))
		args = append(args, escapeLike(*q.QueryPrefix)+"%")
		paramIdx++
	}

	if q.MinResults != nil {
		conditions = append(conditions, fmt.Sprintf("result_count >= %s", ph(paramIdx)))
		args = append(args, *q.MinResults)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if col, ok := validOrderBy[q.OrderBy]; ok {
		orderClause = col
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s, id LIMIT %d OFFSET %d",
		baseSnapshotsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countSnapshotsSelect + whereClause

	return dataSQL, countSQL, args
}

// escapeLike strips LIKE wildcards so a prefix filter matches literally in
// both dialects.
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
