package store

// SQL query constants for PostgresStore.
const (
	queryUpsertSnapshot = `
		INSERT INTO session_snapshots (id, query, page, results, result_count, created_at, updated_at)
		VALUES (@id, @query, @page, @results, @result_count, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			query = EXCLUDED.query,
			page = EXCLUDED.page,
			results = EXCLUDED.results,
			result_count = EXCLUDED.result_count,
			updated_at = now()
		RETURNING created_at, updated_at`

	queryGetSnapshot = `
		SELECT id, query, page, results, result_count, created_at, updated_at
		FROM session_snapshots
		WHERE id = $1`

	queryDeleteSnapshot = `DELETE FROM session_snapshots WHERE id = $1`

	queryPruneSnapshots = `DELETE FROM session_snapshots WHERE updated_at < $1`
)

// SQL query constants for SQLiteStore. Timestamps are Unix milliseconds.
const (
	sqliteUpsertSnapshot = `
		INSERT INTO session_snapshots (id, query, page, results, result_count, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?6)
		ON CONFLICT (id) DO UPDATE SET
			query = excluded.query,
			page = excluded.page,
			results = excluded.results,
			result_count = excluded.result_count,
			updated_at = excluded.updated_at
		RETURNING created_at, updated_at`

	sqliteGetSnapshot = `
		SELECT id, query, page, results, result_count, created_at, updated_at
		FROM session_snapshots
		WHERE id = ?1`

	sqliteDeleteSnapshot = `DELETE FROM session_snapshots WHERE id = ?1`

	sqlitePruneSnapshots = `DELETE FROM session_snapshots WHERE updated_at < ?1`
)
