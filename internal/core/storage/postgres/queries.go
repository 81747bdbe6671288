package postgres

import "fmt"

// SQL for the record store. Table names only ever come from storage.Table,
// never from request input.

const (
	// queryTableExists backs validateSchema.
	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`

	// queryGetToken reads the upstream access token stored for a caller.
	queryGetToken = `
		SELECT access_token, expires_at
		FROM access_tokens
		WHERE user_id = $1
	`

	// queryListAgents returns the full agent directory.
	queryListAgents = `
		SELECT user_id, user_name
		FROM agents
		ORDER BY user_name ASC, user_id ASC
	`
)

// hasAnyInRangeQuery probes for one row with start_time in [$1, $2].
func hasAnyInRangeQuery(table string) string {
	return fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE start_time BETWEEN $1 AND $2)`, table)
}

// hasAnyQuery probes unranged tables (the agent directory).
func hasAnyQuery(table string) string {
	return fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s)`, table)
}

// deleteRangeQuery purges rows with start_time in [$1, $2].
func deleteRangeQuery(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE start_time BETWEEN $1 AND $2`, table)
}
