package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

// maxInsertParams stays under the Postgres limit of 65535 bind parameters.
const maxInsertParams = 60000

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// HasAny reports whether kind already holds a row in rng.
func (a *Adapter) HasAny(ctx context.Context, kind storage.Kind, rng storage.TimeRange) (bool, error) {
	stmt, ok := a.stmtHasAny[kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", storage.ErrUnknownKind, kind)
	}

	spec, err := storage.Table(kind)
	if err != nil {
		return false, err
	}

	var row *sql.Row
	if spec.Ranged {
		row = stmt.QueryRowContext(ctx, rng.From, rng.To)
	} else {
		row = stmt.QueryRowContext(ctx)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", spec.Table, err)
	}
	return exists, nil
}

// InsertBatch writes records with ON CONFLICT DO NOTHING on the natural key.
// Records without a key, and repeats of a key within the batch, are dropped first.
func (a *Adapter) InsertBatch(ctx context.Context, kind storage.Kind, records []storage.Record) (int64, error) {
	spec, err := storage.Table(kind)
	if err != nil {
		return 0, err
	}

	records = dedupeByKey(records)
	if len(records) == 0 {
		return 0, nil
	}

	chunkSize := maxInsertParams / len(spec.Columns)
	var inserted int64
	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))

		query, args, err := buildInsert(spec, records[start:end])
		if err != nil {
			return inserted, err
		}

		res, err := a.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert into %s: %w", spec.Table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to read affected rows for %s: %w", spec.Table, err)
		}
		inserted += n
	}

	slog.Debug("[Postgres] Inserted batch",
		"table", spec.Table,
		"offered", len(records),
		"inserted", inserted)
	return inserted, nil
}

// DeleteRange purges kind's rows in rng. Only ranged kinds can be purged.
func (a *Adapter) DeleteRange(ctx context.Context, kind storage.Kind, rng storage.TimeRange) (int64, error) {
	stmt, ok := a.stmtDelete[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q cannot be purged by range", storage.ErrUnknownKind, kind)
	}

	res, err := stmt.ExecContext(ctx, rng.From, rng.To)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s range: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// ListAgents returns the whole agent directory.
func (a *Adapter) ListAgents(ctx context.Context) ([]storage.Agent, error) {
	rows, err := a.stmtListAgent.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	agents := []storage.Agent{}
	for rows.Next() {
		var agent storage.Agent
		if err := rows.Scan(&agent.UserID, &agent.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}
	return agents, nil
}

func buildInsert(spec storage.TableSpec, records []storage.Record) (string, []any, error) {
	builder := psql.Insert(spec.Table).Columns(spec.Columns...)
	for _, r := range records {
		builder = builder.Values(r.Values()...)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT (" + spec.NaturalKey + ") DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build insert for %s: %w", spec.Table, err)
	}
	return query, args, nil
}

func dedupeByKey(records []storage.Record) []storage.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]storage.Record, 0, len(records))
	for _, r := range records {
		key := r.NaturalKey()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
