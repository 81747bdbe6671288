package aggregation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	v1 "github.com/aevon-lab/cc-reporting/internal/api/v1"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/aevon-lab/cc-reporting/internal/ingestion"
)

// ErrInvalidRequest marks report validation errors that should return HTTP 400.
var ErrInvalidRequest = errors.New("invalid report request")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RangeSyncer keeps the local store populated for the ranges being reported on.
type RangeSyncer interface {
	EnsureRange(ctx context.Context, callerID string, kind storage.Kind, rng storage.TimeRange) error
	ForceRefresh(ctx context.Context, callerID string, kind storage.Kind, rng storage.TimeRange) (*ingestion.RunStats, error)
	EnsureDirectory(ctx context.Context, callerID string) error
}

// AgentLister reads the stored agent directory.
type AgentLister interface {
	ListAgents(ctx context.Context) ([]storage.Agent, error)
}

// Querier is the read side of *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Service builds reports over the record store. Every report first makes
// sure its range has been synced.
type Service struct {
	db     Querier
	syncer RangeSyncer
	agents AgentLister
}

func NewService(db Querier, syncer RangeSyncer, agents AgentLister) *Service {
	if db == nil {
		panic("aggregation: db must not be nil")
	}
	if syncer == nil {
		panic("aggregation: syncer must not be nil")
	}
	if agents == nil {
		panic("aggregation: agent lister must not be nil")
	}
	return &Service{db: db, syncer: syncer, agents: agents}
}

// Request is one report invocation.
type Request struct {
	CallerID string
	Range    storage.TimeRange
	Page     v1.PageRequest
	// Refresh forces re-ingestion of the range instead of ensure-if-empty.
	Refresh bool
	Filters Filters
	// Order is ASC or DESC on start_time for row-level reports.
	Order string
}

// Result is one page of a report.
type Result[T any] struct {
	Rows         []T
	TotalRecords int64
	Page         v1.PageRequest
	Agents       []storage.Agent
}

// Filters maps a column to the values it may take. Empty lists are ignored.
type Filters map[string][]string

func (f Filters) where() sq.Sqlizer {
	eq := sq.Eq{}
	for col, values := range f {
		if len(values) > 0 {
			eq[col] = values
		}
	}
	if len(eq) == 0 {
		return nil
	}
	return eq
}

// prepare validates the request and syncs its range.
func (s *Service) prepare(ctx context.Context, kind storage.Kind, req *Request) error {
	if err := req.Range.Validate(); err != nil {
		return invalidRequestf("%v", err)
	}
	req.Page = req.Page.Normalize()
	if req.Order != "DESC" {
		req.Order = "ASC"
	}

	if req.Refresh {
		if _, err := s.syncer.ForceRefresh(ctx, req.CallerID, kind, req.Range); err != nil {
			return fmt.Errorf("refresh %s: %w", kind, err)
		}
		return nil
	}
	if err := s.syncer.EnsureRange(ctx, req.CallerID, kind, req.Range); err != nil {
		return fmt.Errorf("ensure %s: %w", kind, err)
	}
	return nil
}

// listAgents returns the directory, loading it first if it is empty.
func (s *Service) listAgents(ctx context.Context, callerID string) ([]storage.Agent, error) {
	if err := s.syncer.EnsureDirectory(ctx, callerID); err != nil {
		return nil, fmt.Errorf("ensure agent directory: %w", err)
	}
	return s.agents.ListAgents(ctx)
}

// baseWhere applies the range and filters shared by a report's data and count queries.
func baseWhere(b sq.SelectBuilder, rng storage.TimeRange, filters Filters, extra ...sq.Sqlizer) sq.SelectBuilder {
	b = b.Where(sq.Expr("start_time BETWEEN ? AND ?", rng.From, rng.To))
	for _, cond := range extra {
		b = b.Where(cond)
	}
	if cond := filters.where(); cond != nil {
		b = b.Where(cond)
	}
	return b
}

func (s *Service) count(ctx context.Context, b sq.SelectBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count report rows: %w", err)
	}
	return total, nil
}

// query runs b and calls scan once per row.
func (s *Service) query(ctx context.Context, b sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build report query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query report: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan report row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating report rows: %w", err)
	}
	return nil
}

// list runs a row-level report: filtered rows ordered by start time plus the
// unpaginated row count.
func (s *Service) list(ctx context.Context, table string, columns []string, req Request, scan func(*sql.Rows) error, extra ...sq.Sqlizer) (int64, error) {
	data := baseWhere(psql.Select(columns...).From(table), req.Range, req.Filters, extra...).
		OrderBy("start_time " + req.Order).
		Limit(uint64(req.Page.Count)).
		Offset(req.Page.Offset())
	if err := s.query(ctx, data, scan); err != nil {
		return 0, err
	}

	return s.count(ctx, baseWhere(psql.Select("COUNT(*)").From(table), req.Range, req.Filters, extra...))
}

func invalidRequestf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
