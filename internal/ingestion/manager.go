package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/aevon-lab/cc-reporting/internal/upstream"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrAuthorizationMissing is returned when the caller has no usable upstream token.
// No upstream request is made in that case.
var ErrAuthorizationMissing = errors.New("upstream access token missing")

// PageSource opens a page iterator over one upstream dataset.
type PageSource interface {
	Pages(token string, q upstream.Query) *upstream.PageIterator
}

// StopReason records why an ingestion run ended without an error.
type StopReason string

const (
	StopExhausted     StopReason = "exhausted"
	StopMalformedPage StopReason = "malformed_page"
	StopPageLimit     StopReason = "page_limit"
)

// RunStats summarizes one ingestion run.
type RunStats struct {
	RunID string       `json:"run_id"`
	Kind  storage.Kind `json:"kind"`
	From  time.Time    `json:"from"`
	To    time.Time    `json:"to"`
	Pages int          `json:"pages"`
	// Fetched counts upstream records across all pages.
	Fetched  int   `json:"fetched"`
	Inserted int64 `json:"inserted"`
	// Skipped counts records that were undecodable, keyless or already stored.
	Skipped       int        `json:"skipped"`
	FailedBatches int        `json:"failed_batches"`
	Purged        int64      `json:"purged"`
	StopReason    StopReason `json:"stop_reason"`
}

// IngestFunc pulls one range from upstream into the store.
type IngestFunc func(ctx context.Context) (*RunStats, error)

type Options struct {
	// Coalesce shares one in-flight run between identical concurrent calls.
	Coalesce bool
}

// Manager keeps the record store populated for requested ranges.
type Manager struct {
	store    storage.RecordStore
	source   PageSource
	tokens   storage.TokenProvider
	coalesce bool
	group    singleflight.Group
	newRunID func() string
}

func NewManager(store storage.RecordStore, source PageSource, tokens storage.TokenProvider, opts Options) *Manager {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if source == nil {
		panic("ingestion: source must not be nil")
	}
	if tokens == nil {
		panic("ingestion: token provider must not be nil")
	}
	return &Manager{
		store:    store,
		source:   source,
		tokens:   tokens,
		coalesce: opts.Coalesce,
		newRunID: func() string { return uuid.NewString() },
	}
}

// EnsureRange ingests kind for rng unless the store already holds a row in it.
func (m *Manager) EnsureRange(ctx context.Context, callerID string, kind storage.Kind, rng storage.TimeRange) error {
	if err := rng.Validate(); err != nil {
		return err
	}
	token, err := m.authorize(ctx, callerID)
	if err != nil {
		return err
	}
	_, err = m.ensure(ctx, kind, rng, func(ctx context.Context) (*RunStats, error) {
		return m.ingest(ctx, token, kind, rng, false)
	})
	return err
}

// ForceRefresh re-ingests kind for rng regardless of what is stored.
// The timecard kind is purged for rng first.
func (m *Manager) ForceRefresh(ctx context.Context, callerID string, kind storage.Kind, rng storage.TimeRange) (*RunStats, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	token, err := m.authorize(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return m.shared(ctx, "refresh", kind, rng, func(ctx context.Context) (*RunStats, error) {
		return m.ingest(ctx, token, kind, rng, true)
	})
}

// EnsureDirectory loads the agent directory if it is empty.
func (m *Manager) EnsureDirectory(ctx context.Context, callerID string) error {
	token, err := m.authorize(ctx, callerID)
	if err != nil {
		return err
	}
	_, err = m.ensure(ctx, storage.KindDirectory, storage.TimeRange{}, func(ctx context.Context) (*RunStats, error) {
		return m.ingest(ctx, token, storage.KindDirectory, storage.TimeRange{}, false)
	})
	return err
}

// RefreshDirectory pulls the whole agent directory, adding unseen agents.
func (m *Manager) RefreshDirectory(ctx context.Context, callerID string) (*RunStats, error) {
	token, err := m.authorize(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return m.shared(ctx, "refresh", storage.KindDirectory, storage.TimeRange{}, func(ctx context.Context) (*RunStats, error) {
		return m.ingest(ctx, token, storage.KindDirectory, storage.TimeRange{}, false)
	})
}

// authorize resolves callerID's upstream token. Every caller is checked on
// its own, including callers that later join an in-flight run.
func (m *Manager) authorize(ctx context.Context, callerID string) (string, error) {
	token, ok, err := m.tokens.GetToken(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve access token: %w", err)
	}
	if !ok {
		return "", ErrAuthorizationMissing
	}
	return token, nil
}

// ensure is the check-then-ingest policy shared by every kind. It returns
// nil stats when the range was already populated.
func (m *Manager) ensure(ctx context.Context, kind storage.Kind, rng storage.TimeRange, ingest IngestFunc) (*RunStats, error) {
	return m.shared(ctx, "ensure", kind, rng, func(ctx context.Context) (*RunStats, error) {
		present, err := m.store.HasAny(ctx, kind, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to check stored %s rows: %w", kind, err)
		}
		if present {
			slog.Debug("[Sync] Range already populated", "kind", kind, "from", rng.From, "to", rng.To)
			return nil, nil
		}
		return ingest(ctx)
	})
}

// shared runs fn once per identical (op, kind, range) when coalescing is on.
// A shared run is detached from the starting caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (m *Manager) shared(ctx context.Context, op string, kind storage.Kind, rng storage.TimeRange, fn IngestFunc) (*RunStats, error) {
	if !m.coalesce {
		return fn(ctx)
	}

	key := fmt.Sprintf("%s|%s|%d|%d", op, kind, rng.From.UnixNano(), rng.To.UnixNano())
	runCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		return fn(runCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			slog.Debug("[Sync] Joined in-flight run", "op", op, "kind", kind)
		}
		stats, _ := res.Val.(*RunStats)
		return stats, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ingest walks every upstream page for kind and range, inserting each page
// before the next is requested. Malformed pages and the page cap end the run
// early and keep what was already stored.
func (m *Manager) ingest(ctx context.Context, token string, kind storage.Kind, rng storage.TimeRange, refresh bool) (*RunStats, error) {
	spec, err := storage.Table(kind)
	if err != nil {
		return nil, err
	}
	src, ok := sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no upstream source", storage.ErrUnknownKind, kind)
	}

	stats := &RunStats{RunID: m.newRunID(), Kind: kind, From: rng.From, To: rng.To}
	logger := slog.With("run_id", stats.RunID, "kind", kind)
	logger.Info("[Sync] Starting ingestion", "from", rng.From, "to", rng.To, "refresh", refresh)

	if refresh && src.purgeOnRefresh {
		purged, err := m.store.DeleteRange(ctx, kind, rng)
		if err != nil {
			return stats, fmt.Errorf("failed to purge %s range: %w", kind, err)
		}
		stats.Purged = purged
		logger.Info("[Sync] Purged range before refresh", "deleted", purged)
	}

	it := m.source.Pages(token, src.query(spec, rng))
	for it.Next(ctx) {
		raw := it.Records()
		stats.Pages++
		stats.Fetched += len(raw)

		records := make([]storage.Record, 0, len(raw))
		for _, r := range raw {
			rec, err := src.flatten(r)
			if err != nil {
				stats.Skipped++
				logger.Warn("[Sync] Dropping undecodable record", "page", it.Page(), "error", err)
				continue
			}
			records = append(records, rec)
		}
		if len(records) == 0 {
			continue
		}

		inserted, err := m.store.InsertBatch(ctx, kind, records)
		if err != nil {
			stats.FailedBatches++
			logger.Error("[Sync] Batch insert failed, continuing with next page",
				"page", it.Page(),
				"records", len(records),
				"error", err)
			continue
		}
		stats.Inserted += inserted
		stats.Skipped += len(records) - int(inserted)

		logger.Debug("[Sync] Page stored",
			"page", it.Page(),
			"fetched", len(raw),
			"inserted", inserted)
	}

	switch err := it.Err(); {
	case err == nil:
		stats.StopReason = StopExhausted
	case errors.Is(err, upstream.ErrMalformedPage):
		stats.StopReason = StopMalformedPage
		logger.Warn("[Sync] Malformed upstream page, stopping", "page", it.Page()+1, "error", err)
	case errors.Is(err, upstream.ErrPageLimit):
		stats.StopReason = StopPageLimit
		logger.Warn("[Sync] Page cap reached, keeping ingested pages", "pages", stats.Pages)
	default:
		return stats, fmt.Errorf("failed to ingest %s: %w", kind, err)
	}

	logger.Info("[Sync] Ingestion complete",
		"pages", stats.Pages,
		"fetched", stats.Fetched,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"failed_batches", stats.FailedBatches,
		"stop_reason", stats.StopReason)
	return stats, nil
}
