package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKind is returned when a record kind has no table mapping.
var ErrUnknownKind = errors.New("unknown record kind")

// TimeRange is an inclusive [From, To] window on a record's start_time.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Validate ensures both bounds are set and ordered.
func (r TimeRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("from and to are required")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("to (%s) is before from (%s)", r.To.Format(time.RFC3339), r.From.Format(time.RFC3339))
	}
	return nil
}

// RecordStore is the persistence contract used by the sync manager.
// Rows are only ever inserted if absent; the timecard kind may also be purged by range.
type RecordStore interface {
	// HasAny reports whether at least one row of kind has start_time within rng.
	// The directory kind ignores rng.
	HasAny(ctx context.Context, kind Kind, rng TimeRange) (bool, error)

	// InsertBatch inserts records whose natural key is not yet present and
	// returns the number of rows actually written.
	InsertBatch(ctx context.Context, kind Kind, records []Record) (int64, error)

	// DeleteRange removes rows of kind with start_time within rng.
	DeleteRange(ctx context.Context, kind Kind, rng TimeRange) (int64, error)
}

// TokenProvider resolves the upstream access token for a caller.
// ok is false when the caller has no usable token.
type TokenProvider interface {
	GetToken(ctx context.Context, callerID string) (token string, ok bool, err error)
}
