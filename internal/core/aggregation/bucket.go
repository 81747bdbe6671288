package aggregation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned for an unsupported bucket size.
var ErrInvalidInterval = errors.New("invalid interval")

// Bucket is a report granularity in minutes. RowLevel disables grouping.
type Bucket int

const (
	RowLevel   Bucket = 0
	Interval15 Bucket = 15
	Interval30 Bucket = 30
	Interval60 Bucket = 60
	Daily      Bucket = 1440
)

// ParseInterval accepts the sub-daily queue report intervals.
func ParseInterval(minutes int) (Bucket, error) {
	switch b := Bucket(minutes); b {
	case Interval15, Interval30, Interval60:
		return b, nil
	}
	return RowLevel, fmt.Errorf("%w: %d (must be 15, 30 or 60)", ErrInvalidInterval, minutes)
}

// ParseFlowInterval also accepts 1440 for a daily flow report.
func ParseFlowInterval(minutes int) (Bucket, error) {
	if Bucket(minutes) == Daily {
		return Daily, nil
	}
	b, err := ParseInterval(minutes)
	if err != nil {
		return RowLevel, fmt.Errorf("%w: %d (must be 15, 30, 60 or 1440)", ErrInvalidInterval, minutes)
	}
	return b, nil
}

// Start returns the UTC bucket boundary containing t. Interval buckets are
// floor(minute/N)*N minutes past the top of the hour.
func (b Bucket) Start(t time.Time) time.Time {
	t = t.UTC()
	switch b {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Interval15, Interval30, Interval60:
		minute := t.Minute() / int(b) * int(b)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, time.UTC)
	default:
		return t
	}
}

// Label formats t's bucket the way SQL renders it.
func (b Bucket) Label(t time.Time) string {
	switch b {
	case Daily:
		return b.Start(t).Format("2006-01-02")
	case RowLevel:
		return t.UTC().Format("2006-01-02 15:04:05")
	default:
		return b.Start(t).Format("2006-01-02 15:04")
	}
}

// SQL returns a Postgres expression producing Label for a TIMESTAMPTZ column.
func (b Bucket) SQL(column string) string {
	ts := "(" + column + " AT TIME ZONE 'UTC')"
	switch b {
	case Daily:
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", ts)
	case Interval60:
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD HH24:00')", ts)
	case Interval15, Interval30:
		return fmt.Sprintf(
			"TO_CHAR(DATE_TRUNC('hour', %[1]s) + INTERVAL '%[2]d minutes' * FLOOR(EXTRACT(MINUTE FROM %[1]s) / %[2]d), 'YYYY-MM-DD HH24:MI')",
			ts, int(b))
	default:
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD HH24:MI:SS')", ts)
	}
}

func (b Bucket) String() string {
	switch b {
	case RowLevel:
		return "row"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("%dm", int(b))
	}
}
