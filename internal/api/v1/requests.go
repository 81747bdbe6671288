package v1

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
	// MaxPage keeps (page-1)*count far from integer overflow.
	MaxPage = 1_000_000
)

var (
	// ErrDateRangeRequired is returned when from or to is missing.
	ErrDateRangeRequired = errors.New("date range is required")

	// ErrInvalidTime is returned when from or to cannot be parsed.
	ErrInvalidTime = errors.New("invalid date")
)

// timeLayouts are tried in order. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps, zone-less date-times and plain dates.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// RangeRequest carries the mandatory reporting window.
type RangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TimeRange parses and validates the window.
func (r RangeRequest) TimeRange() (storage.TimeRange, error) {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return storage.TimeRange{}, ErrDateRangeRequired
	}
	from, err := ParseTime(r.From)
	if err != nil {
		return storage.TimeRange{}, err
	}
	to, err := ParseTime(r.To)
	if err != nil {
		return storage.TimeRange{}, err
	}

	rng := storage.TimeRange{From: from, To: to}
	if err := rng.Validate(); err != nil {
		return storage.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return rng, nil
}

// PageRequest is 1-indexed pagination.
type PageRequest struct {
	Page  int `json:"page"`
	Count int `json:"count"`
}

// Normalize applies defaults and the page and page-size caps.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Count <= 0 {
		p.Count = DefaultPageSize
	}
	if p.Count > MaxPageSize {
		p.Count = MaxPageSize
	}
	return p
}

// Offset returns (page-1)*count of a normalized request.
func (p PageRequest) Offset() uint64 {
	if p.Page < 1 || p.Count < 1 {
		return 0
	}
	return uint64(p.Page-1) * uint64(p.Count)
}

// ReportRequest is the body shared by every report endpoint. Each report
// reads only the filters it supports.
type ReportRequest struct {
	RangeRequest
	PageRequest

	Interval   int      `json:"interval"`
	Queues     []string `json:"queues"`
	QueueIDs   []string `json:"queueId"`
	Agents     []string `json:"agents"`
	Channels   []string `json:"channels"`
	Directions []string `json:"directions"`
	Status     []string `json:"status"`
	Teams      []string `json:"teams"`
	Flows      []string `json:"flows"`
	// Format orders row-level reports by start time: asc or desc.
	Format string `json:"format"`
}

// Order returns the normalized sort direction, ascending by default.
func (r ReportRequest) Order() string {
	if strings.EqualFold(r.Format, "desc") {
		return "DESC"
	}
	return "ASC"
}

// SyncRequest is the body of a manual refresh.
type SyncRequest struct {
	RangeRequest
}

// NLReportRequest is the body of a natural-language report.
type NLReportRequest struct {
	Query string `json:"query" binding:"required"`
}

// ValidationMessage renders a request validation error for clients.
func ValidationMessage(err error) string {
	if errors.Is(err, ErrDateRangeRequired) {
		return "Date range is required"
	}
	return err.Error()
}
