package nlquery

import (
	"fmt"
	"strings"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

// Kind is a record kind name as it appears in a plan.
type Kind string

const (
	KindQueue       Kind = "Queue"
	KindPerformance Kind = "Performance"
	KindTimecard    Kind = "Timecard"
	KindEngagement  Kind = "Engagement"
	KindCallLog     Kind = "CallLog"
)

// allowedKinds is the closed set a plan may reference, in prompt order.
var allowedKinds = []struct {
	name    Kind
	kind    storage.Kind
	purpose string
}{
	{KindTimecard, storage.KindTimecard, "agent login/logout and status segments"},
	{KindPerformance, storage.KindPerformance, "per-engagement agent handling performance"},
	{KindEngagement, storage.KindEngagement, "individual engagement details"},
	{KindQueue, storage.KindQueue, "queue statistics per interaction"},
	{KindCallLog, storage.KindCallLog, "phone call log entries"},
}

// AllowedKinds returns the kind names a plan may use.
func AllowedKinds() []Kind {
	out := make([]Kind, 0, len(allowedKinds))
	for _, k := range allowedKinds {
		out = append(out, k.name)
	}
	return out
}

// catalog is the queryable surface of one allowed kind.
type catalog struct {
	name    Kind
	table   string
	purpose string
	columns []string
	known   map[string]struct{}
}

func (c catalog) has(column string) bool {
	_, ok := c.known[column]
	return ok
}

var catalogs = buildCatalogs()

func buildCatalogs() map[Kind]catalog {
	out := make(map[Kind]catalog, len(allowedKinds))
	for _, k := range allowedKinds {
		spec, err := storage.Table(k.kind)
		if err != nil {
			panic(fmt.Sprintf("nlquery: %v", err))
		}
		columns := append([]string{"id"}, spec.Columns...)
		known := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			known[col] = struct{}{}
		}
		out[k.name] = catalog{name: k.name, table: spec.Table, purpose: k.purpose, columns: columns, known: known}
	}
	return out
}

// lookup resolves a plan's kind against the allow-list.
func lookup(kind string) (catalog, error) {
	c, ok := catalogs[Kind(kind)]
	if !ok {
		return catalog{}, fmt.Errorf("%w: %q", ErrForbiddenKind, kind)
	}
	return c, nil
}

var booleanColumns = map[string]struct{}{
	"international":  {},
	"hide_caller_id": {},
	"end_to_end":     {},
}

// columnType describes a column for the prompt.
func columnType(column string) string {
	switch {
	case column == "id":
		return "INTEGER, primary key"
	case column == "start_time" || column == "end_time":
		return "TIMESTAMP, UTC"
	case strings.HasSuffix(column, "_duration") || column == "duration":
		return "INTEGER, milliseconds"
	case strings.HasSuffix(column, "_count") || column == "voice_mail":
		return "INTEGER"
	}
	if _, ok := booleanColumns[column]; ok {
		return "BOOLEAN"
	}
	return "STRING"
}
