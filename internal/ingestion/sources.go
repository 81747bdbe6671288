package ingestion

import (
	"encoding/json"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/aevon-lab/cc-reporting/internal/upstream"
)

// source describes how one kind is pulled from upstream.
type source struct {
	path       string
	recordsKey string
	flatten    func(json.RawMessage) (storage.Record, error)
	// purgeOnRefresh deletes the range before a forced refresh.
	purgeOnRefresh bool
}

var sources = map[storage.Kind]source{
	storage.KindQueue: {
		path:       "/contact_center/engagements",
		recordsKey: "engagements",
		flatten:    flattenQueue,
	},
	storage.KindPerformance: {
		path:       "/contact_center/analytics/dataset/historical/agent_performance",
		recordsKey: "users",
		flatten:    flattenPerformance,
	},
	storage.KindTimecard: {
		path:           "/contact_center/analytics/dataset/historical/agent_timecard",
		recordsKey:     "users",
		flatten:        flattenTimecard,
		purgeOnRefresh: true,
	},
	storage.KindEngagement: {
		path:       "/contact_center/analytics/dataset/historical/engagement",
		recordsKey: "engagements",
		flatten:    flattenEngagement,
	},
	storage.KindCallLog: {
		path:       "/phone/call_history",
		recordsKey: "call_logs",
		flatten:    flattenCallLog,
	},
	storage.KindDirectory: {
		path:       "/contact_center/users",
		recordsKey: "users",
		flatten:    flattenAgent,
	},
}

func (s source) query(spec storage.TableSpec, rng storage.TimeRange) upstream.Query {
	return upstream.Query{
		Path:       s.path,
		RecordsKey: s.recordsKey,
		From:       rng.From,
		To:         rng.To,
		Unranged:   !spec.Ranged,
	}
}
