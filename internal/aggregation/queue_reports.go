package aggregation

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/shopspring/decimal"
)

const queueTable = "agent_queue"

// QueueInteraction is one row of the queue list.
type QueueInteraction struct {
	EngagementID        string    `json:"engagement_id"`
	Direction           string    `json:"direction"`
	StartTime           time.Time `json:"start_time"`
	ConsumerNumber      string    `json:"consumer_number"`
	ConsumerDisplayName string    `json:"consumer_display_name"`
	FlowName            string    `json:"flow_name"`
	QueueName           string    `json:"queue_name"`
	Channel             string    `json:"channel"`
	QueueWaitType       string    `json:"queue_wait_type"`
	Duration            int64     `json:"duration"`
	FlowDuration        int64     `json:"flow_duration"`
	WaitingDuration     int64     `json:"waiting_duration"`
	HandlingDuration    int64     `json:"handling_duration"`
	WrapUpDuration      int64     `json:"wrap_up_duration"`
	VoiceMail           int64     `json:"voice_mail"`
	TalkDuration        int64     `json:"talk_duration"`
	TransferCount       int64     `json:"transfer_count"`
}

var queueListColumns = []string{
	"engagement_id", "direction", "start_time", "consumer_number", "consumer_display_name",
	"flow_name", "queue_name", "channel", "queue_wait_type",
	"duration", "flow_duration", "waiting_duration", "handling_duration",
	"wrap_up_duration", "voice_mail", "talk_duration", "transfer_count",
}

// QueueList returns raw queue interactions. Filters: queue_name, display_name.
func (s *Service) QueueList(ctx context.Context, req Request) (*Result[QueueInteraction], error) {
	if err := s.prepare(ctx, storage.KindQueue, &req); err != nil {
		return nil, err
	}

	rows := []QueueInteraction{}
	total, err := s.list(ctx, queueTable, queueListColumns, req, func(r *sql.Rows) error {
		var (
			q     QueueInteraction
			start sql.NullTime
		)
		if err := r.Scan(&q.EngagementID, &q.Direction, &start, &q.ConsumerNumber, &q.ConsumerDisplayName,
			&q.FlowName, &q.QueueName, &q.Channel, &q.QueueWaitType,
			&q.Duration, &q.FlowDuration, &q.WaitingDuration, &q.HandlingDuration,
			&q.WrapUpDuration, &q.VoiceMail, &q.TalkDuration, &q.TransferCount); err != nil {
			return err
		}
		q.StartTime = start.Time
		rows = append(rows, q)
		return nil
	})
	if err != nil {
		return nil, err
	}

	agents, err := s.listAgents(ctx, req.CallerID)
	if err != nil {
		return nil, err
	}
	return &Result[QueueInteraction]{Rows: rows, TotalRecords: total, Page: req.Page, Agents: agents}, nil
}

// Metrics are the per-group aggregates of a queue or flow summary.
// Durations are milliseconds.
type Metrics struct {
	TotalOffered        int64   `json:"totalOffered"`
	TotalAnswered       int64   `json:"totalAnswered"`
	AbandonedCalls      int64   `json:"abandonedCalls"`
	AcdTime             int64   `json:"acdTime"`
	AcwTime             int64   `json:"acwTime"`
	AgentRingTime       int64   `json:"agentRingTime"`
	AvgHandleTime       float64 `json:"avgHandleTime"`
	AvgAcwTime          float64 `json:"avgAcwTime"`
	MaxHandleTime       int64   `json:"maxHandleTime"`
	TransferCount       int64   `json:"transferCount"`
	VoiceCalls          int64   `json:"voiceCalls"`
	DigitalInteractions int64   `json:"digitalInteractions"`
}

// Outcome returns the counts the success and abandon percentages derive from.
func (m Metrics) Outcome() coreagg.Outcome {
	return coreagg.Outcome{Offered: m.TotalOffered, Answered: m.TotalAnswered, Abandoned: m.AbandonedCalls}
}

// metricColumns are scanned in Metrics field order.
var metricColumns = []string{
	"COUNT(engagement_id) AS total_offered",
	"SUM(CASE WHEN handling_duration > 0 THEN 1 ELSE 0 END) AS total_answered",
	"SUM(CASE WHEN handling_duration = 0 THEN 1 ELSE 0 END) AS abandoned_calls",
	"SUM(handling_duration) AS acd_time",
	"SUM(wrap_up_duration) AS acw_time",
	"SUM(waiting_duration) AS agent_ring_time",
	"AVG(CASE WHEN handling_duration > 0 THEN handling_duration + wrap_up_duration ELSE NULL END) AS avg_handle_time",
	"AVG(CASE WHEN wrap_up_duration > 0 THEN wrap_up_duration ELSE NULL END) AS avg_acw_time",
	"MAX(handling_duration + wrap_up_duration) AS max_handle_time",
	"SUM(transfer_count) AS transfer_count",
	"SUM(CASE WHEN channel = 'voice' THEN 1 ELSE 0 END) AS voice_calls",
	"SUM(CASE WHEN channel <> 'voice' THEN 1 ELSE 0 END) AS digital_interactions",
}

var directionColumns = []string{
	"SUM(CASE WHEN direction = 'inbound' THEN 1 ELSE 0 END) AS inbound_calls",
	"SUM(CASE WHEN direction = 'outbound' THEN 1 ELSE 0 END) AS outbound_calls",
}

// Dimension is the secondary grouping key of a summary.
type Dimension struct {
	IDColumn   string
	NameColumn string
}

var (
	QueueDimension = Dimension{IDColumn: "cc_queue_id", NameColumn: "queue_name"}
	FlowDimension  = Dimension{IDColumn: "flow_id", NameColumn: "flow_name"}
)

// Group is one (bucket, dimension) row of a summary.
type Group struct {
	Date    string
	ID      string
	Name    string
	Metrics Metrics
	// Inbound and Outbound are only filled when directions were requested.
	Inbound  int64
	Outbound int64
}

// Summarize groups queue interactions in req's range by (bucket, dim) and
// aggregates each group. The total is the number of distinct groups.
func (s *Service) Summarize(ctx context.Context, req Request, bucket coreagg.Bucket, dim Dimension, withDirections bool) ([]Group, int64, error) {
	if bucket == coreagg.RowLevel {
		return nil, 0, invalidRequestf("summary needs a daily or interval bucket")
	}
	if err := s.prepare(ctx, storage.KindQueue, &req); err != nil {
		return nil, 0, err
	}

	label := bucket.SQL("start_time")
	columns := append([]string{label + " AS date", dim.IDColumn, dim.NameColumn}, metricColumns...)
	if withDirections {
		columns = append(columns, directionColumns...)
	}

	data := baseWhere(psql.Select(columns...).From(queueTable), req.Range, req.Filters).
		GroupBy(label, dim.IDColumn, dim.NameColumn).
		OrderBy("date", dim.NameColumn).
		Limit(uint64(req.Page.Count)).
		Offset(req.Page.Offset())

	groups := []Group{}
	err := s.query(ctx, data, func(r *sql.Rows) error {
		var (
			g          Group
			avgHandle  decimal.NullDecimal
			avgAcw     decimal.NullDecimal
			m          = &g.Metrics
			scanTarget = []any{
				&g.Date, &g.ID, &g.Name,
				&m.TotalOffered, &m.TotalAnswered, &m.AbandonedCalls,
				&m.AcdTime, &m.AcwTime, &m.AgentRingTime,
				&avgHandle, &avgAcw, &m.MaxHandleTime,
				&m.TransferCount, &m.VoiceCalls, &m.DigitalInteractions,
			}
		)
		if withDirections {
			scanTarget = append(scanTarget, &g.Inbound, &g.Outbound)
		}
		if err := r.Scan(scanTarget...); err != nil {
			return err
		}
		m.AvgHandleTime = average(avgHandle)
		m.AvgAcwTime = average(avgAcw)
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	distinct := baseWhere(psql.Select(label, dim.IDColumn, dim.NameColumn).From(queueTable), req.Range, req.Filters).
		GroupBy(label, dim.IDColumn, dim.NameColumn)
	total, err := s.count(ctx, psql.Select("COUNT(*)").FromSelect(distinct, "report_groups"))
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// QueueSummary is one row of the daily or interval queue report.
type QueueSummary struct {
	Date      string `json:"date"`
	QueueID   string `json:"queueId"`
	QueueName string `json:"queueName"`
	Metrics
}

// QueueReport summarizes queues per bucket. Filters: queue_name.
func (s *Service) QueueReport(ctx context.Context, req Request, bucket coreagg.Bucket) (*Result[QueueSummary], error) {
	groups, total, err := s.Summarize(ctx, req, bucket, QueueDimension, false)
	if err != nil {
		return nil, err
	}

	rows := make([]QueueSummary, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, QueueSummary{Date: g.Date, QueueID: g.ID, QueueName: g.Name, Metrics: g.Metrics})
	}
	return &Result[QueueSummary]{Rows: rows, TotalRecords: total, Page: req.Page.Normalize()}, nil
}

// FlowSummary is one row of the flow (VDN) report.
type FlowSummary struct {
	Date     string `json:"date"`
	FlowID   string `json:"flowId"`
	FlowName string `json:"flowName"`
	Metrics
	InboundCalls      int64  `json:"inboundCalls"`
	OutboundCalls     int64  `json:"outboundCalls"`
	SuccessPercentage string `json:"successPercentage"`
	AbandonPercentage string `json:"abandonPercentage"`
}

// FlowReport summarizes flows per bucket with direction split and
// success/abandon percentages. Filters: flow_name.
func (s *Service) FlowReport(ctx context.Context, req Request, bucket coreagg.Bucket) (*Result[FlowSummary], error) {
	groups, total, err := s.Summarize(ctx, req, bucket, FlowDimension, true)
	if err != nil {
		return nil, err
	}

	rows := make([]FlowSummary, 0, len(groups))
	for _, g := range groups {
		outcome := g.Metrics.Outcome()
		rows = append(rows, FlowSummary{
			Date:              g.Date,
			FlowID:            g.ID,
			FlowName:          g.Name,
			Metrics:           g.Metrics,
			InboundCalls:      g.Inbound,
			OutboundCalls:     g.Outbound,
			SuccessPercentage: outcome.SuccessPercentage(),
			AbandonPercentage: outcome.AbandonPercentage(),
		})
	}
	return &Result[FlowSummary]{Rows: rows, TotalRecords: total, Page: req.Page.Normalize()}, nil
}

// AbandonedCall is one unanswered queue interaction.
type AbandonedCall struct {
	StartTime           string `json:"startTime"`
	EngagementID        string `json:"engagementId"`
	Direction           string `json:"direction"`
	ConsumerNumber      string `json:"consumerNumber"`
	ConsumerID          string `json:"consumerId"`
	ConsumerDisplayName string `json:"consumerDisplayName"`
	QueueID             string `json:"queueId"`
	QueueName           string `json:"queueName"`
	AgentID             string `json:"agentId"`
	AgentName           string `json:"agentName"`
	Channel             string `json:"channel"`
	QueueWaitType       string `json:"queueWaitType"`
	WaitingDuration     int64  `json:"waitingDuration"`
	VoiceMail           int64  `json:"voiceMail"`
	TransferCount       int64  `json:"transferCount"`
}

var abandonedColumns = []string{
	"TO_CHAR((start_time AT TIME ZONE 'UTC'), 'YYYY-MM-DD HH24:MI:SS') AS start_label",
	"engagement_id", "direction", "consumer_number", "consumer_id", "consumer_display_name",
	"cc_queue_id", "queue_name", "user_id", "display_name", "channel", "queue_wait_type",
	"waiting_duration", "voice_mail", "transfer_count",
}

// AbandonedCalls lists interactions with no handling time.
// Filters: queue_name, display_name.
func (s *Service) AbandonedCalls(ctx context.Context, req Request) (*Result[AbandonedCall], error) {
	return s.abandoned(ctx, req, sq.Eq{"handling_duration": 0})
}

// AgentAbandonedReport lists interactions that waited for an agent but were
// never handled. Filters: queue_name, direction.
func (s *Service) AgentAbandonedReport(ctx context.Context, req Request) (*Result[AbandonedCall], error) {
	return s.abandoned(ctx, req, sq.Eq{"handling_duration": 0}, sq.Gt{"waiting_duration": 0})
}

func (s *Service) abandoned(ctx context.Context, req Request, conds ...sq.Sqlizer) (*Result[AbandonedCall], error) {
	if err := s.prepare(ctx, storage.KindQueue, &req); err != nil {
		return nil, err
	}

	rows := []AbandonedCall{}
	total, err := s.list(ctx, queueTable, abandonedColumns, req, func(r *sql.Rows) error {
		var (
			a     AbandonedCall
			start sql.NullString
		)
		if err := r.Scan(&start, &a.EngagementID, &a.Direction, &a.ConsumerNumber, &a.ConsumerID, &a.ConsumerDisplayName,
			&a.QueueID, &a.QueueName, &a.AgentID, &a.AgentName, &a.Channel, &a.QueueWaitType,
			&a.WaitingDuration, &a.VoiceMail, &a.TransferCount); err != nil {
			return err
		}
		a.StartTime = orNA(start.String)
		for _, field := range []*string{
			&a.EngagementID, &a.Direction, &a.ConsumerNumber, &a.ConsumerID, &a.ConsumerDisplayName,
			&a.QueueID, &a.QueueName, &a.AgentID, &a.AgentName, &a.Channel, &a.QueueWaitType,
		} {
			*field = orNA(*field)
		}
		rows = append(rows, a)
		return nil
	}, conds...)
	if err != nil {
		return nil, err
	}

	agents, err := s.listAgents(ctx, req.CallerID)
	if err != nil {
		return nil, err
	}
	return &Result[AbandonedCall]{Rows: rows, TotalRecords: total, Page: req.Page, Agents: agents}, nil
}

// average converts a nullable SQL average to a float rounded to two places.
func average(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Round(2).InexactFloat64()
}
