package aggregation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	performanceTable = "agent_performance"
	timecardTable    = "agent_timecard"
	engagementTable  = "agent_engagement"
	teamsTable       = "teams"
)

// PerformanceRow is one agent-handled engagement.
type PerformanceRow struct {
	EngagementID               string    `json:"engagement_id"`
	StartTime                  time.Time `json:"start_time"`
	Direction                  string    `json:"direction"`
	UserName                   string    `json:"user_name"`
	Channel                    string    `json:"channel"`
	QueueName                  string    `json:"queue_name"`
	TransferInitiatedCount     int64     `json:"transfer_initiated_count"`
	TransferCompletedCount     int64     `json:"transfer_completed_count"`
	HoldCount                  int64     `json:"hold_count"`
	ConversationDuration       int64     `json:"conversation_duration"`
	WrapUpDuration             int64     `json:"wrap_up_duration"`
	RingDuration               int64     `json:"ring_duration"`
	AgentFirstResponseDuration int64     `json:"agent_first_response_duration"`
}

var performanceColumns = []string{
	"engagement_id", "start_time", "direction", "user_name", "channel", "queue_name",
	"transfer_initiated_count", "transfer_completed_count", "hold_count",
	"conversation_duration", "wrap_up_duration", "ring_duration", "agent_first_response_duration",
}

// PerformanceList returns agent performance rows. Filters: user_name, channel.
func (s *Service) PerformanceList(ctx context.Context, req Request) (*Result[PerformanceRow], error) {
	if err := s.prepare(ctx, storage.KindPerformance, &req); err != nil {
		return nil, err
	}

	rows := []PerformanceRow{}
	total, err := s.list(ctx, performanceTable, performanceColumns, req, func(r *sql.Rows) error {
		var (
			p     PerformanceRow
			start sql.NullTime
		)
		if err := r.Scan(&p.EngagementID, &start, &p.Direction, &p.UserName, &p.Channel, &p.QueueName,
			&p.TransferInitiatedCount, &p.TransferCompletedCount, &p.HoldCount,
			&p.ConversationDuration, &p.WrapUpDuration, &p.RingDuration, &p.AgentFirstResponseDuration); err != nil {
			return err
		}
		p.StartTime = start.Time
		rows = append(rows, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	agents, err := s.listAgents(ctx, req.CallerID)
	if err != nil {
		return nil, err
	}
	return &Result[PerformanceRow]{Rows: rows, TotalRecords: total, Page: req.Page, Agents: agents}, nil
}

// TimecardRow is one agent status segment.
type TimecardRow struct {
	WorkSessionID string    `json:"work_session_id"`
	StartTime     time.Time `json:"start_time"`
	UserName      string    `json:"user_name"`
	UserStatus    string    `json:"user_status"`
	UserSubStatus string    `json:"user_sub_status"`
	Duration      int64     `json:"duration"`
}

// TimecardList returns timecard rows. Filters: user_status, user_name.
func (s *Service) TimecardList(ctx context.Context, req Request) (*Result[TimecardRow], error) {
	if err := s.prepare(ctx, storage.KindTimecard, &req); err != nil {
		return nil, err
	}

	columns := []string{"work_session_id", "start_time", "user_name", "user_status", "user_sub_status", "duration"}
	rows := []TimecardRow{}
	total, err := s.list(ctx, timecardTable, columns, req, func(r *sql.Rows) error {
		var (
			tc    TimecardRow
			start sql.NullTime
		)
		if err := r.Scan(&tc.WorkSessionID, &start, &tc.UserName, &tc.UserStatus, &tc.UserSubStatus, &tc.Duration); err != nil {
			return err
		}
		tc.StartTime = start.Time
		rows = append(rows, tc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	agents, err := s.listAgents(ctx, req.CallerID)
	if err != nil {
		return nil, err
	}
	return &Result[TimecardRow]{Rows: rows, TotalRecords: total, Page: req.Page, Agents: agents}, nil
}

// LoginSession is one agent work session folded from its timecard segments.
type LoginSession struct {
	WorkSessionID string    `json:"work_session_id"`
	UserName      string    `json:"user_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Duration      int64     `json:"duration"`
}

// LoginReport groups timecard segments by (user_name, work_session_id) with the
// earliest start, latest end and summed duration. Filters: user_name.
func (s *Service) LoginReport(ctx context.Context, req Request) (*Result[LoginSession], error) {
	if err := s.prepare(ctx, storage.KindTimecard, &req); err != nil {
		return nil, err
	}

	data := baseWhere(psql.Select(
		"user_name", "work_session_id",
		"MIN(start_time) AS session_start", "MAX(end_time) AS session_end", "SUM(duration) AS total_duration",
	).From(timecardTable), req.Range, req.Filters).
		GroupBy("user_name", "work_session_id").
		OrderBy("session_start " + req.Order).
		Limit(uint64(req.Page.Count)).
		Offset(req.Page.Offset())

	rows := []LoginSession{}
	err := s.query(ctx, data, func(r *sql.Rows) error {
		var (
			ls         LoginSession
			start, end sql.NullTime
		)
		if err := r.Scan(&ls.UserName, &ls.WorkSessionID, &start, &end, &ls.Duration); err != nil {
			return err
		}
		ls.StartTime, ls.EndTime = start.Time, end.Time
		rows = append(rows, ls)
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := s.count(ctx, baseWhere(
		psql.Select("COUNT(DISTINCT (user_name, work_session_id))").From(timecardTable),
		req.Range, req.Filters))
	if err != nil {
		return nil, err
	}
	return &Result[LoginSession]{Rows: rows, TotalRecords: total, Page: req.Page}, nil
}

// EngagementRow is one engagement with its joined queue and agent names.
type EngagementRow struct {
	EngagementID               string    `json:"engagement_id"`
	Direction                  string    `json:"direction"`
	StartTime                  time.Time `json:"start_time"`
	EnterChannel               string    `json:"enter_channel"`
	ConsumerName               string    `json:"consumer_name"`
	DNIS                       string    `json:"dnis"`
	ANI                        string    `json:"ani"`
	QueueName                  string    `json:"queue_name"`
	UserName                   string    `json:"user_name"`
	Duration                   int64     `json:"duration"`
	HoldCount                  int64     `json:"hold_count"`
	HoldDuration               int64     `json:"hold_duration"`
	WarmTransferInitiatedCount int64     `json:"warm_transfer_initiated_count"`
	WarmTransferCompletedCount int64     `json:"warm_transfer_completed_count"`
	DirectTransferCount        int64     `json:"direct_transfer_count"`
	TransferInitiatedCount     int64     `json:"transfer_initiated_count"`
	TransferCompletedCount     int64     `json:"transfer_completed_count"`
	WarmConferenceCount        int64     `json:"warm_conference_count"`
	ConferenceCount            int64     `json:"conference_count"`
	AbandonedCount             int64     `json:"abandoned_count"`
}

var engagementColumns = []string{
	"engagement_id", "direction", "start_time", "enter_channel", "consumer_name", "dnis", "ani",
	"queue_name", "user_name", "duration", "hold_count", "hold_duration",
	"warm_transfer_initiated_count", "warm_transfer_completed_count", "direct_transfer_count",
	"transfer_initiated_count", "transfer_completed_count", "warm_conference_count",
	"conference_count", "abandoned_count",
}

// EngagementList returns engagement rows. Filters: enter_channel, user_name.
func (s *Service) EngagementList(ctx context.Context, req Request) (*Result[EngagementRow], error) {
	if err := s.prepare(ctx, storage.KindEngagement, &req); err != nil {
		return nil, err
	}

	rows := []EngagementRow{}
	total, err := s.list(ctx, engagementTable, engagementColumns, req, func(r *sql.Rows) error {
		var (
			e     EngagementRow
			start sql.NullTime
		)
		if err := r.Scan(&e.EngagementID, &e.Direction, &start, &e.EnterChannel, &e.ConsumerName, &e.DNIS, &e.ANI,
			&e.QueueName, &e.UserName, &e.Duration, &e.HoldCount, &e.HoldDuration,
			&e.WarmTransferInitiatedCount, &e.WarmTransferCompletedCount, &e.DirectTransferCount,
			&e.TransferInitiatedCount, &e.TransferCompletedCount, &e.WarmConferenceCount,
			&e.ConferenceCount, &e.AbandonedCount); err != nil {
			return err
		}
		e.StartTime = start.Time
		rows = append(rows, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result[EngagementRow]{Rows: rows, TotalRecords: total, Page: req.Page}, nil
}

// TeamSummary aggregates agent performance over a team's members.
type TeamSummary struct {
	TeamName          string   `json:"team_name"`
	TotalInteractions int64    `json:"total_interactions"`
	AvgHandleDuration int64    `json:"avg_handle_duration"`
	TotalHoldCount    int64    `json:"total_hold_count"`
	AvgWrapUpDuration int64    `json:"avg_wrap_up_duration"`
	Channels          []string `json:"channels"`
	Directions        []string `json:"directions"`
	Queues            []string `json:"queues"`
	TransferInitiated int64    `json:"transfer_initiated"`
	TransferCompleted int64    `json:"transfer_completed"`
}

var teamSummaryColumns = []string{
	"COUNT(engagement_id)",
	"AVG(handle_duration)",
	"COALESCE(SUM(hold_count), 0)",
	"AVG(wrap_up_duration)",
	"COALESCE(ARRAY_AGG(DISTINCT channel) FILTER (WHERE channel <> ''), ARRAY[]::text[])",
	"COALESCE(ARRAY_AGG(DISTINCT direction) FILTER (WHERE direction <> ''), ARRAY[]::text[])",
	"COALESCE(ARRAY_AGG(DISTINCT queue_name) FILTER (WHERE queue_name <> ''), ARRAY[]::text[])",
	"COALESCE(SUM(transfer_initiated_count), 0)",
	"COALESCE(SUM(transfer_completed_count), 0)",
}

// GroupSummary pages over teams (optionally restricted to teamNames) and
// summarizes each team's agent performance in range. Filters: channel.
// A team without members reports zeros.
func (s *Service) GroupSummary(ctx context.Context, req Request, teamNames []string) (*Result[TeamSummary], error) {
	if err := s.prepare(ctx, storage.KindPerformance, &req); err != nil {
		return nil, err
	}

	teams := psql.Select("team_name", "team_members").From(teamsTable).
		OrderBy("team_name").
		Limit(uint64(req.Page.Count)).
		Offset(req.Page.Offset())
	countTeams := psql.Select("COUNT(*)").From(teamsTable)
	if len(teamNames) > 0 {
		teams = teams.Where(sq.Eq{"team_name": teamNames})
		countTeams = countTeams.Where(sq.Eq{"team_name": teamNames})
	}

	type team struct {
		name    string
		members []string
	}
	var page []team
	err := s.query(ctx, teams, func(r *sql.Rows) error {
		var t team
		if err := r.Scan(&t.name, pq.Array(&t.members)); err != nil {
			return err
		}
		page = append(page, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]TeamSummary, 0, len(page))
	for _, t := range page {
		summary, err := s.summarizeTeam(ctx, req, t.name, t.members)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	total, err := s.count(ctx, countTeams)
	if err != nil {
		return nil, err
	}
	return &Result[TeamSummary]{Rows: summaries, TotalRecords: total, Page: req.Page}, nil
}

func (s *Service) summarizeTeam(ctx context.Context, req Request, name string, members []string) (TeamSummary, error) {
	summary := TeamSummary{TeamName: name, Channels: []string{}, Directions: []string{}, Queues: []string{}}
	if len(members) == 0 {
		return summary, nil
	}

	query, args, err := baseWhere(psql.Select(teamSummaryColumns...).From(performanceTable), req.Range, req.Filters,
		sq.Expr("user_name = ANY(?)", pq.Array(members))).ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build team summary query: %w", err)
	}

	var avgHandle, avgWrapUp decimal.NullDecimal
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalInteractions, &avgHandle, &summary.TotalHoldCount, &avgWrapUp,
		pq.Array(&summary.Channels), pq.Array(&summary.Directions), pq.Array(&summary.Queues),
		&summary.TransferInitiated, &summary.TransferCompleted)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize team %s: %w", name, err)
	}
	summary.AvgHandleDuration = coreagg.RoundedAverage(avgHandle)
	summary.AvgWrapUpDuration = coreagg.RoundedAverage(avgWrapUp)
	return summary, nil
}
