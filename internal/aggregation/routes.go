package aggregation

import (
	"context"

	v1 "github.com/aevon-lab/cc-reporting/internal/api/v1"
	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

// rows unpacks a report result for the response envelope.
func rows[T any](res *Result[T], err error) (any, int64, []storage.Agent, error) {
	if err != nil {
		return nil, 0, nil, err
	}
	return res.Rows, res.TotalRecords, res.Agents, nil
}

func (s *Service) queueAll(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"queue_name": body.Queues, "display_name": body.Agents}
	return rows(s.QueueList(ctx, req))
}

func (s *Service) queueDaily(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"queue_name": body.Queues, "cc_queue_id": body.QueueIDs}
	return rows(s.QueueReport(ctx, req, coreagg.Daily))
}

func (s *Service) queueInterval(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	bucket, err := coreagg.ParseInterval(body.Interval)
	if err != nil {
		return nil, 0, nil, err
	}
	req.Filters = Filters{"queue_name": body.Queues, "cc_queue_id": body.QueueIDs}
	return rows(s.QueueReport(ctx, req, bucket))
}

func (s *Service) flowInterval(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	bucket, err := coreagg.ParseFlowInterval(body.Interval)
	if err != nil {
		return nil, 0, nil, err
	}
	req.Filters = Filters{"flow_name": body.Flows}
	return rows(s.FlowReport(ctx, req, bucket))
}

func (s *Service) abandonedCalls(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"queue_name": body.Queues, "display_name": body.Agents}
	return rows(s.AbandonedCalls(ctx, req))
}

func (s *Service) agentAbandoned(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"queue_name": body.Queues, "direction": body.Directions}
	return rows(s.AgentAbandonedReport(ctx, req))
}

func (s *Service) performance(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"user_name": body.Agents, "channel": body.Channels}
	return rows(s.PerformanceList(ctx, req))
}

func (s *Service) timecard(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"user_status": body.Status, "user_name": body.Agents}
	return rows(s.TimecardList(ctx, req))
}

func (s *Service) login(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"user_name": body.Agents}
	return rows(s.LoginReport(ctx, req))
}

func (s *Service) engagement(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"enter_channel": body.Channels, "user_name": body.Agents}
	return rows(s.EngagementList(ctx, req))
}

func (s *Service) groupSummary(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error) {
	req.Filters = Filters{"channel": body.Channels}
	return rows(s.GroupSummary(ctx, req, body.Teams))
}
