package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

// stringList accepts either a JSON array of strings or a single string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = stringList{single}
	return nil
}

type queuePayload struct {
	EngagementID string     `json:"engagement_id"`
	Direction    string     `json:"direction"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	ChannelTypes stringList `json:"channel_types"`
	Consumers    []struct {
		ConsumerNumber      string `json:"consumer_number"`
		ConsumerID          string `json:"consumer_id"`
		ConsumerDisplayName string `json:"consumer_display_name"`
	} `json:"consumers"`
	Flows []struct {
		FlowID   string `json:"flow_id"`
		FlowName string `json:"flow_name"`
	} `json:"flows"`
	Queues []struct {
		QueueID   string `json:"cc_queue_id"`
		QueueName string `json:"queue_name"`
	} `json:"queues"`
	Agents []struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
	} `json:"agents"`
	Channels []struct {
		Channel       string `json:"channel"`
		ChannelSource string `json:"channel_source"`
	} `json:"channels"`
	QueueWaitType    string  `json:"queue_wait_type"`
	Duration         float64 `json:"duration"`
	FlowDuration     float64 `json:"flow_duration"`
	WaitingDuration  float64 `json:"waiting_duration"`
	HandlingDuration float64 `json:"handling_duration"`
	WrapUpDuration   float64 `json:"wrap_up_duration"`
	VoiceMail        float64 `json:"voice_mail"`
	TalkDuration     float64 `json:"talk_duration"`
	TransferCount    float64 `json:"transferCount"`
}

// flattenQueue keeps the first consumer, flow, queue, agent and channel.
// Upstream reports queue durations in seconds; they are stored as milliseconds.
func flattenQueue(raw json.RawMessage) (storage.Record, error) {
	var p queuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode queue record: %w", err)
	}
	start, end, err := parseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	r := storage.QueueInteraction{
		EngagementID:     p.EngagementID,
		Direction:        p.Direction,
		StartTime:        start,
		EndTime:          end,
		ChannelTypes:     strings.Join(p.ChannelTypes, ","),
		QueueWaitType:    p.QueueWaitType,
		Duration:         millis(p.Duration),
		FlowDuration:     millis(p.FlowDuration),
		WaitingDuration:  millis(p.WaitingDuration),
		HandlingDuration: millis(p.HandlingDuration),
		WrapUpDuration:   millis(p.WrapUpDuration),
		VoiceMail:        int64(p.VoiceMail),
		TalkDuration:     millis(p.TalkDuration),
		TransferCount:    int64(p.TransferCount),
	}
	if len(p.Consumers) > 0 {
		r.ConsumerNumber = p.Consumers[0].ConsumerNumber
		r.ConsumerID = p.Consumers[0].ConsumerID
		r.ConsumerDisplayName = p.Consumers[0].ConsumerDisplayName
	}
	if len(p.Flows) > 0 {
		r.FlowID = p.Flows[0].FlowID
		r.FlowName = p.Flows[0].FlowName
	}
	if len(p.Queues) > 0 {
		r.QueueID = p.Queues[0].QueueID
		r.QueueName = p.Queues[0].QueueName
	}
	if len(p.Agents) > 0 {
		r.UserID = p.Agents[0].UserID
		r.DisplayName = p.Agents[0].DisplayName
	}
	if len(p.Channels) > 0 {
		r.Channel = p.Channels[0].Channel
		r.ChannelSource = p.Channels[0].ChannelSource
	}
	return r, nil
}

// performancePayload shadows the timestamp fields so they can be parsed leniently.
type performancePayload struct {
	storage.AgentPerformance
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func flattenPerformance(raw json.RawMessage) (storage.Record, error) {
	var p performancePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode performance record: %w", err)
	}
	start, end, err := parseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	r := p.AgentPerformance
	r.StartTime, r.EndTime = start, end
	return r, nil
}

type timecardPayload struct {
	WorkSessionID       string `json:"work_session_id"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	UserID              string `json:"user_id"`
	UserName            string `json:"user_name"`
	UserStatus          string `json:"user_status"`
	UserSubStatus       string `json:"user_sub_status"`
	ReadyDuration       int64  `json:"ready_duration"`
	OccupiedDuration    int64  `json:"occupied_duration"`
	NotReadyDuration    int64  `json:"not_ready_duration"`
	WorkSessionDuration int64  `json:"work_session_duration"`
}

// flattenTimecard takes the first non-zero of the ready, occupied, not-ready
// and work-session durations.
func flattenTimecard(raw json.RawMessage) (storage.Record, error) {
	var p timecardPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode timecard record: %w", err)
	}
	start, end, err := parseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	return storage.AgentTimecard{
		WorkSessionID: p.WorkSessionID,
		StartTime:     start,
		EndTime:       end,
		UserID:        p.UserID,
		UserName:      p.UserName,
		UserStatus:    p.UserStatus,
		UserSubStatus: p.UserSubStatus,
		Duration:      firstNonZero(p.ReadyDuration, p.OccupiedDuration, p.NotReadyDuration, p.WorkSessionDuration),
	}, nil
}

type engagementPayload struct {
	storage.AgentEngagement
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Channels  []struct {
		Channel       string `json:"channel"`
		ChannelSource string `json:"channel_source"`
	} `json:"channels"`
	Queues []struct {
		QueueID   string `json:"queue_id"`
		QueueName string `json:"queue_name"`
	} `json:"queues"`
	Users []struct {
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
	} `json:"users"`
}

// flattenEngagement joins every queue and user of the engagement with commas.
func flattenEngagement(raw json.RawMessage) (storage.Record, error) {
	var p engagementPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode engagement record: %w", err)
	}
	start, end, err := parseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	r := p.AgentEngagement
	r.StartTime, r.EndTime = start, end
	r.Channel, r.ChannelSource = "", ""
	if len(p.Channels) > 0 {
		r.Channel = p.Channels[0].Channel
		r.ChannelSource = p.Channels[0].ChannelSource
	}

	queueIDs := make([]string, 0, len(p.Queues))
	queueNames := make([]string, 0, len(p.Queues))
	for _, q := range p.Queues {
		queueIDs = append(queueIDs, q.QueueID)
		queueNames = append(queueNames, q.QueueName)
	}
	userIDs := make([]string, 0, len(p.Users))
	userNames := make([]string, 0, len(p.Users))
	for _, u := range p.Users {
		userIDs = append(userIDs, u.UserID)
		userNames = append(userNames, u.UserName)
	}
	r.QueueID = joinNonEmpty(queueIDs)
	r.QueueName = joinNonEmpty(queueNames)
	r.UserID = joinNonEmpty(userIDs)
	r.UserName = joinNonEmpty(userNames)
	return r, nil
}

type callLogPayload struct {
	storage.CallLog
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func flattenCallLog(raw json.RawMessage) (storage.Record, error) {
	var p callLogPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode call log record: %w", err)
	}
	start, end, err := parseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	r := p.CallLog
	r.StartTime, r.EndTime = start, end
	return r, nil
}

type agentPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func flattenAgent(raw json.RawMessage) (storage.Record, error) {
	var p agentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode agent record: %w", err)
	}
	return storage.Agent{UserID: p.UserID, UserName: p.DisplayName}, nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// parseTimestamp returns the zero time for an empty value.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := parseTimestamp(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := parseTimestamp(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_time: %w", err)
	}
	return start, end, nil
}

func millis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func joinNonEmpty(values []string) string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ",")
}
