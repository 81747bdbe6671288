package storage

import "fmt"

// Kind identifies one upstream record family and its table.
type Kind string

const (
	KindQueue       Kind = "queue"
	KindPerformance Kind = "performance"
	KindTimecard    Kind = "timecard"
	KindEngagement  Kind = "engagement"
	KindCallLog     Kind = "call_log"
	KindDirectory   Kind = "directory"
)

// TableSpec describes where a kind is persisted.
type TableSpec struct {
	Table      string
	NaturalKey string
	Columns    []string
	// Ranged is false for kinds without a start_time (the agent directory).
	Ranged bool
}

var tables = map[Kind]TableSpec{
	KindQueue: {
		Table:      "agent_queue",
		NaturalKey: "engagement_id",
		Ranged:     true,
		Columns: []string{
			"engagement_id", "direction", "start_time", "end_time", "channel_types",
			"consumer_number", "consumer_id", "consumer_display_name",
			"flow_id", "flow_name", "cc_queue_id", "queue_name",
			"user_id", "display_name", "channel", "channel_source", "queue_wait_type",
			"duration", "flow_duration", "waiting_duration", "handling_duration",
			"wrap_up_duration", "voice_mail", "talk_duration", "transfer_count",
		},
	},
	KindPerformance: {
		Table:      "agent_performance",
		NaturalKey: "engagement_id",
		Ranged:     true,
		Columns: []string{
			"engagement_id", "start_time", "end_time", "direction", "user_id", "user_name",
			"channel", "channel_source", "queue_id", "queue_name", "team_id", "team_name",
			"handled_count", "handle_duration", "direct_transfer_count",
			"warm_transfer_initiated_count", "warm_transfer_completed_count",
			"transfer_initiated_count", "transfer_completed_count", "warm_conference_count",
			"agent_offered_count", "agent_refused_count", "agent_missed_count",
			"ring_disconnect_count", "agent_declined_count", "agent_message_sent_count",
			"hold_count", "conversation_duration", "conference_duration", "conference_count",
			"hold_duration", "wrap_up_duration", "outbound_handled_count",
			"outbound_handle_duration", "warm_conference_duration", "warm_transfer_duration",
			"ring_duration", "agent_first_response_duration", "dial_duration",
			"inbound_conversation_duration", "inbound_handle_duration",
			"inbound_handled_count", "outbound_conversation_duration",
		},
	},
	KindTimecard: {
		Table:      "agent_timecard",
		NaturalKey: "work_session_id",
		Ranged:     true,
		Columns: []string{
			"work_session_id", "start_time", "end_time", "user_id", "user_name",
			"user_status", "user_sub_status", "duration",
		},
	},
	KindEngagement: {
		Table:      "agent_engagement",
		NaturalKey: "engagement_id",
		Ranged:     true,
		Columns: []string{
			"engagement_id", "direction", "start_time", "end_time",
			"enter_channel", "enter_channel_source", "channel", "channel_source",
			"consumer_name", "consumer_email", "dnis", "ani",
			"queue_id", "queue_name", "user_id", "user_name",
			"duration", "handle_duration", "conversation_duration", "hold_count", "hold_duration",
			"warm_transfer_initiated_count", "warm_transfer_completed_count",
			"direct_transfer_count", "transfer_initiated_count", "transfer_completed_count",
			"warm_conference_count", "conference_count", "abandoned_count",
		},
	},
	KindCallLog: {
		Table:      "call_logs",
		NaturalKey: "call_path_id",
		Ranged:     true,
		Columns: []string{
			"call_path_id", "call_id", "direction", "international", "caller_did_number",
			"connect_type", "call_type", "hide_caller_id", "caller_name",
			"callee_did_number", "caller_number_type", "caller_country_iso_code",
			"caller_country_code", "callee_ext_id", "callee_name", "callee_email",
			"callee_ext_number", "callee_ext_type", "callee_number_type",
			"callee_country_iso_code", "callee_country_code", "end_to_end",
			"site_id", "site_name", "duration", "call_result",
			"start_time", "end_time", "recording_status",
		},
	},
	KindDirectory: {
		Table:      "agents",
		NaturalKey: "user_id",
		Columns:    []string{"user_id", "user_name"},
	},
}

// Kinds lists every persisted kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindQueue, KindPerformance, KindTimecard, KindEngagement, KindCallLog, KindDirectory}
}

// Table returns the persistence spec for kind.
func Table(kind Kind) (TableSpec, error) {
	spec, ok := tables[kind]
	if !ok {
		return TableSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return spec, nil
}

// ParseKind converts a path or config value into a Kind.
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if _, ok := tables[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return kind, nil
}
