package storage

import "time"

// Record is one flattened upstream row ready for insert-if-absent.
// Values must be aligned with the kind's TableSpec.Columns.
type Record interface {
	NaturalKey() string
	Values() []any
}

// QueueInteraction is one contact-center engagement as seen by a queue.
// Durations are milliseconds.
type QueueInteraction struct {
	EngagementID        string    `json:"engagement_id"`
	Direction           string    `json:"direction"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	ChannelTypes        string    `json:"channel_types"`
	ConsumerNumber      string    `json:"consumer_number"`
	ConsumerID          string    `json:"consumer_id"`
	ConsumerDisplayName string    `json:"consumer_display_name"`
	FlowID              string    `json:"flow_id"`
	FlowName            string    `json:"flow_name"`
	QueueID             string    `json:"cc_queue_id"`
	QueueName           string    `json:"queue_name"`
	UserID              string    `json:"user_id"`
	DisplayName         string    `json:"display_name"`
	Channel             string    `json:"channel"`
	ChannelSource       string    `json:"channel_source"`
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

func (r QueueInteraction) NaturalKey() string { return r.EngagementID }

func (r QueueInteraction) Values() []any {
	return []any{
		r.EngagementID, r.Direction, nullableTime(r.StartTime), nullableTime(r.EndTime), r.ChannelTypes,
		r.ConsumerNumber, r.ConsumerID, r.ConsumerDisplayName,
		r.FlowID, r.FlowName, r.QueueID, r.QueueName,
		r.UserID, r.DisplayName, r.Channel, r.ChannelSource, r.QueueWaitType,
		r.Duration, r.FlowDuration, r.WaitingDuration, r.HandlingDuration,
		r.WrapUpDuration, r.VoiceMail, r.TalkDuration, r.TransferCount,
	}
}

// AgentPerformance is one agent's handling of an engagement.
// The upstream payload uses the same field names, so it decodes directly.
type AgentPerformance struct {
	EngagementID                 string    `json:"engagement_id"`
	StartTime                    time.Time `json:"start_time"`
	EndTime                      time.Time `json:"end_time"`
	Direction                    string    `json:"direction"`
	UserID                       string    `json:"user_id"`
	UserName                     string    `json:"user_name"`
	Channel                      string    `json:"channel"`
	ChannelSource                string    `json:"channel_source"`
	QueueID                      string    `json:"queue_id"`
	QueueName                    string    `json:"queue_name"`
	TeamID                       string    `json:"team_id"`
	TeamName                     string    `json:"team_name"`
	HandledCount                 int64     `json:"handled_count"`
	HandleDuration               int64     `json:"handle_duration"`
	DirectTransferCount          int64     `json:"direct_transfer_count"`
	WarmTransferInitiatedCount   int64     `json:"warm_transfer_initiated_count"`
	WarmTransferCompletedCount   int64     `json:"warm_transfer_completed_count"`
	TransferInitiatedCount       int64     `json:"transfer_initiated_count"`
	TransferCompletedCount       int64     `json:"transfer_completed_count"`
	WarmConferenceCount          int64     `json:"warm_conference_count"`
	AgentOfferedCount            int64     `json:"agent_offered_count"`
	AgentRefusedCount            int64     `json:"agent_refused_count"`
	AgentMissedCount             int64     `json:"agent_missed_count"`
	RingDisconnectCount          int64     `json:"ring_disconnect_count"`
	AgentDeclinedCount           int64     `json:"agent_declined_count"`
	AgentMessageSentCount        int64     `json:"agent_message_sent_count"`
	HoldCount                    int64     `json:"hold_count"`
	ConversationDuration         int64     `json:"conversation_duration"`
	ConferenceDuration           int64     `json:"conference_duration"`
	ConferenceCount              int64     `json:"conference_count"`
	HoldDuration                 int64     `json:"hold_duration"`
	WrapUpDuration               int64     `json:"wrap_up_duration"`
	OutboundHandledCount         int64     `json:"outbound_handled_count"`
	OutboundHandleDuration       int64     `json:"outbound_handle_duration"`
	WarmConferenceDuration       int64     `json:"warm_conference_duration"`
	WarmTransferDuration         int64     `json:"warm_transfer_duration"`
	RingDuration                 int64     `json:"ring_duration"`
	AgentFirstResponseDuration   int64     `json:"agent_first_response_duration"`
	DialDuration                 int64     `json:"dial_duration"`
	InboundConversationDuration  int64     `json:"inbound_conversation_duration"`
	InboundHandleDuration        int64     `json:"inbound_handle_duration"`
	InboundHandledCount          int64     `json:"inbound_handled_count"`
	OutboundConversationDuration int64     `json:"outbound_conversation_duration"`
}

func (r AgentPerformance) NaturalKey() string { return r.EngagementID }

func (r AgentPerformance) Values() []any {
	return []any{
		r.EngagementID, nullableTime(r.StartTime), nullableTime(r.EndTime), r.Direction, r.UserID, r.UserName,
		r.Channel, r.ChannelSource, r.QueueID, r.QueueName, r.TeamID, r.TeamName,
		r.HandledCount, r.HandleDuration, r.DirectTransferCount,
		r.WarmTransferInitiatedCount, r.WarmTransferCompletedCount,
		r.TransferInitiatedCount, r.TransferCompletedCount, r.WarmConferenceCount,
		r.AgentOfferedCount, r.AgentRefusedCount, r.AgentMissedCount,
		r.RingDisconnectCount, r.AgentDeclinedCount, r.AgentMessageSentCount,
		r.HoldCount, r.ConversationDuration, r.ConferenceDuration, r.ConferenceCount,
		r.HoldDuration, r.WrapUpDuration, r.OutboundHandledCount,
		r.OutboundHandleDuration, r.WarmConferenceDuration, r.WarmTransferDuration,
		r.RingDuration, r.AgentFirstResponseDuration, r.DialDuration,
		r.InboundConversationDuration, r.InboundHandleDuration,
		r.InboundHandledCount, r.OutboundConversationDuration,
	}
}

// AgentTimecard is one status segment of an agent work session.
type AgentTimecard struct {
	WorkSessionID string    `json:"work_session_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserStatus    string    `json:"user_status"`
	UserSubStatus string    `json:"user_sub_status"`
	Duration      int64     `json:"duration"`
}

func (r AgentTimecard) NaturalKey() string { return r.WorkSessionID }

func (r AgentTimecard) Values() []any {
	return []any{
		r.WorkSessionID, nullableTime(r.StartTime), nullableTime(r.EndTime), r.UserID, r.UserName,
		r.UserStatus, r.UserSubStatus, r.Duration,
	}
}

// AgentEngagement is one engagement with its queue and agent lists joined.
type AgentEngagement struct {
	EngagementID               string    `json:"engagement_id"`
	Direction                  string    `json:"direction"`
	StartTime                  time.Time `json:"start_time"`
	EndTime                    time.Time `json:"end_time"`
	EnterChannel               string    `json:"enter_channel"`
	EnterChannelSource         string    `json:"enter_channel_source"`
	Channel                    string    `json:"channel"`
	ChannelSource              string    `json:"channel_source"`
	ConsumerName               string    `json:"consumer_name"`
	ConsumerEmail              string    `json:"consumer_email"`
	DNIS                       string    `json:"dnis"`
	ANI                        string    `json:"ani"`
	QueueID                    string    `json:"queue_id"`
	QueueName                  string    `json:"queue_name"`
	UserID                     string    `json:"user_id"`
	UserName                   string    `json:"user_name"`
	Duration                   int64     `json:"duration"`
	HandleDuration             int64     `json:"handle_duration"`
	ConversationDuration       int64     `json:"conversation_duration"`
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

func (r AgentEngagement) NaturalKey() string { return r.EngagementID }

func (r AgentEngagement) Values() []any {
	return []any{
		r.EngagementID, r.Direction, nullableTime(r.StartTime), nullableTime(r.EndTime),
		r.EnterChannel, r.EnterChannelSource, r.Channel, r.ChannelSource,
		r.ConsumerName, r.ConsumerEmail, r.DNIS, r.ANI,
		r.QueueID, r.QueueName, r.UserID, r.UserName,
		r.Duration, r.HandleDuration, r.ConversationDuration, r.HoldCount, r.HoldDuration,
		r.WarmTransferInitiatedCount, r.WarmTransferCompletedCount,
		r.DirectTransferCount, r.TransferInitiatedCount, r.TransferCompletedCount,
		r.WarmConferenceCount, r.ConferenceCount, r.AbandonedCount,
	}
}

// CallLog is one leg of a phone call history entry.
type CallLog struct {
	CallPathID           string    `json:"call_path_id"`
	CallID               string    `json:"call_id"`
	Direction            string    `json:"direction"`
	International        bool      `json:"international"`
	CallerDIDNumber      string    `json:"caller_did_number"`
	ConnectType          string    `json:"connect_type"`
	CallType             string    `json:"call_type"`
	HideCallerID         bool      `json:"hide_caller_id"`
	CallerName           string    `json:"caller_name"`
	CalleeDIDNumber      string    `json:"callee_did_number"`
	CallerNumberType     string    `json:"caller_number_type"`
	CallerCountryISOCode string    `json:"caller_country_iso_code"`
	CallerCountryCode    string    `json:"caller_country_code"`
	CalleeExtID          string    `json:"callee_ext_id"`
	CalleeName           string    `json:"callee_name"`
	CalleeEmail          string    `json:"callee_email"`
	CalleeExtNumber      string    `json:"callee_ext_number"`
	CalleeExtType        string    `json:"callee_ext_type"`
	CalleeNumberType     string    `json:"callee_number_type"`
	CalleeCountryISOCode string    `json:"callee_country_iso_code"`
	CalleeCountryCode    string    `json:"callee_country_code"`
	EndToEnd             bool      `json:"end_to_end"`
	SiteID               string    `json:"site_id"`
	SiteName             string    `json:"site_name"`
	Duration             int64     `json:"duration"`
	CallResult           string    `json:"call_result"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	RecordingStatus      string    `json:"recording_status"`
}

func (r CallLog) NaturalKey() string { return r.CallPathID }

func (r CallLog) Values() []any {
	return []any{
		r.CallPathID, r.CallID, r.Direction, r.International, r.CallerDIDNumber,
		r.ConnectType, r.CallType, r.HideCallerID, r.CallerName,
		r.CalleeDIDNumber, r.CallerNumberType, r.CallerCountryISOCode,
		r.CallerCountryCode, r.CalleeExtID, r.CalleeName, r.CalleeEmail,
		r.CalleeExtNumber, r.CalleeExtType, r.CalleeNumberType,
		r.CalleeCountryISOCode, r.CalleeCountryCode, r.EndToEnd,
		r.SiteID, r.SiteName, r.Duration, r.CallResult,
		nullableTime(r.StartTime), nullableTime(r.EndTime), r.RecordingStatus,
	}
}

// Agent is one entry of the contact-center agent directory.
type Agent struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

func (r Agent) NaturalKey() string { return r.UserID }

func (r Agent) Values() []any { return []any{r.UserID, r.UserName} }

// nullableTime stores a missing upstream timestamp as SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
