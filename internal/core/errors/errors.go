package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpInvalidRequestError   = "invalid_request"
	HttpUnauthorizedError     = "unauthorized"
	HttpUpstreamError         = "upstream_error"
	HttpPlanParseError        = "plan_parse_failed"
	HttpInvalidPlanError      = "invalid_plan"
	HttpForbiddenKindError    = "forbidden_kind"
	HttpQueryExecutionError   = "query_execution_failed"
	HttpAssistantUnavailError = "assistant_unavailable"
)

// ErrorResponse is the error response body shared by every handler.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
