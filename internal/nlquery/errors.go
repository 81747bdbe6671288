package nlquery

import "errors"

var (
	// ErrAssistantUnavailable is returned when no language model is configured
	// or the model call fails.
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	// ErrPlanParse marks model output that is not a JSON object.
	ErrPlanParse = errors.New("failed to parse plan")

	// ErrPlanStructure marks a plan with missing or ill-typed fields, or one
	// that names columns outside its kind.
	ErrPlanStructure = errors.New("invalid plan structure")

	// ErrForbiddenKind marks a plan naming a kind outside the allow-list.
	ErrForbiddenKind = errors.New("kind not allowed")

	// ErrQueryExecution wraps a database failure while running a plan.
	ErrQueryExecution = errors.New("query execution failed")
)
