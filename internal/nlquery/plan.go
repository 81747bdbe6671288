package nlquery

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MethodFindOne = "findOne"
	MethodFindAll = "findAll"
)

// Plan is the structured query a language model returns for a request.
type Plan struct {
	Kind    string      `json:"kind"`
	Method  string      `json:"method"`
	Options PlanOptions `json:"options"`
}

// PlanOptions narrow a plan's query. Unknown keys are dropped on parse.
type PlanOptions struct {
	Where      map[string]json.RawMessage `json:"where,omitempty"`
	Attributes []json.RawMessage          `json:"attributes,omitempty"`
	Group      []string                   `json:"group,omitempty"`
	Order      []json.RawMessage          `json:"order,omitempty"`
	Limit      *int                       `json:"limit,omitempty"`
}

// ParsePlan decodes and checks model output. Malformed JSON, a missing
// kind, method or options, and a kind outside the allow-list are each
// rejected with their own error.
func ParsePlan(text string) (*Plan, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanParse, err)
	}

	rawKind, hasKind := envelope["kind"]
	rawMethod, hasMethod := envelope["method"]
	rawOptions, hasOptions := envelope["options"]
	if !hasKind || !hasMethod || !hasOptions {
		return nil, fmt.Errorf("%w: kind, method and options are required", ErrPlanStructure)
	}

	var plan Plan
	if err := json.Unmarshal(rawKind, &plan.Kind); err != nil || plan.Kind == "" {
		return nil, fmt.Errorf("%w: kind must be a non-empty string", ErrPlanStructure)
	}
	if err := json.Unmarshal(rawMethod, &plan.Method); err != nil || plan.Method == "" {
		return nil, fmt.Errorf("%w: method must be a non-empty string", ErrPlanStructure)
	}
	if string(rawOptions) == "null" {
		return nil, fmt.Errorf("%w: options are required", ErrPlanStructure)
	}

	if _, err := lookup(plan.Kind); err != nil {
		return nil, err
	}

	if plan.Method != MethodFindOne && plan.Method != MethodFindAll {
		return nil, fmt.Errorf("%w: method %q is not a read method", ErrPlanStructure, plan.Method)
	}
	if err := json.Unmarshal(rawOptions, &plan.Options); err != nil {
		return nil, fmt.Errorf("%w: options: %v", ErrPlanStructure, err)
	}
	return &plan, nil
}
