// Package nlquery turns free-text report requests into a single read-only
// query. The language model only proposes a plan; the plan is checked
// against a fixed kind allow-list, operator table and descriptor pattern
// before anything reaches the database.
package nlquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxRows caps findAll results when no limit is configured.
const DefaultMaxRows = 1000

// Options tunes a Planner.
type Options struct {
	MaxRows int
	// AssistantTimeout bounds the language model call. Zero means no bound.
	AssistantTimeout time.Duration
}

// Planner runs natural-language report requests.
type Planner struct {
	completer        Completer
	db               TxBeginner
	maxRows          int
	assistantTimeout time.Duration
	nowFn            func() time.Time
}

func NewPlanner(completer Completer, db TxBeginner, opts Options) *Planner {
	if completer == nil {
		panic("nlquery: completer must not be nil")
	}
	if db == nil {
		panic("nlquery: db must not be nil")
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	return &Planner{
		completer:        completer,
		db:               db,
		maxRows:          opts.MaxRows,
		assistantTimeout: opts.AssistantTimeout,
		nowFn:            time.Now,
	}
}

// Result is an executed plan.
type Result struct {
	Query string
	Plan  *Plan
	Data  any
}

// Run plans and executes request. At most one query is executed, and none
// when the plan fails any check.
func (p *Planner) Run(ctx context.Context, request string) (*Result, error) {
	prompt, err := BuildPrompt(AnchorsAt(p.nowFn()), request)
	if err != nil {
		return nil, err
	}

	reply, err := p.complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrAssistantUnavailable) {
			err = fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
		}
		return nil, err
	}

	plan, err := ParsePlan(reply)
	if err != nil {
		slog.Warn("[NLQuery] Rejected plan", "request", request, "reply", reply, "error", err)
		return nil, err
	}

	builder, err := plan.Build(p.maxRows)
	if err != nil {
		slog.Warn("[NLQuery] Rejected plan", "request", request, "kind", plan.Kind, "error", err)
		return nil, err
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanStructure, err)
	}

	slog.Info("[NLQuery] Executing plan",
		"kind", plan.Kind,
		"method", plan.Method,
		"query", query)

	data, err := execute(ctx, p.db, query, args, plan.Method == MethodFindOne)
	if err != nil {
		return nil, err
	}
	return &Result{Query: request, Plan: plan, Data: data}, nil
}

func (p *Planner) complete(ctx context.Context, prompt string) (string, error) {
	if p.assistantTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.assistantTimeout)
		defer cancel()
	}
	return p.completer.Complete(ctx, systemPrompt, prompt)
}
