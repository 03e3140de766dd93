package contract

import (
	"context"

	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

// PlanGenerator synthesizes a daily plan from a natural-language goal.
// Not safe to retry blindly: each call may produce a new plan identity.
type PlanGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*planx.DailyPlan, error)
}

// ToolPlanner decides which tools, if any, one turn should invoke.
type ToolPlanner interface {
	PlanTools(ctx context.Context, req ToolPlanRequest) (ToolPlanResponse, error)
}

// Responder synthesizes the final user-facing reply.
type Responder interface {
	Respond(ctx context.Context, req RespondRequest) (string, error)
}

type Registry interface {
	Generator() PlanGenerator
	ToolPlanner() ToolPlanner
	Responder() Responder
}

// ToolGateway executes tool requests strictly in order; per-tool
// failures are reported inside the results, not as the error.
type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}
