// Package tool holds the executable tool catalog the planner agent may
// request on a turn: web search, time lookup, and plan persistence.
package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
	searchx "github.com/tanpawarit/agentic-daily-planner/pkg/search"
)

const (
	ToolWebSearch        = "web.search"
	ToolTimeNow          = "time.now"
	ToolPlanCreate       = "plan.create"
	ToolPlanSave         = "plan.save"
	ToolPlanLoad         = "plan.load"
	ToolPlanList         = "plan.list"
	ToolTaskUpdateStatus = "task.update_status"
)

// SearchProvider is the slice of the web search client the catalog needs.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]searchx.Result, error)
}

// Deps wires the catalog to its backing services.
type Deps struct {
	Store     planx.Store
	Search    SearchProvider
	Generator contractx.PlanGenerator
	Now       func() time.Time
}

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

func Build(deps Deps) ([]*schema.ToolInfo, Executor, error) {
	executor, err := NewExecutor(deps)
	if err != nil {
		return nil, nil, err
	}
	return Infos(), executor, nil
}

func NewExecutor(deps Deps) (Executor, error) {
	if deps.Store == nil {
		return nil, errors.New("tool: plan store is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("tool: plan generator is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	fallback := DefaultExecutor()
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolWebSearch:
			return executeWebSearch(ctx, deps, args)
		case ToolTimeNow:
			return executeTimeNow(deps), nil
		case ToolPlanCreate:
			return executePlanCreate(ctx, deps, args)
		case ToolPlanSave:
			return executePlanSave(ctx, deps, args)
		case ToolPlanLoad:
			return executePlanLoad(ctx, deps, args)
		case ToolPlanList:
			return executePlanList(ctx, deps)
		case ToolTaskUpdateStatus:
			return executeTaskUpdateStatus(ctx, deps, args)
		default:
			return fallback(ctx, tool, args)
		}
	}, nil
}

func DefaultExecutor() Executor {
	return func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable", tool),
		}, nil
	}
}

// Gateway runs requested tools strictly in order so later tools can see
// the side effects of earlier ones.
type Gateway struct {
	executor Executor
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(deps Deps) (*Gateway, error) {
	executor, err := NewExecutor(deps)
	if err != nil {
		return nil, err
	}
	return &Gateway{executor: executor}, nil
}

func (g *Gateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		out, err := g.executor(ctx, req.Tool, req.Args)
		if err != nil {
			return nil, fmt.Errorf("execute tool=%s: %w", req.Tool, err)
		}
		if out.Error != "" {
			log.Warn().
				Str("tool", req.Tool).
				Str("error", out.Error).
				Msg("tool execution degraded")
		} else {
			log.Debug().
				Str("tool", req.Tool).
				Msg("tool executed")
		}
		results = append(results, out)
	}
	return results, nil
}

func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolWebSearch,
			Desc: "Search the web for information relevant to planning, such as weather, events, or opening hours.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Search query", Required: true},
			}),
		},
		{
			Name:        ToolTimeNow,
			Desc:        "Get the current date, time, day of week, and remaining hours in the day.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolPlanCreate,
			Desc: "Generate a structured daily plan from the user's goal and save it.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"goal":        {Type: schema.String, Desc: "What the user wants to accomplish today", Required: true},
				"constraints": {Type: schema.String, Desc: "Time or resource constraints, if any"},
			}),
		},
		{
			Name: ToolPlanSave,
			Desc: "Persist an already generated daily plan.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"plan": {Type: schema.Object, Desc: "Daily plan document to save", Required: true},
			}),
		},
		{
			Name: ToolPlanLoad,
			Desc: "Load a saved daily plan. Omit plan_id to load the most recent plan.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"plan_id": {Type: schema.String, Desc: "Identifier of the plan to load"},
			}),
		},
		{
			Name:        ToolPlanList,
			Desc:        "List saved daily plans, most recent first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolTaskUpdateStatus,
			Desc: "Update the status of one task inside a saved plan.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"plan_id": {Type: schema.String, Desc: "Plan containing the task; omit for the most recent plan"},
				"task_id": {Type: schema.String, Desc: "Task to update", Required: true},
				"status":  {Type: schema.String, Desc: "New status: pending, in_progress, or completed", Required: true},
			}),
		},
	}
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, ok := args[key].(string)
	if !ok {
		return ""
	}
	return v
}
