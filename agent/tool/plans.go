package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

// PlanSaveOutput acknowledges a persisted plan.
type PlanSaveOutput struct {
	PlanID string `json:"plan_id"`
	Saved  bool   `json:"saved"`
}

// PlanListOutput carries the stored-plan listing, most recent first.
type PlanListOutput struct {
	Plans []planx.Summary `json:"plans"`
}

func executePlanCreate(ctx context.Context, deps Deps, args map[string]any) (contractx.ToolResult, error) {
	goal := stringArg(args, "goal")
	if goal == "" {
		return contractx.ToolResult{
			Tool:  ToolPlanCreate,
			Error: "plan.create requires a goal argument",
		}, nil
	}

	now := deps.Now()
	generated, err := deps.Generator.Generate(ctx, contractx.GenerateRequest{
		Goal:        goal,
		Constraints: stringArg(args, "constraints"),
		Time:        NewTimeContext(now),
	})
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanCreate,
			Error: fmt.Sprintf("generate plan: %v", err),
		}, nil
	}

	stampPlan(generated, now)
	if _, err := deps.Store.Create(ctx, generated); err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanCreate,
			Error: fmt.Sprintf("save generated plan: %v", err),
		}, nil
	}

	return contractx.ToolResult{
		Tool:   ToolPlanCreate,
		Result: generated,
	}, nil
}

func executePlanSave(ctx context.Context, deps Deps, args map[string]any) (contractx.ToolResult, error) {
	raw, ok := args["plan"]
	if !ok {
		return contractx.ToolResult{
			Tool:  ToolPlanSave,
			Error: "plan.save requires a plan argument",
		}, nil
	}

	p, err := decodePlanArg(raw)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanSave,
			Error: fmt.Sprintf("decode plan argument: %v", err),
		}, nil
	}
	stampPlan(p, deps.Now())

	id, err := deps.Store.Create(ctx, p)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanSave,
			Error: fmt.Sprintf("save plan: %v", err),
		}, nil
	}
	return contractx.ToolResult{
		Tool:   ToolPlanSave,
		Result: PlanSaveOutput{PlanID: id, Saved: true},
	}, nil
}

func executePlanLoad(ctx context.Context, deps Deps, args map[string]any) (contractx.ToolResult, error) {
	planID := stringArg(args, "plan_id")

	var (
		p   *planx.DailyPlan
		err error
	)
	if planID == "" {
		p, err = deps.Store.Latest(ctx)
	} else {
		p, err = deps.Store.Load(ctx, planID)
	}
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanLoad,
			Error: fmt.Sprintf("load plan: %v", err),
		}, nil
	}
	return contractx.ToolResult{
		Tool:   ToolPlanLoad,
		Result: p,
	}, nil
}

func executePlanList(ctx context.Context, deps Deps) (contractx.ToolResult, error) {
	summaries, err := deps.Store.List(ctx)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolPlanList,
			Error: fmt.Sprintf("list plans: %v", err),
		}, nil
	}
	return contractx.ToolResult{
		Tool:   ToolPlanList,
		Result: PlanListOutput{Plans: summaries},
	}, nil
}

func executeTaskUpdateStatus(ctx context.Context, deps Deps, args map[string]any) (contractx.ToolResult, error) {
	taskID := stringArg(args, "task_id")
	status := planx.Status(stringArg(args, "status"))
	if taskID == "" || status == "" {
		return contractx.ToolResult{
			Tool:  ToolTaskUpdateStatus,
			Error: "task.update_status requires task_id and status arguments",
		}, nil
	}

	planID := stringArg(args, "plan_id")
	if planID == "" {
		latest, err := deps.Store.Latest(ctx)
		if err != nil {
			return contractx.ToolResult{
				Tool:  ToolTaskUpdateStatus,
				Error: fmt.Sprintf("resolve latest plan: %v", err),
			}, nil
		}
		planID = latest.PlanID
	}

	updated, err := deps.Store.Update(ctx, planID, func(p *planx.DailyPlan) error {
		return p.SetTaskStatus(taskID, status)
	})
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolTaskUpdateStatus,
			Error: fmt.Sprintf("update task status: %v", err),
		}, nil
	}
	return contractx.ToolResult{
		Tool:   ToolTaskUpdateStatus,
		Result: updated,
	}, nil
}

// stampPlan fills the bookkeeping fields a freshly generated or
// submitted plan may be missing.
func stampPlan(p *planx.DailyPlan, now time.Time) {
	if p == nil {
		return
	}
	if p.Date == "" {
		p.Date = now.Format("2006-01-02")
	}
	if p.CreatedAt == "" {
		p.CreatedAt = now.Format(time.RFC3339)
	}
	p.CurrentTime = now.Format("15:04")
}

func decodePlanArg(raw any) (*planx.DailyPlan, error) {
	if raw == nil {
		return nil, errors.New("plan argument is nil")
	}
	if p, ok := raw.(*planx.DailyPlan); ok {
		return p, nil
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var p planx.DailyPlan
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
