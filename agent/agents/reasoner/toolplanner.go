package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
)

type toolPlannerImpl struct {
	runner       compose.Runnable[map[string]any, *schema.Message]
	allowedTools map[string]struct{}
}

func newToolPlanner(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*toolPlannerImpl, error) {
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind planner tools: %v", contractx.ErrModelInvoke, err)
	}
	runner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planning graph: %v", contractx.ErrModelInvoke, err)
	}

	allowedTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	return &toolPlannerImpl{
		runner:       runner,
		allowedTools: allowedTools,
	}, nil
}

// PlanTools asks the model to request tools for the turn. A content-only
// response is treated as a direct answer, typically a clarifying
// question, and carries no tool requests.
func (t *toolPlannerImpl) PlanTools(ctx context.Context, req contractx.ToolPlanRequest) (contractx.ToolPlanResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.ToolPlanResponse{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"plan_context": req.PlanContext,
		"history":      req.History,
		"time_context": req.Time,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.ToolPlanResponse{}, fmt.Errorf("%w: marshal tool planning payload: %v", contractx.ErrValidation, err)
	}

	msg, err := t.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.ToolPlanResponse{}, fmt.Errorf("%w: tool planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.ToolPlanResponse{}, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.ToolPlanResponse{}, err
	}

	if len(toolRequests) == 0 {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return contractx.ToolPlanResponse{}, fmt.Errorf("%w: planning response has neither tools nor message", contractx.ErrSchemaViolation)
		}
		return contractx.ToolPlanResponse{
			Message: content,
		}, nil
	}

	for _, tr := range toolRequests {
		if _, ok := t.allowedTools[tr.Tool]; !ok {
			return contractx.ToolPlanResponse{}, fmt.Errorf("%w: tool=%s is not in the catalog", contractx.ErrSchemaViolation, tr.Tool)
		}
	}

	return contractx.ToolPlanResponse{
		ToolRequests: toolRequests,
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
