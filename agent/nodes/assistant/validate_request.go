package assistantnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	Message string
	History []contractx.Message
}

type GraphOutput struct {
	Reply string
	Plan  *planx.DailyPlan
}

type GraphState struct {
	Message string
	History []contractx.Message
	Now     time.Time

	PlanContext string
	LatestPlan  *planx.DailyPlan
	Route       contractx.Route

	ToolRequests []contractx.ToolRequest
	ToolResults  []contractx.ToolResult

	Reply string
	Plan  *planx.DailyPlan
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Message: message,
		History: in.History,
		Now:     nowFn(),
	}, nil
}
