package contract

import (
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

type AgentRole string

const (
	AgentRoleGenerator   AgentRole = "generator"
	AgentRoleToolPlanner AgentRole = "tool_planner"
	AgentRoleResponder   AgentRole = "responder"
)

// Route is the advisory classification of one inbound message.
type Route string

const (
	RouteGeneralChat    Route = "general_chat"
	RoutePlanningAction Route = "planning_action"
)

// Message is one entry of the short conversation history window.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// TimeContext is the invocation-instant snapshot handed to tools and
// the plan generator.
type TimeContext struct {
	CurrentTime         string `json:"current_time"` // HH:MM
	CurrentDate         string `json:"current_date"` // YYYY-MM-DD
	DayOfWeek           string `json:"day_of_week"`
	Timestamp           string `json:"timestamp"`
	RemainingHoursToday int    `json:"remaining_hours_today"`
	IsMorning           bool   `json:"is_morning"`
	IsAfternoon         bool   `json:"is_afternoon"`
	IsEvening           bool   `json:"is_evening"`
}

type GenerateRequest struct {
	Goal        string      `json:"goal"`
	Constraints string      `json:"constraints,omitempty"`
	Time        TimeContext `json:"time_context"`
}

type ToolPlanRequest struct {
	UserMessage string      `json:"user_message"`
	PlanContext string      `json:"plan_context,omitempty"`
	History     []Message   `json:"history,omitempty"`
	Time        TimeContext `json:"time_context"`
}

// ToolPlanResponse either requests tools or answers directly (for
// example with a clarifying question), never both.
type ToolPlanResponse struct {
	Message      string        `json:"message,omitempty"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}

type RespondRequest struct {
	UserMessage string       `json:"user_message"`
	PlanContext string       `json:"plan_context,omitempty"`
	History     []Message    `json:"history,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	Route       Route        `json:"route"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries tool failures in-band so a turn can degrade
// instead of aborting.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	Reply string           `json:"reply"`
	Plan  *planx.DailyPlan `json:"plan,omitempty"`
}
