package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

type fakeStore struct {
	latest    *planx.DailyPlan
	latestErr error
}

func (f *fakeStore) Create(_ context.Context, p *planx.DailyPlan) (string, error) {
	return p.PlanID, nil
}

func (f *fakeStore) Load(_ context.Context, planID string) (*planx.DailyPlan, error) {
	if f.latest != nil && f.latest.PlanID == planID {
		return f.latest.Clone(), nil
	}
	return nil, planx.ErrPlanNotFound
}

func (f *fakeStore) Update(_ context.Context, _ string, _ func(*planx.DailyPlan) error) (*planx.DailyPlan, error) {
	return nil, planx.ErrPlanNotFound
}

func (f *fakeStore) List(_ context.Context) ([]planx.Summary, error) {
	if f.latest == nil {
		return nil, nil
	}
	return []planx.Summary{{PlanID: f.latest.PlanID, Date: f.latest.Date, TotalTasks: f.latest.TotalTasks}}, nil
}

func (f *fakeStore) Latest(_ context.Context) (*planx.DailyPlan, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, planx.ErrPlanNotFound
	}
	return f.latest.Clone(), nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(context.Context, contractx.GenerateRequest) (*planx.DailyPlan, error) {
	return nil, errors.New("not used")
}

type fakeToolPlanner struct {
	resp     contractx.ToolPlanResponse
	err      error
	calls    int
	lastReqs []contractx.ToolPlanRequest
}

func (f *fakeToolPlanner) PlanTools(_ context.Context, req contractx.ToolPlanRequest) (contractx.ToolPlanResponse, error) {
	f.calls++
	f.lastReqs = append(f.lastReqs, req)
	if f.err != nil {
		return contractx.ToolPlanResponse{}, f.err
	}
	return f.resp, nil
}

type fakeResponder struct {
	reply    string
	err      error
	calls    int
	lastReqs []contractx.RespondRequest
}

func (f *fakeResponder) Respond(_ context.Context, req contractx.RespondRequest) (string, error) {
	f.calls++
	f.lastReqs = append(f.lastReqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRegistry struct {
	generator   contractx.PlanGenerator
	toolPlanner contractx.ToolPlanner
	responder   contractx.Responder
}

func (f *fakeRegistry) Generator() contractx.PlanGenerator { return f.generator }
func (f *fakeRegistry) ToolPlanner() contractx.ToolPlanner { return f.toolPlanner }
func (f *fakeRegistry) Responder() contractx.Responder     { return f.responder }

type fakeGateway struct {
	results []contractx.ToolResult
	err     error
	calls   [][]contractx.ToolRequest
}

func (f *fakeGateway) Execute(_ context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	f.calls = append(f.calls, append([]contractx.ToolRequest(nil), reqs...))
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.ToolResult(nil), f.results...), nil
}

func storedPlan() *planx.DailyPlan {
	p := &planx.DailyPlan{
		PlanID: "plan_20260830_090000_a1b2c3",
		Date:   "2026-08-30",
		Tasks: []planx.Task{
			{
				ID:                "task_1",
				Title:             "Deep work",
				Priority:          planx.PriorityHigh,
				EstimatedDuration: 90,
				ScheduledTime:     "09:00",
				Category:          "work",
				Status:            planx.StatusPending,
			},
		},
	}
	p.Normalize()
	return p
}

func newTestAssistant(
	t *testing.T,
	store planx.Store,
	registry contractx.Registry,
	tools contractx.ToolGateway,
) *Assistant {
	t.Helper()
	a, err := New(store, registry, tools, WithClock(func() time.Time {
		return time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: &fakeToolPlanner{},
			responder:   &fakeResponder{reply: "hi"},
		},
		&fakeGateway{},
	)

	_, err := a.HandleMessage(context.Background(), "   ", nil)
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestHandleMessageChatPath(t *testing.T) {
	t.Parallel()

	toolPlanner := &fakeToolPlanner{}
	responder := &fakeResponder{reply: "Hello! What would you like to plan today?"}
	tools := &fakeGateway{}

	a := newTestAssistant(t,
		&fakeStore{latest: storedPlan()},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: toolPlanner,
			responder:   responder,
		},
		tools,
	)

	out, err := a.HandleMessage(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if out.Reply != "Hello! What would you like to plan today?" {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if out.Plan != nil {
		t.Fatalf("chat path must not attach a plan, got %+v", out.Plan)
	}
	if toolPlanner.calls != 0 {
		t.Fatalf("tool planner must not run on chat path, got %d calls", toolPlanner.calls)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("expected no tool executions, got %d", len(tools.calls))
	}
	if responder.calls != 1 {
		t.Fatalf("expected one responder call, got %d", responder.calls)
	}
	// The responder must see the stored plan, not a cached copy.
	if !strings.Contains(responder.lastReqs[0].PlanContext, "plan_20260830_090000_a1b2c3") {
		t.Fatalf("plan context missing from respond request: %q", responder.lastReqs[0].PlanContext)
	}
}

func TestHandleMessageChatPathEmptyStore(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "Hi! I can build you a daily plan."}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: &fakeToolPlanner{},
			responder:   responder,
		},
		&fakeGateway{},
	)

	if _, err := a.HandleMessage(context.Background(), "hello", nil); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(responder.lastReqs[0].PlanContext, "No previous plans") {
		t.Fatalf("expected empty-store context, got %q", responder.lastReqs[0].PlanContext)
	}
}

func TestHandleMessagePlanningPath(t *testing.T) {
	t.Parallel()

	created := storedPlan()
	toolPlanner := &fakeToolPlanner{
		resp: contractx.ToolPlanResponse{
			ToolRequests: []contractx.ToolRequest{
				{Tool: "plan.create", Args: map[string]any{"goal": "coding and exercise"}},
			},
		},
	}
	responder := &fakeResponder{reply: "Here is your plan for today."}
	tools := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: "plan.create", Result: created},
		},
	}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: toolPlanner,
			responder:   responder,
		},
		tools,
	)

	out, err := a.HandleMessage(context.Background(), "schedule my day: coding from 9am and exercise", nil)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if out.Reply != "Here is your plan for today." {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if out.Plan == nil || out.Plan.PlanID != created.PlanID {
		t.Fatalf("expected created plan attached, got %+v", out.Plan)
	}
	if toolPlanner.calls != 1 {
		t.Fatalf("expected one tool planning call, got %d", toolPlanner.calls)
	}
	if len(tools.calls) != 1 {
		t.Fatalf("expected one tool execution, got %d", len(tools.calls))
	}
	if responder.calls != 1 {
		t.Fatalf("expected one responder call, got %d", responder.calls)
	}
	if len(responder.lastReqs[0].ToolResults) != 1 {
		t.Fatalf("responder must receive tool results, got %+v", responder.lastReqs[0].ToolResults)
	}
}

func TestHandleMessageClarifyingQuestionSkipsTools(t *testing.T) {
	t.Parallel()

	toolPlanner := &fakeToolPlanner{
		resp: contractx.ToolPlanResponse{
			Message: "What would you like to accomplish, and how much time do you have?",
		},
	}
	responder := &fakeResponder{reply: "unused"}
	tools := &fakeGateway{}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: toolPlanner,
			responder:   responder,
		},
		tools,
	)

	out, err := a.HandleMessage(context.Background(), "schedule my day: lots of work at 9:00", nil)
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if out.Reply != "What would you like to accomplish, and how much time do you have?" {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("clarifying question must not execute tools, got %d", len(tools.calls))
	}
	if responder.calls != 0 {
		t.Fatalf("clarifying question must not invoke responder, got %d", responder.calls)
	}
}

func TestHandleMessageDegradedReplyOnResponderFailure(t *testing.T) {
	t.Parallel()

	created := storedPlan()
	toolPlanner := &fakeToolPlanner{
		resp: contractx.ToolPlanResponse{
			ToolRequests: []contractx.ToolRequest{
				{Tool: "plan.create", Args: map[string]any{"goal": "workday"}},
			},
		},
	}
	responder := &fakeResponder{err: errors.New("model down")}
	tools := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: "plan.create", Result: created},
		},
	}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: toolPlanner,
			responder:   responder,
		},
		tools,
	)

	out, err := a.HandleMessage(context.Background(), "schedule my day: work from 9:00", nil)
	if err != nil {
		t.Fatalf("turn must not abort on responder failure, got %v", err)
	}
	if !strings.Contains(out.Reply, "your plan is saved") {
		t.Fatalf("expected degraded reply, got %q", out.Reply)
	}
	if out.Plan == nil {
		t.Fatal("expected plan attached despite responder failure")
	}
}

func TestHandleMessageToolErrorStillSynthesizes(t *testing.T) {
	t.Parallel()

	toolPlanner := &fakeToolPlanner{
		resp: contractx.ToolPlanResponse{
			ToolRequests: []contractx.ToolRequest{
				{Tool: "web.search", Args: map[string]any{"query": "weather"}},
			},
		},
	}
	responder := &fakeResponder{reply: "I could not reach the search service, but here is my best guess."}
	tools := &fakeGateway{
		results: []contractx.ToolResult{
			{Tool: "web.search", Error: "external service failed: timeout"},
		},
	}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: toolPlanner,
			responder:   responder,
		},
		tools,
	)

	out, err := a.HandleMessage(context.Background(), "schedule my day: exercise at 6:00 if the weather holds", nil)
	if err != nil {
		t.Fatalf("tool error must not abort the turn, got %v", err)
	}
	if out.Reply == "" {
		t.Fatal("expected synthesized reply")
	}
	if responder.calls != 1 {
		t.Fatalf("responder must still run, got %d calls", responder.calls)
	}
	if responder.lastReqs[0].ToolResults[0].Error == "" {
		t.Fatal("responder must see the tool error")
	}
}

func TestHandleMessageHistoryWindow(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "ok"}

	a := newTestAssistant(t,
		&fakeStore{},
		&fakeRegistry{
			generator:   fakeGenerator{},
			toolPlanner: &fakeToolPlanner{},
			responder:   responder,
		},
		&fakeGateway{},
	)

	history := make([]contractx.Message, 10)
	for i := range history {
		history[i] = contractx.Message{Role: "user", Content: "msg"}
	}

	if _, err := a.HandleMessage(context.Background(), "hello", history); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if got := len(responder.lastReqs[0].History); got != historyWindow {
		t.Fatalf("expected history trimmed to %d, got %d", historyWindow, got)
	}
}
