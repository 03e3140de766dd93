// Package assistant drives one conversation turn: route the message,
// run tools if the turn needs them, and synthesize the reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	nodex "github.com/tanpawarit/agentic-daily-planner/agent/nodes/assistant"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
	toolx "github.com/tanpawarit/agentic-daily-planner/agent/tool"
)

var ErrInvalidMessage = nodex.ErrInvalidMessage

// historyWindow bounds how much conversation the models see per turn.
const historyWindow = 6

type Assistant struct {
	store  planx.Store
	models contractx.Registry
	tools  contractx.ToolGateway

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

type Option func(*Assistant)

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		if now != nil {
			a.now = now
		}
	}
}

func New(
	store planx.Store,
	models contractx.Registry,
	tools contractx.ToolGateway,
	opts ...Option,
) (*Assistant, error) {
	if store == nil {
		return nil, errors.New("plan store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	a := &Assistant{
		store:  store,
		models: models,
		tools:  tools,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	graphRunner, err := a.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleMessage processes one turn. history is the caller-maintained
// conversation so far, oldest first; only a recent window is forwarded
// to the models.
func (a *Assistant) HandleMessage(ctx context.Context, message string, history []contractx.Message) (contractx.TurnResult, error) {
	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		Message: message,
		History: recentWindow(history),
	})
	if err != nil {
		return contractx.TurnResult{}, err
	}
	return contractx.TurnResult{
		Reply: out.Reply,
		Plan:  out.Plan,
	}, nil
}

func (a *Assistant) runChatPath(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
	reply, err := a.models.Responder().Respond(ctx, contractx.RespondRequest{
		UserMessage: in.Message,
		PlanContext: in.PlanContext,
		History:     in.History,
		Route:       in.Route,
	})
	if err != nil {
		return nil, err
	}
	in.Reply = reply
	return in, nil
}

func (a *Assistant) runPlanningPath(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
	planResp, err := a.models.ToolPlanner().PlanTools(ctx, contractx.ToolPlanRequest{
		UserMessage: in.Message,
		PlanContext: in.PlanContext,
		History:     in.History,
		Time:        toolx.NewTimeContext(in.Now),
	})
	if err != nil {
		return nil, err
	}

	// A direct answer, usually a clarifying question, ends the turn
	// without touching any tool.
	if len(planResp.ToolRequests) == 0 {
		in.Reply = planResp.Message
		return in, nil
	}
	in.ToolRequests = planResp.ToolRequests

	results, err := a.tools.Execute(ctx, planResp.ToolRequests)
	if err != nil {
		return nil, err
	}
	in.ToolResults = results
	in.Plan = latestPlanFromResults(results)

	reply, err := a.models.Responder().Respond(ctx, contractx.RespondRequest{
		UserMessage: in.Message,
		PlanContext: in.PlanContext,
		History:     in.History,
		ToolResults: results,
		Route:       in.Route,
	})
	if err != nil {
		// The tools already ran; losing their outcome over a reply
		// failure would be worse than a canned sentence.
		log.Error().Err(err).Msg("responder failed after tool execution")
		in.Reply = degradedReply(results, in.Plan)
		return in, nil
	}
	in.Reply = reply
	return in, nil
}

// latestPlanFromResults picks the plan produced by the last
// plan-bearing tool of the turn, so the caller sees the final state.
func latestPlanFromResults(results []contractx.ToolResult) *planx.DailyPlan {
	var found *planx.DailyPlan
	for _, res := range results {
		if res.Error != "" {
			continue
		}
		if p, ok := res.Result.(*planx.DailyPlan); ok && p != nil {
			found = p
		}
	}
	return found
}

func degradedReply(results []contractx.ToolResult, p *planx.DailyPlan) string {
	if p != nil {
		return fmt.Sprintf("I had trouble writing a full reply, but your plan is saved.\n\n%s", p.FormatForDisplay())
	}
	for _, res := range results {
		if res.Error != "" {
			return fmt.Sprintf("I ran into a problem with %s: %s. Please try again.", res.Tool, res.Error)
		}
	}
	return "I completed your request but had trouble writing a full reply. Please ask again if anything is unclear."
}

func recentWindow(history []contractx.Message) []contractx.Message {
	if len(history) <= historyWindow {
		return history
	}
	return history[len(history)-historyWindow:]
}
