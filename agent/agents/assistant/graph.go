package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	nodex "github.com/tanpawarit/agentic-daily-planner/agent/nodes/assistant"
)

func (a *Assistant) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_plan_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadPlanContext(ctx, in, a.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_plan_context: %w", err)
	}

	if err := graph.AddLambdaNode("route_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RouteIntent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_intent: %w", err)
	}

	if err := graph.AddLambdaNode("chat_path",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			out, err := a.runChatPath(ctx, in)
			if err != nil {
				return nodex.GraphOutput{}, err
			}
			return nodex.FinalizeReply(out)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node chat_path: %w", err)
	}

	if err := graph.AddLambdaNode("planning_path",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			out, err := a.runPlanningPath(ctx, in)
			if err != nil {
				return nodex.GraphOutput{}, err
			}
			return nodex.FinalizeReply(out)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node planning_path: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.Route == contractx.RoutePlanningAction {
				return "planning_path", nil
			}
			return "chat_path", nil
		},
		map[string]bool{
			"chat_path":     true,
			"planning_path": true,
		},
	)

	if err := graph.AddBranch("route_intent", branch); err != nil {
		return nil, fmt.Errorf("add route branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_plan_context"},
		{"load_plan_context", "route_intent"},
		{"chat_path", compose.END},
		{"planning_path", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile assistant graph: %w", err)
	}
	return runner, nil
}
