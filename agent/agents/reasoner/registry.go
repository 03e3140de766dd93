package reasoner

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	llmx "github.com/tanpawarit/agentic-daily-planner/agent/llm"
	promptx "github.com/tanpawarit/agentic-daily-planner/agent/prompt"
)

type registryImpl struct {
	generator   contractx.PlanGenerator
	toolPlanner contractx.ToolPlanner
	responder   contractx.Responder
}

func (r *registryImpl) Generator() contractx.PlanGenerator {
	return r.generator
}

func (r *registryImpl) ToolPlanner() contractx.ToolPlanner {
	return r.toolPlanner
}

func (r *registryImpl) Responder() contractx.Responder {
	return r.responder
}

// NewRegistry compiles one model-backed implementation per agent role.
// tools is the catalog the tool planner may bind; the generator and
// responder take no tools.
func NewRegistry(ctx context.Context, cfg llmx.Config, tools []*schema.ToolInfo) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	generatorModelCfg := cfg.OpenRouterFor(contractx.AgentRoleGenerator)
	generatorModel, err := generatorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create generator model: %v", contractx.ErrModelInvoke, err)
	}
	toolPlannerModelCfg := cfg.OpenRouterFor(contractx.AgentRoleToolPlanner)
	toolPlannerModel, err := toolPlannerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create tool planner model: %v", contractx.ErrModelInvoke, err)
	}

	generator, err := newGenerator(ctx, generatorModel, prompts.Generator)
	if err != nil {
		return nil, err
	}
	toolPlanner, err := newToolPlanner(ctx, toolPlannerModel, prompts.Planning, tools)
	if err != nil {
		return nil, err
	}
	responder, err := newResponder(cfg.OpenRouterFor(contractx.AgentRoleResponder), prompts.Chat)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		generator:   generator,
		toolPlanner: toolPlanner,
		responder:   responder,
	}, nil
}
