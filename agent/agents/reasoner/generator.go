package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

type generatorImpl struct {
	runner compose.Runnable[map[string]any, generatorLLMOutput]

	// invoke is stubbed in tests; production wiring points it at runner.
	invoke func(ctx context.Context, input map[string]any) (generatorLLMOutput, error)
}

type generatorLLMOutput struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	DailyPlan *planx.DailyPlan `json:"daily_plan,omitempty"`
}

func newGenerator(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*generatorImpl, error) {
	runner, err := compileGeneratorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile generator graph: %v", contractx.ErrModelInvoke, err)
	}
	g := &generatorImpl{runner: runner}
	g.invoke = func(ctx context.Context, input map[string]any) (generatorLLMOutput, error) {
		return g.runner.Invoke(ctx, input)
	}
	return g, nil
}

// Generate asks the model for a structured plan. An unusable response
// gets one corrective retry before the turn gives up.
func (g *generatorImpl) Generate(ctx context.Context, req contractx.GenerateRequest) (*planx.DailyPlan, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, fmt.Errorf("%w: goal is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"goal":         req.Goal,
		"constraints":  req.Constraints,
		"time_context": req.Time,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal generator payload: %v", contractx.ErrValidation, err)
	}

	p, firstErr := g.generateOnce(ctx, string(input))
	if firstErr == nil {
		return p, nil
	}

	log.Warn().Err(firstErr).Msg("plan generation attempt failed, retrying once")

	corrective := fmt.Sprintf(
		"%s\n\nYour previous response was unusable: %v. Respond again with ONLY the required JSON object.",
		string(input), firstErr,
	)
	p, retryErr := g.generateOnce(ctx, corrective)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: after retry: %v", contractx.ErrPlanGeneration, retryErr)
	}
	return p, nil
}

func (g *generatorImpl) generateOnce(ctx context.Context, input string) (*planx.DailyPlan, error) {
	out, err := g.invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generator invoke: %v", contractx.ErrModelInvoke, err)
	}

	if !out.Success || out.DailyPlan == nil {
		reason := strings.TrimSpace(out.Message)
		if reason == "" {
			reason = "model returned no plan"
		}
		return nil, fmt.Errorf("%w: %s", contractx.ErrSchemaViolation, reason)
	}

	out.DailyPlan.Normalize()
	if err := out.DailyPlan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: generated plan invalid: %v", contractx.ErrSchemaViolation, err)
	}
	return out.DailyPlan, nil
}
