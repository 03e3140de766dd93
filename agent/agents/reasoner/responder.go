package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	openrouterx "github.com/tanpawarit/agentic-daily-planner/pkg/openrouter"
)

// responderImpl synthesizes the final reply over the raw SDK. The
// responder has no tools and no structured output, so it skips the
// graph machinery the other roles need.
type responderImpl struct {
	client       *openaisdk.Client
	model        string
	temperature  float32
	maxTokens    int
	systemPrompt string
}

func newResponder(cfg openrouterx.Config, systemPrompt string) (*responderImpl, error) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}

	maxTokens := 2000
	if cfg.MaxCompletionToken != nil && *cfg.MaxCompletionToken > 0 {
		maxTokens = *cfg.MaxCompletionToken
	}

	return &responderImpl{
		client:       client,
		model:        strings.TrimSpace(cfg.Model),
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
		systemPrompt: systemPrompt,
	}, nil
}

func (r *responderImpl) Respond(ctx context.Context, req contractx.RespondRequest) (string, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return "", fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"route":        req.Route,
		"user_message": req.UserMessage,
		"plan_context": req.PlanContext,
		"history":      req.History,
		"tool_results": req.ToolResults,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal respond payload: %v", contractx.ErrValidation, err)
	}

	resp, err := r.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(r.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(r.systemPrompt),
			openaisdk.UserMessage(string(input)),
		},
		Temperature:         openaisdk.Float(float64(r.temperature)),
		MaxCompletionTokens: openaisdk.Int(int64(r.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: responder invoke: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: responder returned no choices", contractx.ErrModelInvoke)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: responder reply is empty", contractx.ErrSchemaViolation)
	}
	return reply, nil
}
