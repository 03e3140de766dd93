package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
)

// WebSearchOutput is the payload of a successful web.search call. Empty
// Results means the query matched nothing, which is not an error.
type WebSearchOutput struct {
	Query   string `json:"query"`
	Results any    `json:"results"`
}

func executeWebSearch(ctx context.Context, deps Deps, args map[string]any) (contractx.ToolResult, error) {
	query := stringArg(args, "query")
	if query == "" {
		return contractx.ToolResult{
			Tool:  ToolWebSearch,
			Error: "web.search requires a query argument",
		}, nil
	}
	if deps.Search == nil {
		return contractx.ToolResult{
			Tool:  ToolWebSearch,
			Error: "web search is not configured",
		}, nil
	}

	results, err := deps.Search.Search(ctx, query)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolWebSearch,
			Error: fmt.Sprintf("%v: %v", contractx.ErrExternalService, err),
		}, nil
	}

	return contractx.ToolResult{
		Tool: ToolWebSearch,
		Result: WebSearchOutput{
			Query:   query,
			Results: results,
		},
	}, nil
}
