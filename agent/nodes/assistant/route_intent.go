package assistantnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	intentx "github.com/tanpawarit/agentic-daily-planner/agent/intent"
)

// RouteIntent classifies the turn. The route is advisory: the planning
// path may still answer without calling a tool.
func RouteIntent(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Route = intentx.Classify(in.Message, in.History)
	log.Debug().
		Str("route", string(in.Route)).
		Msg("message routed")
	return in, nil
}
