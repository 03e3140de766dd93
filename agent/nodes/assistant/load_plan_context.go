package assistantnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
	planx "github.com/tanpawarit/agentic-daily-planner/agent/plan"
)

// LoadPlanContext fetches the most recent plan fresh from the store, so
// the turn always sees the current state rather than a cached copy. An
// empty store is a normal condition, not an error.
func LoadPlanContext(
	ctx context.Context,
	in *GraphState,
	store planx.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		if errors.Is(err, planx.ErrPlanNotFound) {
			in.PlanContext = "No previous plans found."
			return in, nil
		}
		return nil, err
	}

	in.LatestPlan = latest
	in.PlanContext = fmt.Sprintf("%s\n\n%s", latest.Summary(), latest.FormatForDisplay())
	return in, nil
}
