package intent

import (
	"testing"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		history []contractx.Message
		want    contractx.Route
	}{
		{
			name:    "empty message",
			message: "   ",
			want:    contractx.RouteGeneralChat,
		},
		{
			name:    "greeting",
			message: "hello there",
			want:    contractx.RouteGeneralChat,
		},
		{
			name:    "capability question stays chat",
			message: "can you help me plan my day with work and exercise?",
			want:    contractx.RouteGeneralChat,
		},
		{
			name:    "concrete schedule with activities",
			message: "schedule my day: coding from 9am, exercise after lunch",
			want:    contractx.RoutePlanningAction,
		},
		{
			name:    "explicit detailed request",
			message: "plan my day with two hours of study and one hour of exercise",
			want:    contractx.RoutePlanningAction,
		},
		{
			name:    "explicit but terse request stays chat",
			message: "plan my day",
			want:    contractx.RouteGeneralChat,
		},
		{
			name:    "followup referencing recent plan",
			message: "mark task two in my plan as completed",
			history: []contractx.Message{
				{Role: "user", Content: "plan my day with coding and exercise for four hours"},
				{Role: "assistant", Content: "Created plan_20260830_091500_a1b2c3 with 4 tasks."},
			},
			want: contractx.RoutePlanningAction,
		},
		{
			name:    "plan reference without recent plan context",
			message: "what do you think about my plan to learn guitar someday",
			want:    contractx.RouteGeneralChat,
		},
		{
			name:    "plan reference outside history window",
			message: "update my plan please",
			history: []contractx.Message{
				{Role: "assistant", Content: "Created plan_20260830_091500_a1b2c3."},
				{Role: "user", Content: "thanks"},
				{Role: "assistant", Content: "you're welcome"},
				{Role: "user", Content: "what's the weather"},
				{Role: "assistant", Content: "sunny"},
				{Role: "user", Content: "nice"},
				{Role: "assistant", Content: "indeed"},
			},
			want: contractx.RouteGeneralChat,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.message, tc.history)
			if got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.message, got, tc.want)
			}
		})
	}
}
