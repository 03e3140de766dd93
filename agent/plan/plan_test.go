package plan

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func validPlan() *DailyPlan {
	p := &DailyPlan{
		PlanID: "plan_20260830_090000_a1b2c3",
		Date:   "2026-08-30",
		Tasks: []Task{
			{
				ID:                "task_1",
				Title:             "Morning review",
				Description:       "Go through inbox and priorities",
				Priority:          PriorityHigh,
				EstimatedDuration: 30,
				ScheduledTime:     "09:00",
				Category:          "work",
				Status:            StatusPending,
			},
			{
				ID:                "task_2",
				Title:             "Write report",
				Priority:          PriorityMedium,
				EstimatedDuration: 90,
				Category:          "work",
				Status:            StatusInProgress,
			},
			{
				ID:                "task_3",
				Title:             "Evening run",
				Priority:          PriorityLow,
				EstimatedDuration: 45,
				ScheduledTime:     "18:30",
				Category:          "health",
				Status:            StatusCompleted,
			},
		},
		PlanningNotes: "front-load the hard work",
	}
	p.Normalize()
	return p
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := validPlan()
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded DailyPlan
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, &decoded) {
		t.Fatalf("round trip changed the plan:\noriginal: %+v\ndecoded:  %+v", original, &decoded)
	}
	for i, task := range decoded.Tasks {
		if task.ID != original.Tasks[i].ID {
			t.Fatalf("task order changed at index %d: %s != %s", i, task.ID, original.Tasks[i].ID)
		}
	}
}

func TestNormalizeRecomputesTotals(t *testing.T) {
	t.Parallel()

	p := validPlan()
	p.TotalTasks = 99
	p.EstimatedTotalDuration = 1

	p.Normalize()
	if p.TotalTasks != 3 {
		t.Fatalf("total_tasks = %d, want 3", p.TotalTasks)
	}
	if p.EstimatedTotalDuration != 165 {
		t.Fatalf("estimated_total_duration = %d, want 165", p.EstimatedTotalDuration)
	}
}

func TestValidateRejectsBadPlans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*DailyPlan)
	}{
		{"duplicate task id", func(p *DailyPlan) { p.Tasks[1].ID = p.Tasks[0].ID }},
		{"empty task id", func(p *DailyPlan) { p.Tasks[0].ID = "" }},
		{"zero duration", func(p *DailyPlan) { p.Tasks[0].EstimatedDuration = 0 }},
		{"negative duration", func(p *DailyPlan) { p.Tasks[0].EstimatedDuration = -5 }},
		{"bad priority", func(p *DailyPlan) { p.Tasks[0].Priority = "urgent" }},
		{"bad status", func(p *DailyPlan) { p.Tasks[0].Status = "done" }},
		{"bad scheduled time", func(p *DailyPlan) { p.Tasks[0].ScheduledTime = "9am" }},
		{"drifted total tasks", func(p *DailyPlan) { p.TotalTasks = 99 }},
		{"drifted total duration", func(p *DailyPlan) { p.EstimatedTotalDuration = 1 }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validPlan()
			tc.mutate(p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidPlan) {
				t.Fatalf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestSetTaskStatus(t *testing.T) {
	t.Parallel()

	p := validPlan()

	if err := p.SetTaskStatus("task_1", StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, _ := p.Task("task_1")
	if task.Status != StatusInProgress {
		t.Fatalf("status = %s, want in_progress", task.Status)
	}

	if err := p.SetTaskStatus("task_1", "finished"); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan for unknown status, got %v", err)
	}
	if err := p.SetTaskStatus("task_99", StatusCompleted); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSetTaskStatusCompletedIsTerminal(t *testing.T) {
	t.Parallel()

	p := validPlan()

	// task_3 is completed; identity transition is allowed.
	if err := p.SetTaskStatus("task_3", StatusCompleted); err != nil {
		t.Fatalf("identity transition must be allowed, got %v", err)
	}
	if err := p.SetTaskStatus("task_3", StatusPending); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan leaving completed, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	prog := validPlan().Progress()
	if prog.TotalTasks != 3 || prog.Completed != 1 || prog.InProgress != 1 || prog.Pending != 1 {
		t.Fatalf("unexpected progress: %+v", prog)
	}
	if prog.RemainingMinutes != 120 {
		t.Fatalf("remaining minutes = %d, want 120", prog.RemainingMinutes)
	}
	if prog.CompletionPercentage < 33.3 || prog.CompletionPercentage > 33.4 {
		t.Fatalf("completion percentage = %f", prog.CompletionPercentage)
	}
}

func TestOverdueTasks(t *testing.T) {
	t.Parallel()

	p := validPlan()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	overdue := p.OverdueTasks(now)
	if len(overdue) != 1 || overdue[0].ID != "task_1" {
		t.Fatalf("unexpected overdue tasks: %+v", overdue)
	}

	// A plan for another day has nothing overdue.
	other := validPlan()
	other.Date = "2026-08-29"
	if got := other.OverdueTasks(now); got != nil {
		t.Fatalf("expected no overdue tasks for another date, got %+v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	p := validPlan()
	clone := p.Clone()
	clone.Tasks[0].Status = StatusCompleted

	if p.Tasks[0].Status == StatusCompleted {
		t.Fatal("mutating the clone must not touch the original")
	}
}
