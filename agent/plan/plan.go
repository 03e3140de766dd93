package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPlan  = errors.New("plan validation failed")
	ErrPlanNotFound = errors.New("plan not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrPlanConflict = errors.New("plan id already exists")
	ErrNilPlan      = errors.New("plan is nil")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a single schedulable unit of work inside a daily plan.
type Task struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Priority          Priority `json:"priority"`
	EstimatedDuration int      `json:"estimated_duration"`       // minutes
	ScheduledTime     string   `json:"scheduled_time,omitempty"` // HH:MM
	Category          string   `json:"category,omitempty"`
	Status            Status   `json:"status"`
}

// DailyPlan is a dated, ordered collection of tasks. TotalTasks and
// EstimatedTotalDuration are derived from Tasks and recomputed by
// Normalize; they are never mutated independently.
type DailyPlan struct {
	PlanID                 string `json:"plan_id"`
	Date                   string `json:"date"` // YYYY-MM-DD
	CreatedAt              string `json:"created_at,omitempty"`
	CurrentTime            string `json:"current_time,omitempty"`
	TotalTasks             int    `json:"total_tasks"`
	EstimatedTotalDuration int    `json:"estimated_total_duration"`
	Tasks                  []Task `json:"tasks"`
	PlanningNotes          string `json:"planning_notes,omitempty"`
}

// Normalize recomputes the derived totals from the task sequence.
func (p *DailyPlan) Normalize() {
	if p == nil {
		return
	}
	p.TotalTasks = len(p.Tasks)
	total := 0
	for _, t := range p.Tasks {
		total += t.EstimatedDuration
	}
	p.EstimatedTotalDuration = total
}

func (p *DailyPlan) Validate() error {
	if p == nil {
		return ErrNilPlan
	}
	seen := make(map[string]struct{}, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task[%d] has empty id", ErrInvalidPlan, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id=%s", ErrInvalidPlan, t.ID)
		}
		seen[t.ID] = struct{}{}

		if t.EstimatedDuration <= 0 {
			return fmt.Errorf("%w: task id=%s estimated_duration must be > 0", ErrInvalidPlan, t.ID)
		}
		if !t.Priority.Valid() {
			return fmt.Errorf("%w: task id=%s invalid priority=%q", ErrInvalidPlan, t.ID, t.Priority)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("%w: task id=%s invalid status=%q", ErrInvalidPlan, t.ID, t.Status)
		}
		if t.ScheduledTime != "" && !ValidTimeOfDay(t.ScheduledTime) {
			return fmt.Errorf("%w: task id=%s scheduled_time=%q is not HH:MM", ErrInvalidPlan, t.ID, t.ScheduledTime)
		}
	}
	if p.TotalTasks != len(p.Tasks) {
		return fmt.Errorf("%w: total_tasks=%d does not match task count=%d", ErrInvalidPlan, p.TotalTasks, len(p.Tasks))
	}
	sum := 0
	for _, t := range p.Tasks {
		sum += t.EstimatedDuration
	}
	if p.EstimatedTotalDuration != sum {
		return fmt.Errorf("%w: estimated_total_duration=%d does not match task sum=%d", ErrInvalidPlan, p.EstimatedTotalDuration, sum)
	}
	return nil
}

// Task returns a pointer into the plan's task slice, so callers can
// mutate the task in place before re-validating.
func (p *DailyPlan) Task(taskID string) (*Task, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// SetTaskStatus transitions a task's status. Completed is terminal: the
// only accepted transition out of it is the identity one.
func (p *DailyPlan) SetTaskStatus(taskID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid status=%q", ErrInvalidPlan, status)
	}
	t, ok := p.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: task id=%s", ErrTaskNotFound, taskID)
	}
	if t.Status == StatusCompleted && status != StatusCompleted {
		return fmt.Errorf("%w: task id=%s is completed and cannot transition to %q", ErrInvalidPlan, taskID, status)
	}
	t.Status = status
	return nil
}

// Clone deep-copies the plan through its JSON form, so the copy is
// exactly what a round trip through the store would produce.
func (p *DailyPlan) Clone() *DailyPlan {
	if p == nil {
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out DailyPlan
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

// ValidTimeOfDay reports whether s is a 24h HH:MM time.
func ValidTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
