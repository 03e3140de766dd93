package plan

import (
	"fmt"
	"strings"
	"time"
)

// Progress is a derived snapshot of plan completion.
type Progress struct {
	TotalTasks           int     `json:"total_tasks"`
	Completed            int     `json:"completed"`
	InProgress           int     `json:"in_progress"`
	Pending              int     `json:"pending"`
	CompletionPercentage float64 `json:"completion_percentage"`
	RemainingMinutes     int     `json:"estimated_remaining_time"`
}

func (p *DailyPlan) Progress() Progress {
	out := Progress{}
	if p == nil {
		return out
	}
	out.TotalTasks = len(p.Tasks)
	for _, t := range p.Tasks {
		switch t.Status {
		case StatusCompleted:
			out.Completed++
		case StatusInProgress:
			out.InProgress++
		default:
			out.Pending++
		}
		if t.Status != StatusCompleted {
			out.RemainingMinutes += t.EstimatedDuration
		}
	}
	if out.TotalTasks > 0 {
		out.CompletionPercentage = float64(out.Completed) / float64(out.TotalTasks) * 100
	}
	return out
}

// Summary is a one-line description used for plan context and listings.
func (p *DailyPlan) Summary() string {
	if p == nil {
		return "No active plans found."
	}
	prog := p.Progress()
	return fmt.Sprintf("Plan %s for %s: %d/%d tasks completed, %d min remaining",
		p.PlanID, p.Date, prog.Completed, prog.TotalTasks, prog.RemainingMinutes)
}

// OverdueTasks returns unfinished tasks whose scheduled time has already
// passed on the plan's own date relative to now.
func (p *DailyPlan) OverdueTasks(now time.Time) []Task {
	if p == nil || p.Date != now.Format("2006-01-02") {
		return nil
	}
	clock := now.Format("15:04")
	var overdue []Task
	for _, t := range p.Tasks {
		if t.Status == StatusCompleted || t.ScheduledTime == "" {
			continue
		}
		if t.ScheduledTime < clock {
			overdue = append(overdue, t)
		}
	}
	return overdue
}

// FormatForDisplay renders the plan as chat-friendly text.
func (p *DailyPlan) FormatForDisplay() string {
	if p == nil {
		return "No plan to display."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily Plan for %s\n", p.Date)
	fmt.Fprintf(&b, "Total estimated time: %d minutes (%dh %dm)\n",
		p.EstimatedTotalDuration, p.EstimatedTotalDuration/60, p.EstimatedTotalDuration%60)
	fmt.Fprintf(&b, "Total tasks: %d\n", len(p.Tasks))

	for i, t := range p.Tasks {
		scheduled := t.ScheduledTime
		if scheduled == "" {
			scheduled = "TBD"
		}
		fmt.Fprintf(&b, "\n%d. [%s] %s (%s)\n", i+1, t.Status, t.Title, t.Priority)
		fmt.Fprintf(&b, "   Time: %s (%d min)\n", scheduled, t.EstimatedDuration)
		if t.Category != "" {
			fmt.Fprintf(&b, "   Category: %s\n", t.Category)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", t.Description)
		}
	}

	if p.PlanningNotes != "" {
		fmt.Fprintf(&b, "\nPlanning notes:\n%s\n", p.PlanningNotes)
	}
	return b.String()
}

// ToMarkdown exports the plan as a markdown checklist.
func (p *DailyPlan) ToMarkdown() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Plan - %s\n\n", p.Date)
	fmt.Fprintf(&b, "**Total Estimated Time:** %dh %dm\n",
		p.EstimatedTotalDuration/60, p.EstimatedTotalDuration%60)
	fmt.Fprintf(&b, "**Total Tasks:** %d\n\n## Tasks\n\n", len(p.Tasks))

	for _, t := range p.Tasks {
		box := "- [ ]"
		if t.Status == StatusCompleted {
			box = "- [x]"
		}
		scheduled := t.ScheduledTime
		if scheduled == "" {
			scheduled = "TBD"
		}
		fmt.Fprintf(&b, "%s **%s** (%s)\n", box, t.Title, strings.ToUpper(string(t.Priority)))
		fmt.Fprintf(&b, "   - **Time:** %s (%d min)\n", scheduled, t.EstimatedDuration)
		if t.Category != "" {
			fmt.Fprintf(&b, "   - **Category:** %s\n", t.Category)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "   - **Description:** %s\n", t.Description)
		}
		b.WriteString("\n")
	}

	if p.PlanningNotes != "" {
		fmt.Fprintf(&b, "## Planning Notes\n\n%s\n", p.PlanningNotes)
	}
	return b.String()
}
