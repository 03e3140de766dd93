package tool

import (
	"time"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
)

// NewTimeContext snapshots an instant into the shape the generator and
// tool planner consume. Day parts follow wall-clock hours: morning
// before 12:00, afternoon before 18:00, evening after.
func NewTimeContext(now time.Time) contractx.TimeContext {
	hour := now.Hour()
	return contractx.TimeContext{
		CurrentTime:         now.Format("15:04"),
		CurrentDate:         now.Format("2006-01-02"),
		DayOfWeek:           now.Weekday().String(),
		Timestamp:           now.Format(time.RFC3339),
		RemainingHoursToday: 24 - hour,
		IsMorning:           hour < 12,
		IsAfternoon:         hour >= 12 && hour < 18,
		IsEvening:           hour >= 18,
	}
}

func executeTimeNow(deps Deps) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:   ToolTimeNow,
		Result: NewTimeContext(deps.Now()),
	}
}
