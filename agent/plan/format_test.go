package plan

import (
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	got := validPlan().Summary()
	want := "Plan plan_20260830_090000_a1b2c3 for 2026-08-30: 1/3 tasks completed, 120 min remaining"
	if got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}

	var nilPlan *DailyPlan
	if got := nilPlan.Summary(); got != "No active plans found." {
		t.Fatalf("nil Summary() = %q", got)
	}
}

func TestFormatForDisplay(t *testing.T) {
	t.Parallel()

	out := validPlan().FormatForDisplay()
	for _, want := range []string{
		"Daily Plan for 2026-08-30",
		"Total estimated time: 165 minutes (2h 45m)",
		"1. [pending] Morning review (high)",
		"Time: 09:00 (30 min)",
		"Time: TBD (90 min)",
		"front-load the hard work",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("display output missing %q:\n%s", want, out)
		}
	}
}

func TestToMarkdown(t *testing.T) {
	t.Parallel()

	out := validPlan().ToMarkdown()
	if !strings.Contains(out, "- [x] **Evening run** (LOW)") {
		t.Fatalf("completed task not checked:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] **Morning review** (HIGH)") {
		t.Fatalf("pending task checked:\n%s", out)
	}
	if !strings.Contains(out, "# Daily Plan - 2026-08-30") {
		t.Fatalf("missing heading:\n%s", out)
	}
}
