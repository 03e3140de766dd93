// Package intent classifies inbound messages into the chat path or the
// planning path. Classification is a stateless function of the message
// and a short recent-history window; it is advisory only, so the
// reasoning layer can still decline to call a tool.
package intent

import (
	"strings"

	contractx "github.com/tanpawarit/agentic-daily-planner/agent/contract"
)

// historyWindow bounds how far back a plan reference keeps the
// conversation on the planning path.
const historyWindow = 6

var explicitPlanningPhrases = []string{
	"create a plan for",
	"make a plan for",
	"schedule my",
	"plan my day",
	"organize my day",
	"i need a schedule",
	"help me schedule",
	"i want to plan",
	"create my schedule",
	"divide the time",
	"help me divide",
	"split my time",
	"organize my time",
}

var activityVocabulary = []string{
	"hour",
	"hours",
	"minutes",
	"am",
	"pm",
	"morning",
	"afternoon",
	"evening",
	"code",
	"coding",
	"exercise",
	"work",
	"study",
	"cook",
	"clean",
	"read",
	"meeting",
	"call",
	"project",
	"task",
	"break",
	"lunch",
	"dinner",
}

// conversationalPhrases mark questions about capability rather than
// requests for a plan.
var conversationalPhrases = []string{
	"can you help",
	"do you help",
	"are you able",
	"what can you do",
	"how do you",
	"tell me about",
	"explain",
	"what is",
	"can i",
	"is it possible",
	"would you",
	"could you help",
	"can you plan",
}

var concreteSchedulePhrases = []string{
	"schedule my",
	"create a detailed schedule",
	"specific times",
	"from 9am",
	"at 10am",
	"until 5pm",
	"9:00",
	"10:30",
	":00",
	":30",
	"am ",
	"pm ",
	"o'clock",
	"divide the time",
	"time properly",
	"split the time",
	"organize the time",
	"time block",
	"time allocation",
}

var planReferencePhrases = []string{
	"my plan",
	"the plan",
	"my schedule",
	"my tasks",
	"mark task",
	"task status",
	"completed task",
}

// Classify routes one message. Planning wins when the message asks for
// a concrete schedule around real activities, or makes an explicit and
// detailed planning request that is not just a capability question, or
// follows up on a plan referenced in the recent history window.
func Classify(message string, history []contractx.Message) contractx.Route {
	content := strings.ToLower(strings.TrimSpace(message))
	if content == "" {
		return contractx.RouteGeneralChat
	}

	hasExplicitRequest := containsAny(content, explicitPlanningPhrases)
	hasActivities := containsAny(content, activityVocabulary)
	isDetailed := len(strings.Fields(content)) >= 6
	isConversational := containsAny(content, conversationalPhrases)
	wantsConcreteSchedule := containsAny(content, concreteSchedulePhrases)

	if wantsConcreteSchedule && hasActivities {
		return contractx.RoutePlanningAction
	}
	if hasExplicitRequest && hasActivities && isDetailed && !isConversational {
		return contractx.RoutePlanningAction
	}
	if referencesPlan(content) && hasRecentPlanContext(history) {
		return contractx.RoutePlanningAction
	}
	return contractx.RouteGeneralChat
}

func referencesPlan(content string) bool {
	return containsAny(content, planReferencePhrases)
}

func hasRecentPlanContext(history []contractx.Message) bool {
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		if containsAny(strings.ToLower(msg.Content), planReferencePhrases) {
			return true
		}
		if strings.Contains(msg.Content, "plan_") {
			return true
		}
	}
	return false
}

func containsAny(content string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}
