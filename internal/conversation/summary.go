package conversation

import (
	"strings"
	"time"
)

// CallSummary condenses one call's transcript for the dashboard.
type CallSummary struct {
	CallID         string        `json:"call_sid"`
	TotalTurns     int           `json:"total_turns"`
	CallerTurns    int           `json:"caller_turns"`
	AssistantTurns int           `json:"assistant_turns"`
	Problem        string        `json:"problem"`
	Scheduling     string        `json:"scheduling"`
	Duration       time.Duration `json:"duration_ms"`
	FirstTurnAt    *time.Time    `json:"first_turn_at,omitempty"`
	LastTurnAt     *time.Time    `json:"last_turn_at,omitempty"`
}

var (
	problemKeywords    = []string{"dishwasher", "broken", "problem"}
	schedulingKeywords = []string{"tomorrow", "10", "morning"}
)

// Summarize extracts the key facts from a chronological transcript. Keyword
// spotting only; the structured booking record is the source of truth.
func Summarize(callID string, turns []Turn) *CallSummary {
	if len(turns) == 0 {
		return nil
	}

	summary := &CallSummary{
		CallID:     callID,
		TotalTurns: len(turns),
		Problem:    "Not specified",
		Scheduling: "Not specified",
	}

	for _, turn := range turns {
		if turn.Role != RoleCaller {
			summary.AssistantTurns++
			continue
		}
		summary.CallerTurns++
		lower := strings.ToLower(turn.Content)
		if summary.Problem == "Not specified" && containsAny(lower, problemKeywords) {
			summary.Problem = turn.Content
		}
		if summary.Scheduling == "Not specified" && containsAny(lower, schedulingKeywords) {
			summary.Scheduling = turn.Content
		}
	}

	first := turns[0].Timestamp
	last := turns[len(turns)-1].Timestamp
	summary.FirstTurnAt = &first
	summary.LastTurnAt = &last
	summary.Duration = last.Sub(first)
	return summary
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
