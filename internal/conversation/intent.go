package conversation

import "strings"

// Intent is the yes/no reading of an utterance at a confirmation step.
type Intent int

const (
	// IntentUnknown means the utterance matched neither pattern set; the
	// step does not advance and the caller is re-prompted.
	IntentUnknown Intent = iota
	IntentAffirmative
	IntentNegative
)

var (
	affirmativeWords = []string{"yes", "correct", "right"}
	negativeWords    = []string{"no", "incorrect", "wrong"}

	// schedulingAffirmatives are additionally accepted when confirming the
	// proposed appointment slot.
	schedulingAffirmatives = []string{"okay", "sure"}
)

// DetectYesNo classifies an utterance by case-insensitive substring match.
// This is deliberately dumb keyword matching; callers depend on its exact
// behavior, so do not upgrade it to fuzzy matching.
func DetectYesNo(utterance string, extraAffirmative ...string) Intent {
	lower := strings.ToLower(utterance)
	for _, w := range affirmativeWords {
		// "incorrect" contains "correct" and must stay negative.
		if w == "correct" && strings.Contains(lower, "incorrect") {
			continue
		}
		if strings.Contains(lower, w) {
			return IntentAffirmative
		}
	}
	for _, w := range extraAffirmative {
		if strings.Contains(lower, w) {
			return IntentAffirmative
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return IntentNegative
		}
	}
	return IntentUnknown
}

// ExtractVerbatim returns the trimmed utterance. Names and problem
// descriptions are taken verbatim from speech recognition output.
func ExtractVerbatim(utterance string) string {
	return strings.TrimSpace(utterance)
}
