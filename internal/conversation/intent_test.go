package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectYesNo_Affirmative(t *testing.T) {
	for _, utterance := range []string{
		"yes",
		"Yes",
		"YES please",
		"that is correct",
		"right",
		"yeah, yes that's right",
	} {
		assert.Equal(t, IntentAffirmative, DetectYesNo(utterance), "utterance: %q", utterance)
	}
}

func TestDetectYesNo_Negative(t *testing.T) {
	for _, utterance := range []string{
		"no",
		"No",
		"that is wrong",
		"incorrect",
		"that's incorrect",
	} {
		assert.Equal(t, IntentNegative, DetectYesNo(utterance), "utterance: %q", utterance)
	}
}

func TestDetectYesNo_Unknown(t *testing.T) {
	for _, utterance := range []string{
		"",
		"maybe",
		"hmm let me think",
		"what did you say",
	} {
		assert.Equal(t, IntentUnknown, DetectYesNo(utterance), "utterance: %q", utterance)
	}
}

func TestDetectYesNo_SubstringMatch(t *testing.T) {
	// Matching is deliberately substring based.
	assert.Equal(t, IntentAffirmative, DetectYesNo("yesterday"))
	assert.Equal(t, IntentNegative, DetectYesNo("nothing works"))
}

func TestDetectYesNo_SchedulingExtras(t *testing.T) {
	assert.Equal(t, IntentUnknown, DetectYesNo("okay"))
	assert.Equal(t, IntentAffirmative, DetectYesNo("okay", schedulingAffirmatives...))
	assert.Equal(t, IntentAffirmative, DetectYesNo("sure thing", schedulingAffirmatives...))
}

func TestDetectYesNo_IncorrectStaysNegative(t *testing.T) {
	// "incorrect" contains "correct"; it must never read as affirmative.
	assert.Equal(t, IntentNegative, DetectYesNo("that's incorrect", schedulingAffirmatives...))
}

func TestExtractVerbatim(t *testing.T) {
	assert.Equal(t, "John Smith", ExtractVerbatim("  John Smith \n"))
	assert.Equal(t, "", ExtractVerbatim("   "))
}
