package conversation

import "fmt"

// Transition is the outcome of one dialogue turn: the reply to speak, the
// step to move to, and the side effects the orchestrator must apply.
type Transition struct {
	// Reply is the canned reply text. A configured language model may
	// rephrase it, but never alters Next, EndCall, or CommitBooking.
	Reply string
	// Next is the step to store. Equal to the current step on a re-prompt.
	Next Step
	// EndCall signals the telephony layer to stop listening and hang up.
	EndCall bool
	// CommitBooking is set on the affirmative scheduling branch; the
	// appointment is committed immediately rather than on call completion.
	CommitBooking bool
}

// SlotPolicy decides which appointment slot to offer. The current business
// rule is a single fixed slot: the next calendar day at one time of day.
type SlotPolicy struct {
	// DateLabel is the spoken label stored on the state ("tomorrow"); it is
	// resolved to a calendar date when the appointment is committed.
	DateLabel string
	// TimeOfDay is the single offered time slot.
	TimeOfDay string
}

// DefaultSlotPolicy matches the only slot the business currently offers.
func DefaultSlotPolicy() SlotPolicy {
	return SlotPolicy{DateLabel: "tomorrow", TimeOfDay: "10:00 AM"}
}

// RuleResponder is the deterministic response generator. It owns the
// transition table; every generator variant must produce these exact
// transitions, whatever wording it speaks.
type RuleResponder struct {
	business string
	slot     SlotPolicy
}

// NewRuleResponder creates a responder speaking on behalf of the named business.
func NewRuleResponder(businessName string, slot SlotPolicy) *RuleResponder {
	if slot.DateLabel == "" || slot.TimeOfDay == "" {
		slot = DefaultSlotPolicy()
	}
	return &RuleResponder{business: businessName, slot: slot}
}

// Greeting is the opening prompt spoken when a call is answered, before any
// state exists.
func (g *RuleResponder) Greeting() string {
	return fmt.Sprintf("Hello! Welcome to %s, your trusted home service company. "+
		"I'm here to help you schedule a home service appointment. "+
		"First, could you please tell me your name?", g.business)
}

// Respond advances the dialogue one turn. It mutates the extracted fields on
// state (name, problem, slot, confirmed) but leaves state.Step untouched; the
// orchestrator stores Transition.Next after side effects succeed.
func (g *RuleResponder) Respond(state *State, utterance string) Transition {
	switch state.Step {
	case StepGreeting:
		state.CustomerName = ExtractVerbatim(utterance)
		return Transition{
			Reply: fmt.Sprintf("I heard %s. Is that correct? Please say Yes or No.", state.CustomerName),
			Next:  StepNameConfirmation,
		}

	case StepNameConfirmation:
		switch DetectYesNo(utterance) {
		case IntentAffirmative:
			return Transition{
				Reply: "Great! Now, what problem are you experiencing with your home that needs service?",
				Next:  StepProblem,
			}
		case IntentNegative:
			return Transition{
				Reply: "I apologize. Could you please spell your name for me?",
				Next:  StepNameSpelling,
			}
		}
		return Transition{
			Reply: fmt.Sprintf("Please say Yes or No. Is %s correct?", state.CustomerName),
			Next:  StepNameConfirmation,
		}

	case StepNameSpelling:
		state.CustomerName = ExtractVerbatim(utterance)
		return Transition{
			Reply: fmt.Sprintf("Thank you %s. Now, what problem are you experiencing with your home that needs service?", state.CustomerName),
			Next:  StepProblem,
		}

	case StepProblem:
		state.Problem = ExtractVerbatim(utterance)
		state.ProposedDate = g.slot.DateLabel
		state.ProposedTime = g.slot.TimeOfDay
		return Transition{
			Reply: fmt.Sprintf("I understand you have a problem with %s. "+
				"I can schedule a technician for %s morning at %s. "+
				"Does this time work for you? Please respond with Yes or No.",
				state.Problem, state.ProposedDate, state.ProposedTime),
			Next: StepScheduling,
		}

	case StepScheduling:
		switch DetectYesNo(utterance, schedulingAffirmatives...) {
		case IntentAffirmative:
			state.Confirmed = true
			return Transition{
				Reply: fmt.Sprintf("Perfect! I've scheduled your appointment for %s morning at %s. "+
					"You'll receive a confirmation text shortly. Thank you for choosing %s!",
					state.ProposedDate, state.ProposedTime, g.business),
				Next:          StepConfirmation,
				EndCall:       true,
				CommitBooking: true,
			}
		case IntentNegative:
			state.Confirmed = false
			return Transition{
				Reply: fmt.Sprintf("I understand. Unfortunately, %s at %s is the only available time we have. "+
					"Thank you for calling %s. Have a great day!",
					state.ProposedDate, state.ProposedTime, g.business),
				Next:    StepFinal,
				EndCall: true,
			}
		}
		return Transition{
			Reply: fmt.Sprintf("Please respond with Yes or No. Does %s at %s work for you?",
				state.ProposedDate, state.ProposedTime),
			Next: StepScheduling,
		}

	case StepConfirmation:
		return Transition{
			Reply: fmt.Sprintf("Your appointment has been confirmed for %s morning at %s. "+
				"You'll receive a confirmation text shortly. Thank you for choosing %s!",
				state.ProposedDate, state.ProposedTime, g.business),
			Next:    StepFinal,
			EndCall: true,
		}
	}

	// StepFinal and anything unexpected: terminal, no transition.
	return Transition{
		Reply:   fmt.Sprintf("Thank you for calling %s. Have a great day!", g.business),
		Next:    StepFinal,
		EndCall: true,
	}
}
