package conversation

import "time"

// Step identifies where a call is in the booking dialogue. Steps only move
// forward, except the name-correction branch
// (name_confirmation -> name_spelling -> problem).
type Step string

const (
	StepGreeting         Step = "greeting"
	StepNameConfirmation Step = "name_confirmation"
	StepNameSpelling     Step = "name_spelling"
	StepProblem          Step = "problem"
	StepScheduling       Step = "scheduling"
	StepConfirmation     Step = "confirmation"
	StepFinal            Step = "final"
)

// Terminal reports whether no further transition can occur from the step.
func (s Step) Terminal() bool {
	return s == StepFinal
}

// State tracks one active call. One record exists per in-progress call,
// created on the first utterance and removed when the call ends.
type State struct {
	// CallID is the telephony provider's call identifier (Twilio CallSid).
	CallID string `json:"call_id"`
	// Step is the current dialogue position.
	Step Step `json:"step"`
	// CustomerName is set at the greeting step, or overwritten once via the
	// spelling-correction branch.
	CustomerName string `json:"customer_name,omitempty"`
	// CustomerPhone is taken from the first turn that supplies it and never
	// overwritten afterwards.
	CustomerPhone string `json:"customer_phone,omitempty"`
	// Problem is the caller's service problem, verbatim.
	Problem string `json:"problem,omitempty"`
	// ProposedDate and ProposedTime hold the offered slot. The date is a
	// spoken label ("tomorrow") resolved to a calendar date at booking time.
	ProposedDate string `json:"proposed_date,omitempty"`
	ProposedTime string `json:"proposed_time,omitempty"`
	// Confirmed is set when the caller accepts or declines the slot.
	Confirmed bool `json:"confirmed"`
	// StartedAt is when the first utterance arrived.
	StartedAt time.Time `json:"started_at"`
	// LastActivityAt tracks the most recent turn.
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Clone returns a deep copy so callers never share mutable state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
