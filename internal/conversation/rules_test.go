package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponder() *RuleResponder {
	return NewRuleResponder("Better Call Homme", DefaultSlotPolicy())
}

func TestRuleResponder_Greeting(t *testing.T) {
	g := newTestResponder()
	greeting := g.Greeting()
	assert.Contains(t, greeting, "Better Call Homme")
	assert.Contains(t, greeting, "tell me your name")
}

func TestRuleResponder_GreetingCapturesName(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepGreeting}

	tr := g.Respond(state, "  John Smith ")

	assert.Equal(t, "John Smith", state.CustomerName)
	assert.Equal(t, StepNameConfirmation, tr.Next)
	assert.Contains(t, tr.Reply, "I heard John Smith.")
	assert.False(t, tr.EndCall)
	assert.False(t, tr.CommitBooking)
}

func TestRuleResponder_NameConfirmedAdvancesToProblem(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepNameConfirmation, CustomerName: "John"}

	tr := g.Respond(state, "yes")

	assert.Equal(t, StepProblem, tr.Next)
	assert.Contains(t, tr.Reply, "what problem are you experiencing")
}

func TestRuleResponder_NameDeniedBranchesToSpelling(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepNameConfirmation, CustomerName: "Jon"}

	tr := g.Respond(state, "no that's wrong")

	assert.Equal(t, StepNameSpelling, tr.Next)
	assert.Contains(t, tr.Reply, "spell your name")
	// Name kept until the caller re-supplies it.
	assert.Equal(t, "Jon", state.CustomerName)
}

func TestRuleResponder_NameConfirmationReprompt(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepNameConfirmation, CustomerName: "John"}

	tr := g.Respond(state, "ummm")

	assert.Equal(t, StepNameConfirmation, tr.Next)
	assert.Contains(t, tr.Reply, "Please say Yes or No.")
	assert.Contains(t, tr.Reply, "John")
}

func TestRuleResponder_SpellingOverwritesName(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepNameSpelling, CustomerName: "Jon"}

	tr := g.Respond(state, "J O H N")

	assert.Equal(t, "J O H N", state.CustomerName)
	assert.Equal(t, StepProblem, tr.Next)
	assert.Contains(t, tr.Reply, "Thank you J O H N.")
}

func TestRuleResponder_ProblemOffersSlot(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepProblem, CustomerName: "John"}

	tr := g.Respond(state, "my dishwasher is broken")

	assert.Equal(t, "my dishwasher is broken", state.Problem)
	assert.Equal(t, "tomorrow", state.ProposedDate)
	assert.Equal(t, "10:00 AM", state.ProposedTime)
	assert.Equal(t, StepScheduling, tr.Next)
	assert.Contains(t, tr.Reply, "tomorrow morning at 10:00 AM")
	assert.Contains(t, tr.Reply, "Yes or No")
}

func TestRuleResponder_SchedulingAccepted(t *testing.T) {
	g := newTestResponder()
	state := &State{
		CallID: "CA1", Step: StepScheduling, CustomerName: "John",
		Problem: "dishwasher", ProposedDate: "tomorrow", ProposedTime: "10:00 AM",
	}

	tr := g.Respond(state, "yes that works")

	require.True(t, state.Confirmed)
	assert.Equal(t, StepConfirmation, tr.Next)
	assert.True(t, tr.EndCall)
	assert.True(t, tr.CommitBooking)
	assert.Contains(t, tr.Reply, "I've scheduled your appointment")
}

func TestRuleResponder_SchedulingAcceptsOkay(t *testing.T) {
	g := newTestResponder()
	state := &State{
		CallID: "CA1", Step: StepScheduling,
		ProposedDate: "tomorrow", ProposedTime: "10:00 AM",
	}

	tr := g.Respond(state, "okay")

	assert.True(t, state.Confirmed)
	assert.True(t, tr.CommitBooking)
}

func TestRuleResponder_SchedulingDeclined(t *testing.T) {
	g := newTestResponder()
	state := &State{
		CallID: "CA1", Step: StepScheduling,
		ProposedDate: "tomorrow", ProposedTime: "10:00 AM",
	}

	tr := g.Respond(state, "no")

	assert.False(t, state.Confirmed)
	assert.Equal(t, StepFinal, tr.Next)
	assert.True(t, tr.EndCall)
	assert.False(t, tr.CommitBooking)
	assert.Contains(t, tr.Reply, "only available time")
}

func TestRuleResponder_SchedulingReprompt(t *testing.T) {
	g := newTestResponder()
	state := &State{
		CallID: "CA1", Step: StepScheduling,
		ProposedDate: "tomorrow", ProposedTime: "10:00 AM",
	}

	tr := g.Respond(state, "let me check my calendar")

	assert.Equal(t, StepScheduling, tr.Next)
	assert.False(t, tr.EndCall)
	assert.False(t, tr.CommitBooking)
	assert.Contains(t, tr.Reply, "Yes or No")
}

func TestRuleResponder_ConfirmationIsTerminalRecap(t *testing.T) {
	g := newTestResponder()
	state := &State{
		CallID: "CA1", Step: StepConfirmation,
		ProposedDate: "tomorrow", ProposedTime: "10:00 AM", Confirmed: true,
	}

	tr := g.Respond(state, "anything")

	assert.Equal(t, StepFinal, tr.Next)
	assert.True(t, tr.EndCall)
	assert.Contains(t, tr.Reply, "has been confirmed")
}

func TestRuleResponder_FinalStepHangsUp(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepFinal}

	tr := g.Respond(state, "hello?")

	assert.Equal(t, StepFinal, tr.Next)
	assert.True(t, tr.EndCall)
}

func TestRuleResponder_RespondNeverMutatesStep(t *testing.T) {
	g := newTestResponder()
	state := &State{CallID: "CA1", Step: StepGreeting}

	g.Respond(state, "John")

	// The orchestrator stores Transition.Next; Respond leaves Step alone.
	assert.Equal(t, StepGreeting, state.Step)
}
