package conversation

import (
	"context"
	"time"

	"github.com/bettercallhomme/voiceline/internal/appointments"
	"github.com/bettercallhomme/voiceline/internal/observability/metrics"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// apologyReply is spoken when a turn fails unexpectedly. The stored step is
// left untouched so the caller's next utterance retries from the same place.
const apologyReply = "I apologize, but I'm having trouble processing your request. Please try again or call back later."

// Booker commits a confirmed conversation into an appointment. Must be
// idempotent per call ID: both commit paths may fire for the same call.
// created is false when the call was already booked.
type Booker interface {
	Schedule(ctx context.Context, req appointments.BookingRequest) (appt *appointments.Appointment, created bool, err error)
}

// Notifier dispatches best-effort confirmations once an appointment exists.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *appointments.Appointment)
}

// Reply is the engine's answer to one utterance.
type Reply struct {
	Text string
	// EndCall tells the telephony layer to speak the reply and hang up
	// instead of listening for another utterance.
	EndCall bool
}

// Engine is the per-call orchestrator. For each utterance it loads state,
// extracts the step's field, computes the transition, persists both transcript
// turns, and on the terminal confirmed path commits the booking.
type Engine struct {
	states    StateStore
	turns     TurnStore
	rules     *RuleResponder
	rephraser *Rephraser
	booker    Booker
	notifier  Notifier
	metrics   *metrics.VoiceMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// EngineConfig wires an Engine. States, Rules, and Booker are required;
// everything else degrades gracefully when absent.
type EngineConfig struct {
	States    StateStore
	Turns     TurnStore
	Rules     *RuleResponder
	Rephraser *Rephraser
	Booker    Booker
	Notifier  Notifier
	Metrics   *metrics.VoiceMetrics
	Logger    *logging.Logger
}

// NewEngine creates the call orchestrator.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.States == nil {
		panic("conversation: state store required")
	}
	if cfg.Rules == nil {
		panic("conversation: rule responder required")
	}
	if cfg.Booker == nil {
		panic("conversation: booker required")
	}
	if cfg.Turns == nil {
		cfg.Turns = NewMemoryTurnStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		states:    cfg.States,
		turns:     cfg.Turns,
		rules:     cfg.Rules,
		rephraser: cfg.Rephraser,
		booker:    cfg.Booker,
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Greeting returns the opening prompt for a newly answered call.
func (e *Engine) Greeting() string {
	e.metrics.ObserveCallAnswered("answered")
	return e.rules.Greeting()
}

// ProcessUtterance runs one state-machine turn. It always returns a speakable
// reply; internal faults surface as an apology without advancing the stored
// step, so the call stays resumable.
func (e *Engine) ProcessUtterance(ctx context.Context, callID, utterance, callerPhone string) (reply Reply) {
	started := e.now()
	defer func() {
		e.metrics.ObserveTurnLatency(e.now().Sub(started).Seconds())
		if r := recover(); r != nil {
			e.logger.Error("panic during turn, state left unchanged", "call_sid", callID, "panic", r)
			e.metrics.ObserveTurn("unknown", "error")
			reply = Reply{Text: apologyReply}
		}
	}()

	state, err := e.states.Get(ctx, callID)
	if err != nil {
		// Without trustworthy state we cannot advance safely; apologize and
		// let the next utterance retry against the stored step.
		e.logger.Error("failed to load call state", "error", err, "call_sid", callID)
		e.metrics.ObserveTurn("unknown", "error")
		return Reply{Text: apologyReply}
	}
	if state == nil {
		state = &State{CallID: callID, Step: StepGreeting, StartedAt: e.now().UTC()}
	}
	if callerPhone != "" && state.CustomerPhone == "" {
		state.CustomerPhone = callerPhone
	}
	state.LastActivityAt = e.now().UTC()

	e.appendTurn(ctx, callID, RoleCaller, utterance)

	prevStep := state.Step
	tr := e.rules.Respond(state, utterance)

	replyText := tr.Reply
	if e.rephraser != nil {
		replyText = e.rephraser.Rephrase(ctx, state, utterance, tr.Reply)
	}

	state.Step = tr.Next

	if tr.CommitBooking {
		e.commitBooking(ctx, state, "scheduling_turn")
	}

	if state.Step.Terminal() {
		// The call is over regardless of outcome; drop the state entry now
		// rather than waiting for the completion webhook.
		if err := e.states.Delete(ctx, callID); err != nil {
			e.logger.Error("failed to clear call state", "error", err, "call_sid", callID)
		}
	} else if err := e.states.Save(ctx, state); err != nil {
		// The next turn replays from the previously stored step.
		e.logger.Error("failed to save call state", "error", err, "call_sid", callID)
	}

	e.appendTurn(ctx, callID, RoleAssistant, replyText)

	outcome := "advanced"
	if tr.Next == prevStep {
		outcome = "reprompt"
	}
	e.metrics.ObserveTurn(string(prevStep), outcome)

	e.logger.Info("conversation turn processed",
		"call_sid", callID,
		"step", state.Step,
		"customer_name", state.CustomerName,
		"confirmed", state.Confirmed,
		"end_call", tr.EndCall,
	)

	return Reply{Text: replyText, EndCall: tr.EndCall}
}

// CompleteCall finalizes a call when the telephony provider reports it ended.
// If the stored state is confirmed and complete, the booking is committed
// (idempotently; the scheduling turn may have done it already). The state
// entry is removed in every case.
func (e *Engine) CompleteCall(ctx context.Context, callID, callerPhone string) {
	state, err := e.states.Get(ctx, callID)
	if err != nil {
		e.logger.Error("failed to load call state on completion", "error", err, "call_sid", callID)
		return
	}
	if state == nil {
		e.logger.Debug("call completed with no stored state", "call_sid", callID)
		return
	}

	if callerPhone != "" && state.CustomerPhone == "" {
		state.CustomerPhone = callerPhone
	}

	if state.Confirmed && state.CustomerName != "" && state.Problem != "" {
		e.commitBooking(ctx, state, "call_completion")
	} else {
		e.logger.Info("call completed without appointment", "call_sid", callID, "step", state.Step)
	}

	if err := e.states.Delete(ctx, callID); err != nil {
		e.logger.Error("failed to clear call state on completion", "error", err, "call_sid", callID)
	}
}

func (e *Engine) commitBooking(ctx context.Context, state *State, trigger string) {
	appt, created, err := e.booker.Schedule(ctx, appointments.BookingRequest{
		CallID:        state.CallID,
		CustomerName:  state.CustomerName,
		CustomerPhone: state.CustomerPhone,
		Problem:       state.Problem,
		PreferredDate: state.ProposedDate,
		PreferredTime: state.ProposedTime,
	})
	if err != nil {
		e.logger.Error("failed to commit appointment", "error", err, "call_sid", state.CallID, "trigger", trigger)
		return
	}
	if !created {
		// The other trigger path got here first; the caller was already
		// notified once.
		e.logger.Debug("appointment already committed", "call_sid", state.CallID, "trigger", trigger)
		return
	}
	e.metrics.ObserveBooking(trigger)
	e.logger.Info("appointment committed",
		"appointment_id", appt.ID,
		"call_sid", state.CallID,
		"trigger", trigger,
	)
	e.appendTurn(ctx, state.CallID, RoleAssistant, "Appointment scheduled: "+appt.ID)
	if e.notifier != nil {
		e.notifier.AppointmentBooked(ctx, appt)
	}
}

func (e *Engine) appendTurn(ctx context.Context, callID, role, content string) {
	err := e.turns.Append(ctx, Turn{
		CallID:    callID,
		Role:      role,
		Content:   content,
		Timestamp: e.now().UTC(),
	})
	if err != nil {
		e.logger.Warn("failed to persist conversation turn", "error", err, "call_sid", callID, "role", role)
	}
}

// Turns exposes the transcript store for the dashboard read path.
func (e *Engine) Turns() TurnStore {
	return e.turns
}
