package handlers

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bettercallhomme/voiceline/internal/conversation"
	"github.com/bettercallhomme/voiceline/internal/messaging"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

var voiceTracer = otel.Tracer("voiceline.internal.http.voice")

// VoiceHandler terminates the Twilio voice webhooks. It translates webhook
// form posts into engine calls and engine replies into TwiML.
type VoiceHandler struct {
	engine       *conversation.Engine
	authToken    string
	validateSig  bool
	speechAction string
	business     string
	logger       *logging.Logger
}

// VoiceHandlerConfig configures the VoiceHandler.
type VoiceHandlerConfig struct {
	Engine *conversation.Engine
	// AuthToken enables Twilio signature validation when ValidateSignature
	// is set.
	AuthToken         string
	ValidateSignature bool
	// SpeechAction is the webhook path Twilio posts speech results to.
	SpeechAction string
	BusinessName string
	Logger       *logging.Logger
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(cfg VoiceHandlerConfig) *VoiceHandler {
	if cfg.Engine == nil {
		panic("handlers: conversation engine required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.SpeechAction == "" {
		cfg.SpeechAction = "/voice/speech"
	}
	return &VoiceHandler{
		engine:       cfg.Engine,
		authToken:    cfg.AuthToken,
		validateSig:  cfg.ValidateSignature,
		speechAction: cfg.SpeechAction,
		business:     cfg.BusinessName,
		logger:       cfg.Logger,
	}
}

// HandleIncomingCall handles POST /voice: a new call was answered. Speaks the
// greeting and starts listening.
func (h *VoiceHandler) HandleIncomingCall(w http.ResponseWriter, r *http.Request) {
	_, span := voiceTracer.Start(r.Context(), "voice.incoming")
	defer span.End()

	if !h.authorized(w, r) {
		return
	}

	webhook, err := messaging.ParseVoiceWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse voice webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("voiceline.call_sid", webhook.CallSid))
	h.logger.Info("incoming call", "call_sid", webhook.CallSid, "from", messaging.NormalizeE164(webhook.From))

	writeTwiML(w, messaging.GatherSpeechTwiML(h.engine.Greeting(), h.speechAction))
}

// HandleSpeech handles POST /voice/speech: one recognized utterance. Runs a
// single state-machine turn and answers with TwiML.
func (h *VoiceHandler) HandleSpeech(w http.ResponseWriter, r *http.Request) {
	ctx, span := voiceTracer.Start(r.Context(), "voice.speech")
	defer span.End()

	if !h.authorized(w, r) {
		return
	}

	webhook, err := messaging.ParseVoiceWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse voice webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if webhook.CallSid == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("voiceline.call_sid", webhook.CallSid))

	reply := h.engine.ProcessUtterance(ctx, webhook.CallSid, webhook.SpeechResult, messaging.NormalizeE164(webhook.From))
	if reply.EndCall {
		writeTwiML(w, messaging.HangupTwiML(reply.Text, h.business))
		return
	}
	writeTwiML(w, messaging.GatherSpeechTwiML(reply.Text, h.speechAction))
}

// HandleStatus handles POST /voice/status: call lifecycle callbacks. A
// completed call finalizes the booking when eligible and clears state.
func (h *VoiceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := voiceTracer.Start(r.Context(), "voice.status")
	defer span.End()

	if !h.authorized(w, r) {
		return
	}

	webhook, err := messaging.ParseVoiceWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse voice webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("voiceline.call_sid", webhook.CallSid),
		attribute.String("voiceline.call_status", webhook.CallStatus),
	)

	switch webhook.CallStatus {
	case "completed", "busy", "failed", "no-answer", "canceled":
		h.engine.CompleteCall(ctx, webhook.CallSid, messaging.NormalizeE164(webhook.From))
	}

	writeTwiML(w, messaging.EmptyTwiML())
}

func (h *VoiceHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if !h.validateSig || h.authToken == "" {
		return true
	}
	if !messaging.ValidateTwilioSignature(r, h.authToken, messaging.BuildAbsoluteURL(r)) {
		h.logger.Warn("invalid twilio signature", "path", r.URL.Path)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
