package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// Rephraser optionally rewrites the canned reply text through a language
// model. It only varies wording: the transition the rule responder decided is
// never consulted or changed here, and any failure returns the canned text.
type Rephraser struct {
	client   LLMClient
	business string
	timeout  time.Duration
	logger   *logging.Logger
}

// NewRephraser wraps an LLM client. A nil client yields a nil Rephraser,
// which callers treat as "rule-based replies only".
func NewRephraser(client LLMClient, businessName string, timeout time.Duration, logger *logging.Logger) *Rephraser {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Rephraser{client: client, business: businessName, timeout: timeout, logger: logger}
}

// Rephrase returns a natural-sounding variant of canned, or canned itself
// whenever the model is unavailable, errors, or drops required content.
func (r *Rephraser) Rephrase(ctx context.Context, state *State, utterance, canned string) string {
	if r == nil || r.client == nil {
		return canned
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	system := fmt.Sprintf("You are the phone assistant for %s, a home service company. "+
		"Rewrite the scripted reply below in your own warm, professional words. "+
		"Keep every fact exactly as stated: names, dates, times, and any instruction to answer Yes or No. "+
		"Keep it concise for voice. Reply with the rewritten text only.", r.business)

	prompt := fmt.Sprintf("Conversation step: %s\nCaller said: %q\nScripted reply: %q", state.Step, utterance, canned)

	resp, err := r.client.Complete(ctx, LLMRequest{
		System:      []string{system},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		r.logger.Warn("rephrase failed, using scripted reply", "error", err, "call_sid", state.CallID, "step", state.Step)
		return canned
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return canned
	}
	// The yes/no instruction drives the caller's next utterance; a rewrite
	// that loses it would strand the conversation on a re-prompt loop.
	if strings.Contains(canned, "Yes or No") && !strings.Contains(text, "Yes or No") {
		r.logger.Warn("rephrase dropped yes/no instruction, using scripted reply", "call_sid", state.CallID, "step", state.Step)
		return canned
	}
	return text
}
