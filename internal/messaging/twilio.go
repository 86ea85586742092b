package messaging

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ValidateTwilioSignature validates that a request came from Twilio
func ValidateTwilioSignature(r *http.Request, authToken, webhookURL string) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}

	if err := r.ParseForm(); err != nil {
		return false
	}

	payload := buildSignaturePayload(webhookURL, r.PostForm)
	expectedSignature := computeSignature(payload, authToken)

	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// buildSignaturePayload creates the payload string for signature verification:
// the full webhook URL followed by every POST parameter, key-sorted.
func buildSignaturePayload(url string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(url)
	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}
	return payload.String()
}

// computeSignature computes the HMAC-SHA1 signature
func computeSignature(data, key string) string {
	h := hmac.New(sha1.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VoiceWebhookRequest carries the fields of a Twilio voice webhook we act on.
type VoiceWebhookRequest struct {
	CallSid      string
	AccountSid   string
	From         string
	To           string
	SpeechResult string
	CallStatus   string
}

// ParseVoiceWebhook parses a Twilio voice webhook form post.
func ParseVoiceWebhook(r *http.Request) (*VoiceWebhookRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("messaging: parse voice webhook form: %w", err)
	}

	return &VoiceWebhookRequest{
		CallSid:      r.FormValue("CallSid"),
		AccountSid:   r.FormValue("AccountSid"),
		From:         r.FormValue("From"),
		To:           r.FormValue("To"),
		SpeechResult: r.FormValue("SpeechResult"),
		CallStatus:   r.FormValue("CallStatus"),
	}, nil
}

// BuildAbsoluteURL reconstructs the externally visible webhook URL for
// signature validation, honoring proxy forwarding headers.
func BuildAbsoluteURL(r *http.Request) string {
	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + r.URL.RequestURI()
}
