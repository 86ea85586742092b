package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) (*TwilioSender, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sender := NewTwilioSender("AC123", "token", "+15550000000", nil)
	sender.baseURL = server.URL
	return sender, server
}

func TestSendSMS_Success(t *testing.T) {
	var gotTo, gotFrom, gotBody string
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)
		assert.Contains(t, r.URL.Path, "/2010-04-01/Accounts/AC123/Messages.json")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM999"}`))
	})

	err := sender.SendSMS(context.Background(), "+15551234567", "Hi John! Your appointment is confirmed.")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", gotTo)
	assert.Equal(t, "+15550000000", gotFrom)
	assert.Equal(t, "Hi John! Your appointment is confirmed.", gotBody)
}

func TestSendSMS_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	})

	err := sender.SendSMS(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendSMS_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid To"}`))
	})

	err := sender.SendSMS(context.Background(), "+1555", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendSMS_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := sender.SendSMS(context.Background(), "+15551234567", "hello")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendSMS_ValidatesInputs(t *testing.T) {
	sender := NewTwilioSender("AC123", "token", "+15550000000", nil)

	assert.Error(t, sender.SendSMS(context.Background(), "", "hello"))
	assert.Error(t, sender.SendSMS(context.Background(), "+15551234567", "  "))

	unconfigured := NewTwilioSender("", "", "+15550000000", nil)
	assert.Error(t, unconfigured.SendSMS(context.Background(), "+15551234567", "hello"))
}
