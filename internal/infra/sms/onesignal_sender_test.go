package sms

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"cravlr/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *oneSignalSender {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.OneSignal = &config.OneSignalConfig{
		AppID:      "app-1",
		APIKey:     "key-1",
		SMSFrom:    "+15550001111",
		APIBaseURL: server.URL,
	}

	return NewOneSignalSender(cfg, slog.New(slog.DiscardHandler)).(*oneSignalSender)
}

func TestSendBatch_PostsCreateMessagePayload(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notifications", r.URL.Path)
		assert.Equal(t, "Basic key-1", r.Header.Get("Authorization"))

		var payload createMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "app-1", payload.AppID)
		assert.Equal(t, "+15550001111", payload.SMSFrom)
		assert.Equal(t, []string{"+15551230001", "+15551230002"}, payload.IncludePhoneNumbers)
		assert.Equal(t, "Someone near you wants tacos", payload.Contents["en"])

		_, _ = w.Write([]byte(`{"id": "msg-1"}`))
	})

	sent, failed, failedNumbers, err := sender.SendBatch(context.Background(), []string{"+15551230001", "+15551230002"}, "Someone near you wants tacos")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Zero(t, failed)
	assert.Empty(t, failedNumbers)
}

func TestSendBatch_RejectedRequestFailsAllNumbers(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors": ["app_id not found"]}`))
	})

	sent, failed, failedNumbers, err := sender.SendBatch(context.Background(), []string{"+15551230001", "+15551230002"}, "hi")
	require.Error(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"+15551230001", "+15551230002"}, failedNumbers)
}

func TestSendBatch_APIErrorsInBody(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "", "errors": ["invalid phone number"]}`))
	})

	sent, failed, failedNumbers, err := sender.SendBatch(context.Background(), []string{"+15551230001"}, "hi")
	require.Error(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"+15551230001"}, failedNumbers)
}

func TestSendBatch_NoNumbersIsNoop(t *testing.T) {
	sender := newTestSender(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	sent, failed, failedNumbers, err := sender.SendBatch(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, failedNumbers)
}
