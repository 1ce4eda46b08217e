package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"cravlr/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(send sendFunc) *smtpSender {
	cfg := &config.Config{}
	cfg.Email = &config.EmailConfig{
		Host:        "smtp.example.com",
		Port:        587,
		FromAddress: "noreply@cravlr.app",
		FromName:    "Cravlr",
		BatchSize:   90,
	}

	sender := NewSMTPSender(cfg, slog.New(slog.DiscardHandler)).(*smtpSender)
	sender.send = send

	return sender
}

func makeRecipients(n int) []string {
	recipients := make([]string, 0, n)
	for i := range n {
		recipients = append(recipients, fmt.Sprintf("user%d@example.com", i))
	}

	return recipients
}

func TestSendBatch_ChunksAtBatchSize(t *testing.T) {
	var batches [][]string
	sender := newTestSender(func(_ string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		batches = append(batches, to)

		return nil
	})

	sent, failed, failedRecipients, err := sender.SendBatch(context.Background(), makeRecipients(200), "Tacos nearby", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, 200, sent)
	assert.Equal(t, 0, failed)
	assert.Empty(t, failedRecipients)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 90)
	assert.Len(t, batches[1], 90)
	assert.Len(t, batches[2], 20)
}

func TestSendBatch_FailedChunkDoesNotStopTheRest(t *testing.T) {
	var call int
	sender := newTestSender(func(_ string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		call++
		if call == 1 {
			return fmt.Errorf("connection refused")
		}

		return nil
	})

	sent, failed, failedRecipients, err := sender.SendBatch(context.Background(), makeRecipients(100), "subject", "body")
	require.NoError(t, err)

	assert.Equal(t, 10, sent)
	assert.Equal(t, 90, failed)
	assert.Equal(t, makeRecipients(100)[:90], failedRecipients)
}

func TestSendBatch_MessageHeaders(t *testing.T) {
	var msg []byte
	sender := newTestSender(func(_ string, _ smtp.Auth, from string, _ []string, body []byte) error {
		assert.Equal(t, "noreply@cravlr.app", from)
		msg = body

		return nil
	})

	_, _, _, err := sender.SendBatch(context.Background(), []string{"a@example.com"}, "Tacos nearby", "<p>hello</p>")
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "From: Cravlr <noreply@cravlr.app>\r\n")
	assert.Contains(t, text, "Subject: Tacos nearby\r\n")
	assert.Contains(t, text, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(text, "<p>hello</p>"))
}

func TestSendBatch_NoRecipients(t *testing.T) {
	sender := newTestSender(func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		t.Error("no send expected")

		return nil
	})

	sent, failed, failedRecipients, err := sender.SendBatch(context.Background(), nil, "s", "b")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, failedRecipients)
}
