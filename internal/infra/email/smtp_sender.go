// Package email implements the broadcast email sender over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"cravlr/config"
	"cravlr/internal/domain/service"
)

// defaultBatchSize bounds recipients per outgoing message, below typical
// provider BCC limits.
const defaultBatchSize = 90

// sendFunc matches smtp.SendMail; injectable so tests run without a server.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	addr      string
	auth      smtp.Auth
	from      string
	fromName  string
	batchSize int
	send      sendFunc
	logger    *slog.Logger
}

// NewSMTPSender is the constructor for smtpSender.
func NewSMTPSender(cfg *config.Config, logger *slog.Logger) service.EmailSender {
	emailCfg := cfg.Email
	if emailCfg == nil {
		emailCfg = &config.EmailConfig{}
	}

	var auth smtp.Auth
	if emailCfg.UserName != "" {
		auth = smtp.PlainAuth("", emailCfg.UserName, emailCfg.Password, emailCfg.Host)
	}

	batchSize := emailCfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &smtpSender{
		addr:      fmt.Sprintf("%s:%d", emailCfg.Host, emailCfg.Port),
		auth:      auth,
		from:      emailCfg.FromAddress,
		fromName:  emailCfg.FromName,
		batchSize: batchSize,
		send:      smtp.SendMail,
		logger:    logger,
	}
}

// SendBatch sends the same message to many recipients, chunked to the batch
// size. Recipients go on BCC so a batch never leaks the list. A failed chunk
// counts all of its recipients as failed and the remaining chunks still send.
func (s *smtpSender) SendBatch(ctx context.Context, recipients []string, subject, htmlBody string) (sent, failed int, failedRecipients []string, err error) {
	if len(recipients) == 0 {
		return 0, 0, nil, nil
	}

	msgBody := s.buildMessage(subject, htmlBody)

	for start := 0; start < len(recipients); start += s.batchSize {
		if ctx.Err() != nil {
			failed += len(recipients) - start
			failedRecipients = append(failedRecipients, recipients[start:]...)

			return sent, failed, failedRecipients, ctx.Err()
		}

		end := min(start+s.batchSize, len(recipients))
		chunk := recipients[start:end]

		if sendErr := s.send(s.addr, s.auth, s.from, chunk, msgBody); sendErr != nil {
			failed += len(chunk)
			failedRecipients = append(failedRecipients, chunk...)
			s.logger.Warn("email batch failed",
				slog.Int("recipients", len(chunk)),
				slog.String("error", sendErr.Error()),
			)

			continue
		}

		sent += len(chunk)
	}

	return sent, failed, failedRecipients, nil
}

func (s *smtpSender) buildMessage(subject, htmlBody string) []byte {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", s.from) // recipients are BCC'd
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	return []byte(b.String())
}
