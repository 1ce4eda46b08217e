package service

import "context"

// EmailSender defines the interface for outbound email delivery. Implementations
// chunk recipient lists to stay under provider batch limits.
type EmailSender interface {
	// SendBatch sends the same message to many recipients, returning how many
	// were accepted, how many failed, and which recipients the failures were.
	// A chunk failure is reported through the counts with err == nil; err is
	// reserved for aborting conditions like a cancelled context.
	SendBatch(ctx context.Context, recipients []string, subject, htmlBody string) (sent, failed int, failedRecipients []string, err error)
}
