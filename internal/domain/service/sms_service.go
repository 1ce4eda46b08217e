package service

import "context"

// SMSSender defines the interface for outbound SMS delivery.
type SMSSender interface {
	// SendBatch sends the same message to many phone numbers, returning how
	// many were accepted, how many failed, and which numbers the failures were.
	SendBatch(ctx context.Context, phoneNumbers []string, message string) (sent, failed int, failedNumbers []string, err error)
}
