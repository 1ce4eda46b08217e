package repository

import (
	"context"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ReminderRepository defines the interface for visit reminder persistence.
type ReminderRepository interface {
	// CreateReminder schedules a visit reminder.
	CreateReminder(ctx context.Context, reminder *entity.VisitReminder) error

	// FindDueReminders retrieves unsent reminders scheduled at or before now.
	FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*entity.VisitReminder, error)

	// FindDueRemindersByUser retrieves one user's unsent due reminders, used by
	// the JWT-authenticated sweep path.
	FindDueRemindersByUser(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*entity.VisitReminder, error)

	// MarkRemindersSent flags the given reminders as sent.
	MarkRemindersSent(ctx context.Context, ids []uuid.UUID) error
}
