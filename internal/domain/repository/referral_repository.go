package repository

import (
	"context"
	"errors"
	"time"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for referral persistence.
var (
	// ErrReferralLinkNotFound is returned when a referral link is not found.
	ErrReferralLinkNotFound = errors.New("referral link not found")
	// ErrReferralClickNotFound is returned when a referral click is not found.
	ErrReferralClickNotFound = errors.New("referral click not found")
	// ErrConversionExists is returned when a click was already converted.
	ErrConversionExists = errors.New("conversion already recorded for this click")
)

// ReferralRepository defines the interface for referral tracking persistence.
type ReferralRepository interface {
	// CreateLink persists a new referral link.
	CreateLink(ctx context.Context, link *entity.ReferralLink) error

	// FindLinkByCode resolves a public link code.
	FindLinkByCode(ctx context.Context, code string) (*entity.ReferralLink, error)

	// FindLinkByRecommendation retrieves the existing link for a recommendation,
	// used to keep link generation idempotent.
	FindLinkByRecommendation(ctx context.Context, recommendationID uuid.UUID) (*entity.ReferralLink, error)

	// CreateClick persists a click record.
	CreateClick(ctx context.Context, click *entity.ReferralClick) error

	// FindClickByID retrieves a click by its unique ID.
	FindClickByID(ctx context.Context, id uuid.UUID) (*entity.ReferralClick, error)

	// HasCountedClickSince reports whether the same IP already has a counted
	// click on this link after the given time. Drives the 24h dedup window.
	HasCountedClickSince(ctx context.Context, linkID uuid.UUID, ipAddress string, since time.Time) (bool, error)

	// CountClicksByIPSince counts all clicks from one IP across all links after
	// the given time. Drives the hourly rate limit.
	CountClicksByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)

	// CreateConversion records a business-confirmed visit for a click.
	CreateConversion(ctx context.Context, conversion *entity.ReferralConversion) error

	// FindConversionsByBusiness retrieves a business's conversions, newest first.
	FindConversionsByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.ReferralConversion, error)

	// SummarizeCommission aggregates clicks, conversions, and commission owed
	// for one business.
	SummarizeCommission(ctx context.Context, businessID uuid.UUID) (*entity.CommissionSummary, error)
}
