package postgres

import (
	"context"
	"time"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// referralRepository implements the repository.ReferralRepository interface.
type referralRepository struct {
	db *gorm.DB
}

// NewReferralRepository is the constructor for referralRepository.
func NewReferralRepository(db *gorm.DB) repository.ReferralRepository {
	return &referralRepository{
		db: db,
	}
}

// CreateLink persists a new referral link.
func (repo *referralRepository) CreateLink(ctx context.Context, link *entity.ReferralLink) error {
	linkM := fromReferralLinkDomain(link)

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("referral link already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrRecommendationNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create referral link")
	}

	link.ID = linkM.ID
	link.CreatedAt = linkM.CreatedAt

	return nil
}

// FindLinkByCode resolves a public link code.
func (repo *referralRepository) FindLinkByCode(ctx context.Context, code string) (*entity.ReferralLink, error) {
	var linkM model.ReferralLinkModel

	if err := repo.db.WithContext(ctx).
		Where("code = ?", code).
		First(&linkM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReferralLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find referral link by code")
	}

	return toReferralLinkDomain(&linkM), nil
}

// FindLinkByRecommendation retrieves the existing link for a recommendation.
func (repo *referralRepository) FindLinkByRecommendation(ctx context.Context, recommendationID uuid.UUID) (*entity.ReferralLink, error) {
	var linkM model.ReferralLinkModel

	if err := repo.db.WithContext(ctx).
		Where("recommendation_id = ?", recommendationID).
		First(&linkM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReferralLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find referral link by recommendation")
	}

	return toReferralLinkDomain(&linkM), nil
}

// CreateClick persists a click record.
func (repo *referralRepository) CreateClick(ctx context.Context, click *entity.ReferralClick) error {
	clickM := fromReferralClickDomain(click)

	if err := repo.db.WithContext(ctx).Create(clickM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReferralLinkNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create referral click")
	}

	click.ID = clickM.ID

	return nil
}

// FindClickByID retrieves a click by its unique ID.
func (repo *referralRepository) FindClickByID(ctx context.Context, id uuid.UUID) (*entity.ReferralClick, error) {
	var clickM model.ReferralClickModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&clickM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReferralClickNotFound
		}

		return nil, errors.Wrap(err, "failed to find referral click by ID")
	}

	return toReferralClickDomain(&clickM), nil
}

// HasCountedClickSince reports whether the same IP already has a counted click
// on this link after the given time. Drives the 24h dedup window.
func (repo *referralRepository) HasCountedClickSince(ctx context.Context, linkID uuid.UUID, ipAddress string, since time.Time) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.ReferralClickModel{}).
		Where("link_id = ? AND ip_address = ? AND counted = ? AND clicked_at >= ?", linkID, ipAddress, true, since).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check for counted click")
	}

	return count > 0, nil
}

// CountClicksByIPSince counts all clicks from one IP across all links after
// the given time. Drives the hourly rate limit.
func (repo *referralRepository) CountClicksByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.ReferralClickModel{}).
		Where("ip_address = ? AND clicked_at >= ?", ipAddress, since).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count clicks by IP")
	}

	return count, nil
}

// CreateConversion records a business-confirmed visit for a click. The unique
// click_id index enforces at most one conversion per click.
func (repo *referralRepository) CreateConversion(ctx context.Context, conversion *entity.ReferralConversion) error {
	conversionM := fromReferralConversionDomain(conversion)

	if err := repo.db.WithContext(ctx).Create(conversionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrConversionExists
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrReferralClickNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create referral conversion")
	}

	conversion.ID = conversionM.ID

	return nil
}

// FindConversionsByBusiness retrieves a business's conversions, newest first.
func (repo *referralRepository) FindConversionsByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.ReferralConversion, error) {
	var conversionModels []*model.ReferralConversionModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("converted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&conversionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find conversions by business")
	}

	conversions := make([]*entity.ReferralConversion, 0, len(conversionModels))
	for _, conversionM := range conversionModels {
		conversions = append(conversions, toReferralConversionDomain(conversionM))
	}

	return conversions, nil
}

// SummarizeCommission aggregates clicks, conversions, and commission owed for
// one business. Clicks are joined through conversions so only attributable
// traffic counts toward the click total.
func (repo *referralRepository) SummarizeCommission(ctx context.Context, businessID uuid.UUID) (*entity.CommissionSummary, error) {
	summary := &entity.CommissionSummary{BusinessID: businessID}

	var conversionTotals struct {
		TotalConversions int64
		TotalCommission  float64
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.ReferralConversionModel{}).
		Select("COUNT(*) AS total_conversions, COALESCE(SUM(commission_amount), 0) AS total_commission").
		Where("business_id = ?", businessID).
		Scan(&conversionTotals).Error; err != nil {
		return nil, errors.Wrap(err, "failed to summarize conversions")
	}

	summary.TotalConversions = conversionTotals.TotalConversions
	summary.TotalCommission = conversionTotals.TotalCommission

	var totalClicks int64
	if err := repo.db.WithContext(ctx).
		Model(&model.ReferralClickModel{}).
		Joins("JOIN referral_conversions ON referral_conversions.click_id = referral_clicks.id").
		Where("referral_conversions.business_id = ? AND referral_clicks.counted = ?", businessID, true).
		Count(&totalClicks).Error; err != nil {
		return nil, errors.Wrap(err, "failed to summarize clicks")
	}

	summary.TotalClicks = totalClicks

	return summary, nil
}

// --- Mapper Functions ---

func toReferralLinkDomain(data *model.ReferralLinkModel) *entity.ReferralLink {
	if data == nil {
		return nil
	}

	return &entity.ReferralLink{
		ID:               data.ID,
		RecommendationID: data.RecommendationID,
		RecommenderID:    data.RecommenderID,
		Code:             data.Code,
		DestinationURL:   data.DestinationURL,
		ExpiresAt:        data.ExpiresAt,
		CreatedAt:        data.CreatedAt,
	}
}

func fromReferralLinkDomain(data *entity.ReferralLink) *model.ReferralLinkModel {
	if data == nil {
		return nil
	}

	return &model.ReferralLinkModel{
		ID:               data.ID,
		RecommendationID: data.RecommendationID,
		RecommenderID:    data.RecommenderID,
		Code:             data.Code,
		DestinationURL:   data.DestinationURL,
		ExpiresAt:        data.ExpiresAt,
		CreatedAt:        data.CreatedAt,
	}
}

func toReferralClickDomain(data *model.ReferralClickModel) *entity.ReferralClick {
	if data == nil {
		return nil
	}

	return &entity.ReferralClick{
		ID:            data.ID,
		LinkID:        data.LinkID,
		RecommenderID: data.RecommenderID,
		RequesterID:   data.RequesterID,
		IPAddress:     data.IPAddress,
		UserAgent:     data.UserAgent,
		Counted:       data.Counted,
		ClickedAt:     data.ClickedAt,
	}
}

func fromReferralClickDomain(data *entity.ReferralClick) *model.ReferralClickModel {
	if data == nil {
		return nil
	}

	return &model.ReferralClickModel{
		ID:            data.ID,
		LinkID:        data.LinkID,
		RecommenderID: data.RecommenderID,
		RequesterID:   data.RequesterID,
		IPAddress:     data.IPAddress,
		UserAgent:     data.UserAgent,
		Counted:       data.Counted,
		ClickedAt:     data.ClickedAt,
	}
}

func toReferralConversionDomain(data *model.ReferralConversionModel) *entity.ReferralConversion {
	if data == nil {
		return nil
	}

	return &entity.ReferralConversion{
		ID:               data.ID,
		ClickID:          data.ClickID,
		BusinessID:       data.BusinessID,
		CommissionAmount: data.CommissionAmount,
		ConvertedAt:      data.ConvertedAt,
	}
}

func fromReferralConversionDomain(data *entity.ReferralConversion) *model.ReferralConversionModel {
	if data == nil {
		return nil
	}

	return &model.ReferralConversionModel{
		ID:               data.ID,
		ClickID:          data.ClickID,
		BusinessID:       data.BusinessID,
		CommissionAmount: data.CommissionAmount,
		ConvertedAt:      data.ConvertedAt,
	}
}
