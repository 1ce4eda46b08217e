package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cravlr/config"
	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	// clickDedupWindow is how long repeat clicks from the same IP on the same
	// link stay uncounted.
	clickDedupWindow = 24 * time.Hour

	// maxClicksPerIPPerHour bounds click inserts from one IP across all links.
	maxClicksPerIPPerHour = 30

	defaultLinkExpiryDays = 30

	linkCodeBytes = 8
)

// referralService implements the ReferralUsecase interface.
type referralService struct {
	referralRepo       repository.ReferralRepository
	recommendationRepo repository.RecommendationRepository
	businessRepo       repository.BusinessRepository
	qrService          service.QRCodeService
	baseURL            string
	expiryDays         int
	logger             *slog.Logger
}

// ReferralServiceParams holds dependencies for referralService, injected by Fx.
type ReferralServiceParams struct {
	fx.In

	ReferralRepo       repository.ReferralRepository
	RecommendationRepo repository.RecommendationRepository
	BusinessRepo       repository.BusinessRepository
	QRService          service.QRCodeService
	Config             *config.Config
	Logger             *slog.Logger
}

// NewReferralService is the constructor for referralService.
func NewReferralService(params ReferralServiceParams) usecase.ReferralUsecase {
	baseURL := ""
	expiryDays := defaultLinkExpiryDays
	if params.Config != nil && params.Config.Referral != nil {
		baseURL = params.Config.Referral.BaseURL
		if params.Config.Referral.ExpiryDays > 0 {
			expiryDays = params.Config.Referral.ExpiryDays
		}
	}

	return &referralService{
		referralRepo:       params.ReferralRepo,
		recommendationRepo: params.RecommendationRepo,
		businessRepo:       params.BusinessRepo,
		qrService:          params.QRService,
		baseURL:            strings.TrimRight(baseURL, "/"),
		expiryDays:         expiryDays,
		logger:             params.Logger,
	}
}

func (srv *referralService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateReferralLink creates or returns the shareable link for a recommendation.
func (srv *referralService) CreateReferralLink(ctx context.Context, recommenderID, recommendationID uuid.UUID) (*usecase.ReferralLinkOutput, error) {
	recommendation, err := srv.recommendationRepo.FindRecommendationByID(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, repository.ErrRecommendationNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRecommendationNotFound, "recommendation not found")
		}

		return nil, errors.Wrap(err, "failed to find recommendation")
	}
	if recommendation.RecommenderID != recommenderID {
		return nil, errors.Wrap(domainerrors.ErrForbidden, "recommendation does not belong to user")
	}

	existing, err := srv.referralRepo.FindLinkByRecommendation(ctx, recommendationID)
	if err == nil {
		return srv.linkOutput(existing), nil
	}
	if !errors.Is(err, repository.ErrReferralLinkNotFound) {
		return nil, errors.Wrap(err, "failed to find existing referral link")
	}

	code, err := generateLinkCode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate link code")
	}

	link := &entity.ReferralLink{
		RecommendationID: recommendationID,
		RecommenderID:    recommenderID,
		Code:             code,
		DestinationURL:   destinationURL(recommendation),
		ExpiresAt:        time.Now().AddDate(0, 0, srv.expiryDays),
	}
	if err := srv.referralRepo.CreateLink(ctx, link); err != nil {
		srv.log(ctx).Error("Failed to create referral link", slog.Any("recommendationID", recommendationID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create referral link")
	}

	return srv.linkOutput(link), nil
}

// GetReferralQR renders the link's public URL as a PNG QR code.
func (srv *referralService) GetReferralQR(ctx context.Context, recommenderID, recommendationID uuid.UUID) ([]byte, error) {
	output, err := srv.CreateReferralLink(ctx, recommenderID, recommendationID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateReferralQR(output.PublicURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render referral QR code")
	}

	return png, nil
}

// TrackClick records a click and returns the redirect destination.
//
// Expired links return ErrReferralLinkExpired alongside the destination: no
// click is recorded, but the visitor is still sent through when the link has
// somewhere to go. A repeat click from the same IP inside the dedup window is
// stored with Counted=false and still redirects, so the visitor experience is
// unchanged.
func (srv *referralService) TrackClick(ctx context.Context, input *usecase.TrackClickInput) (string, error) {
	link, err := srv.referralRepo.FindLinkByCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, repository.ErrReferralLinkNotFound) {
			return "", errors.Wrap(domainerrors.ErrReferralLinkNotFound, "referral link not found")
		}

		return "", errors.Wrap(err, "failed to find referral link")
	}

	clickedAt := input.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	if link.IsExpired(clickedAt) {
		srv.log(ctx).Info("Click on expired referral link", slog.String("code", input.Code))

		return link.DestinationURL, errors.Wrap(domainerrors.ErrReferralLinkExpired, "referral link expired")
	}

	recentClicks, err := srv.referralRepo.CountClicksByIPSince(ctx, input.IPAddress, clickedAt.Add(-time.Hour))
	if err != nil {
		return "", errors.Wrap(err, "failed to check click rate limit")
	}
	if recentClicks >= maxClicksPerIPPerHour {
		srv.log(ctx).Warn("Referral click rate limited", slog.String("ip", input.IPAddress))

		return "", errors.Wrap(domainerrors.ErrReferralRateLimited, "too many clicks from this address")
	}

	alreadyCounted, err := srv.referralRepo.HasCountedClickSince(ctx, link.ID, input.IPAddress, clickedAt.Add(-clickDedupWindow))
	if err != nil {
		return "", errors.Wrap(err, "failed to check click dedup window")
	}

	click := &entity.ReferralClick{
		LinkID:        link.ID,
		RecommenderID: link.RecommenderID,
		RequesterID:   input.RequesterID,
		IPAddress:     input.IPAddress,
		UserAgent:     input.UserAgent,
		Counted:       !alreadyCounted,
		ClickedAt:     clickedAt,
	}
	if err := srv.referralRepo.CreateClick(ctx, click); err != nil {
		return "", errors.Wrap(err, "failed to record click")
	}

	return link.DestinationURL, nil
}

// MarkConversion lets a business confirm a click turned into a real visit.
func (srv *referralService) MarkConversion(ctx context.Context, ownerID uuid.UUID, input *usecase.MarkConversionInput) (*entity.ReferralConversion, error) {
	business, err := srv.ownedBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	click, err := srv.referralRepo.FindClickByID(ctx, input.ClickID)
	if err != nil {
		if errors.Is(err, repository.ErrReferralClickNotFound) {
			return nil, errors.Wrap(domainerrors.ErrNotFound, "click not found")
		}

		return nil, errors.Wrap(err, "failed to find click")
	}
	if !click.Counted {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "deduplicated clicks cannot convert")
	}
	if input.VisitValue < 0 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "visit value cannot be negative")
	}

	conversion := &entity.ReferralConversion{
		ClickID:          click.ID,
		BusinessID:       business.ID,
		CommissionAmount: business.CommissionRate * input.VisitValue,
	}
	if err := srv.referralRepo.CreateConversion(ctx, conversion); err != nil {
		if errors.Is(err, repository.ErrConversionExists) {
			return nil, errors.Wrap(domainerrors.ErrConversionAlreadyMarked, "click already converted")
		}

		return nil, errors.Wrap(err, "failed to record conversion")
	}

	srv.log(ctx).Info("Referral conversion recorded",
		slog.Any("businessID", business.ID),
		slog.Any("clickID", click.ID),
		slog.Float64("commission", conversion.CommissionAmount))

	return conversion, nil
}

// ListConversions pages through a business's confirmed visits.
func (srv *referralService) ListConversions(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.ReferralConversion, error) {
	business, err := srv.ownedBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)

	conversions, err := srv.referralRepo.FindConversionsByBusiness(ctx, business.ID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversions")
	}

	return conversions, nil
}

// GetCommissionSummary aggregates a business's referral performance.
func (srv *referralService) GetCommissionSummary(ctx context.Context, ownerID uuid.UUID) (*entity.CommissionSummary, error) {
	business, err := srv.ownedBusiness(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary, err := srv.referralRepo.SummarizeCommission(ctx, business.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize commission")
	}

	return summary, nil
}

func (srv *referralService) ownedBusiness(ctx context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error) {
	business, err := srv.businessRepo.FindBusinessByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, errors.Wrap(domainerrors.ErrBusinessNotFound, "no business profile for this account")
		}

		return nil, errors.Wrap(err, "failed to find business profile")
	}

	return business, nil
}

func (srv *referralService) linkOutput(link *entity.ReferralLink) *usecase.ReferralLinkOutput {
	return &usecase.ReferralLinkOutput{
		Link:      link,
		PublicURL: srv.baseURL + "/" + link.Code,
	}
}

// generateLinkCode returns a short URL-safe random code.
func generateLinkCode() (string, error) {
	buf := make([]byte, linkCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// destinationURL picks where a referral click lands: the recommendation's
// maps link when one was attached, otherwise a maps search on the name.
func destinationURL(rec *entity.Recommendation) string {
	if rec.MapsURL != "" {
		return rec.MapsURL
	}

	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s", url.QueryEscape(rec.RestaurantName))
}
