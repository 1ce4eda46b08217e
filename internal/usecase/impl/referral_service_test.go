package impl

import (
	"context"
	"testing"
	"time"

	"cravlr/config"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type referralFixture struct {
	svc                usecase.ReferralUsecase
	referralRepo       *fakeReferralRepo
	recommendationRepo *fakeRecommendationRepo
	businessRepo       *fakeBusinessRepo
	qrService          *fakeQRService
}

func newReferralFixture() *referralFixture {
	f := &referralFixture{
		referralRepo:       &fakeReferralRepo{},
		recommendationRepo: &fakeRecommendationRepo{},
		businessRepo:       &fakeBusinessRepo{},
		qrService:          &fakeQRService{},
	}
	f.svc = NewReferralService(ReferralServiceParams{
		ReferralRepo:       f.referralRepo,
		RecommendationRepo: f.recommendationRepo,
		BusinessRepo:       f.businessRepo,
		QRService:          f.qrService,
		Config: &config.Config{Referral: &config.ReferralConfig{
			BaseURL:    "https://cravlr.app/r/",
			ExpiryDays: 30,
		}},
		Logger: testLogger(),
	})

	return f
}

func TestNewReferralService_DefaultsLinkExpiryTo30Days(t *testing.T) {
	svc := NewReferralService(ReferralServiceParams{
		ReferralRepo:       &fakeReferralRepo{},
		RecommendationRepo: &fakeRecommendationRepo{},
		BusinessRepo:       &fakeBusinessRepo{},
		QRService:          &fakeQRService{},
		Config:             &config.Config{},
		Logger:             testLogger(),
	}).(*referralService)

	assert.Equal(t, 30, svc.expiryDays)
}

func (f *referralFixture) withRecommendation(recommenderID uuid.UUID, mapsURL string) *entity.Recommendation {
	rec := &entity.Recommendation{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		RecommenderID:  recommenderID,
		RestaurantName: "Franklin Barbecue",
		MapsURL:        mapsURL,
	}
	f.recommendationRepo.findByID = func(id uuid.UUID) (*entity.Recommendation, error) {
		if id == rec.ID {
			return rec, nil
		}

		return nil, errors.New("unexpected id")
	}

	return rec
}

func TestCreateReferralLink_IdempotentPerRecommendation(t *testing.T) {
	f := newReferralFixture()
	recommenderID := uuid.New()
	rec := f.withRecommendation(recommenderID, "https://maps.example.com/franklin")

	first, err := f.svc.CreateReferralLink(context.Background(), recommenderID, rec.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Link.Code)
	assert.Equal(t, "https://maps.example.com/franklin", first.Link.DestinationURL)
	assert.Equal(t, "https://cravlr.app/r/"+first.Link.Code, first.PublicURL)

	second, err := f.svc.CreateReferralLink(context.Background(), recommenderID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Link.Code, second.Link.Code)
	assert.Len(t, f.referralRepo.links, 1)
}

func TestCreateReferralLink_ForbiddenForOtherUsers(t *testing.T) {
	f := newReferralFixture()
	rec := f.withRecommendation(uuid.New(), "")

	_, err := f.svc.CreateReferralLink(context.Background(), uuid.New(), rec.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestCreateReferralLink_FallsBackToMapsSearch(t *testing.T) {
	f := newReferralFixture()
	recommenderID := uuid.New()
	rec := f.withRecommendation(recommenderID, "")

	output, err := f.svc.CreateReferralLink(context.Background(), recommenderID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Franklin+Barbecue", output.Link.DestinationURL)
}

func TestGetReferralQR_EncodesPublicURL(t *testing.T) {
	f := newReferralFixture()
	recommenderID := uuid.New()
	rec := f.withRecommendation(recommenderID, "")

	png, err := f.svc.GetReferralQR(context.Background(), recommenderID, rec.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	require.Len(t, f.referralRepo.links, 1)
	assert.Equal(t, "https://cravlr.app/r/"+f.referralRepo.links[0].Code, f.qrService.lastURL)
}

func TestTrackClick_DedupsRepeatIPWithin24Hours(t *testing.T) {
	f := newReferralFixture()
	link := &entity.ReferralLink{
		RecommendationID: uuid.New(),
		RecommenderID:    uuid.New(),
		Code:             "abc123",
		DestinationURL:   "https://maps.example.com/franklin",
		ExpiresAt:        time.Now().Add(24 * time.Hour * 30),
	}
	require.NoError(t, f.referralRepo.CreateLink(context.Background(), link))

	now := time.Now()
	click := func(ip string, at time.Time) (string, error) {
		return f.svc.TrackClick(context.Background(), &usecase.TrackClickInput{
			Code:      "abc123",
			IPAddress: ip,
			UserAgent: "test-agent",
			ClickedAt: at,
		})
	}

	dest, err := click("198.51.100.7", now)
	require.NoError(t, err)
	assert.Equal(t, link.DestinationURL, dest)

	// Same IP an hour later still redirects but is not counted.
	dest, err = click("198.51.100.7", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, link.DestinationURL, dest)

	// A different IP counts independently.
	_, err = click("203.0.113.9", now.Add(time.Hour))
	require.NoError(t, err)

	// Same IP after the window counts again.
	_, err = click("198.51.100.7", now.Add(25*time.Hour))
	require.NoError(t, err)

	require.Len(t, f.referralRepo.clicks, 4)
	assert.True(t, f.referralRepo.clicks[0].Counted)
	assert.False(t, f.referralRepo.clicks[1].Counted)
	assert.True(t, f.referralRepo.clicks[2].Counted)
	assert.True(t, f.referralRepo.clicks[3].Counted)
}

func TestTrackClick_ExpiredLink(t *testing.T) {
	f := newReferralFixture()
	link := &entity.ReferralLink{
		Code:           "stale",
		DestinationURL: "https://maps.example.com/somewhere",
		ExpiresAt:      time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.referralRepo.CreateLink(context.Background(), link))

	dest, err := f.svc.TrackClick(context.Background(), &usecase.TrackClickInput{Code: "stale", IPAddress: "198.51.100.7"})
	assert.ErrorIs(t, err, domainerrors.ErrReferralLinkExpired)

	// The destination still comes back so the visitor can be forwarded, but
	// nothing is recorded against the link.
	assert.Equal(t, link.DestinationURL, dest)
	assert.Empty(t, f.referralRepo.clicks)
}

func TestTrackClick_RateLimitsByIP(t *testing.T) {
	f := newReferralFixture()
	link := &entity.ReferralLink{
		Code:           "busy",
		DestinationURL: "https://maps.example.com/somewhere",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, f.referralRepo.CreateLink(context.Background(), link))

	now := time.Now()
	for i := 0; i < maxClicksPerIPPerHour; i++ {
		f.referralRepo.clicks = append(f.referralRepo.clicks, &entity.ReferralClick{
			ID:        uuid.New(),
			LinkID:    link.ID,
			IPAddress: "198.51.100.7",
			ClickedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	_, err := f.svc.TrackClick(context.Background(), &usecase.TrackClickInput{Code: "busy", IPAddress: "198.51.100.7", ClickedAt: now})
	assert.ErrorIs(t, err, domainerrors.ErrReferralRateLimited)

	// Other addresses are unaffected.
	_, err = f.svc.TrackClick(context.Background(), &usecase.TrackClickInput{Code: "busy", IPAddress: "203.0.113.9", ClickedAt: now})
	assert.NoError(t, err)
}

func TestMarkConversion(t *testing.T) {
	f := newReferralFixture()
	ownerID := uuid.New()
	business := &entity.BusinessProfile{
		OwnerID:        ownerID,
		PlaceID:        "place-1",
		Name:           "Franklin Barbecue",
		CommissionRate: 0.1,
	}
	require.NoError(t, f.businessRepo.CreateBusinessProfile(context.Background(), business))

	counted := &entity.ReferralClick{ID: uuid.New(), LinkID: uuid.New(), IPAddress: "198.51.100.7", Counted: true, ClickedAt: time.Now()}
	deduped := &entity.ReferralClick{ID: uuid.New(), LinkID: counted.LinkID, IPAddress: "198.51.100.7", Counted: false, ClickedAt: time.Now()}
	f.referralRepo.clicks = append(f.referralRepo.clicks, counted, deduped)

	conversion, err := f.svc.MarkConversion(context.Background(), ownerID, &usecase.MarkConversionInput{ClickID: counted.ID, VisitValue: 80})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, conversion.CommissionAmount, 0.001)

	// A click can convert once.
	_, err = f.svc.MarkConversion(context.Background(), ownerID, &usecase.MarkConversionInput{ClickID: counted.ID, VisitValue: 80})
	assert.ErrorIs(t, err, domainerrors.ErrConversionAlreadyMarked)

	// Deduplicated clicks never earn commission.
	_, err = f.svc.MarkConversion(context.Background(), ownerID, &usecase.MarkConversionInput{ClickID: deduped.ID, VisitValue: 80})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	// Only business owners can convert.
	_, err = f.svc.MarkConversion(context.Background(), uuid.New(), &usecase.MarkConversionInput{ClickID: counted.ID, VisitValue: 80})
	assert.ErrorIs(t, err, domainerrors.ErrBusinessNotFound)
}
