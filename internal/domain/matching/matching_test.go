package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cravlr/internal/domain/entity"
)

func ptr(v float64) *float64 { return &v }

func newRequest(requesterID uuid.UUID, city string, lat, lng *float64) *entity.FoodRequest {
	return &entity.FoodRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		FoodType:    "tacos",
		City:        city,
		Latitude:    lat,
		Longitude:   lng,
		Status:      entity.RequestStatusActive,
	}
}

func newProfile(city string, lat, lng *float64) *entity.Profile {
	return &entity.Profile{
		UserID:            uuid.New(),
		DisplayName:       "tester",
		Email:             "tester@example.com",
		PhoneNumber:       "+15125550100",
		City:              city,
		Latitude:          lat,
		Longitude:         lng,
		NotifyRecommender: true,
		PushNewRequest:    true,
		EmailNewRequest:   true,
		SMSNewRequest:     true,
	}
}

func TestDistanceKm(t *testing.T) {
	// Austin downtown to Austin airport, roughly 10km apart.
	distance := DistanceKm(30.2672, -97.7431, 30.1975, -97.6664)
	assert.InDelta(t, 10.6, distance, 1.0)

	// Austin to Dallas, roughly 290km apart.
	distance = DistanceKm(30.2672, -97.7431, 32.7767, -96.7970)
	assert.InDelta(t, 292.0, distance, 10.0)

	// Same point is zero.
	assert.Zero(t, DistanceKm(30.2672, -97.7431, 30.2672, -97.7431))
}

func TestCityMatches(t *testing.T) {
	assert.True(t, CityMatches("Austin", "austin"))
	assert.True(t, CityMatches("Austin, TX", "Austin"))
	assert.True(t, CityMatches("Austin", "Austin, TX"))
	assert.False(t, CityMatches("Austin", "Dallas"))
	assert.False(t, CityMatches("", "Austin"))
	assert.False(t, CityMatches("Austin", ""))
	assert.False(t, CityMatches("", ""))
}

func TestIsEligible_Distance(t *testing.T) {
	requester := uuid.New()
	// Request in central Austin.
	req := newRequest(requester, "Austin", ptr(30.2672), ptr(-97.7431))

	// Profile about 4km north: within the default 20km radius.
	near := newProfile("Austin", ptr(30.3032), ptr(-97.7431))
	assert.True(t, IsEligible(req, near))

	// Profile about 85km away: outside the radius even though the city matches.
	far := newProfile("Austin", ptr(31.0317), ptr(-97.7431))
	assert.False(t, IsEligible(req, far))

	// Widening the radius makes the far profile eligible again.
	far.NotificationRadiusKm = 100
	assert.True(t, IsEligible(req, far))
}

func TestIsEligible_CityFallback(t *testing.T) {
	requester := uuid.New()

	// No coordinates on the request: fall back to city matching.
	req := newRequest(requester, "Austin", nil, nil)

	austin := newProfile("Austin, TX", ptr(30.3), ptr(-97.74))
	assert.True(t, IsEligible(req, austin))

	dallas := newProfile("Dallas", ptr(32.7767), ptr(-96.7970))
	assert.False(t, IsEligible(req, dallas))

	// No coordinates on the profile side either.
	reqWithCoords := newRequest(requester, "Austin", ptr(30.2672), ptr(-97.7431))
	noCoords := newProfile("austin", nil, nil)
	assert.True(t, IsEligible(reqWithCoords, noCoords))
}

func TestIsEligible_Exclusions(t *testing.T) {
	requester := uuid.New()
	req := newRequest(requester, "Austin", ptr(30.2672), ptr(-97.7431))

	// The requester never gets their own request.
	self := newProfile("Austin", ptr(30.2672), ptr(-97.7431))
	self.UserID = requester
	assert.False(t, IsEligible(req, self))

	// Master toggle off.
	optedOut := newProfile("Austin", ptr(30.2672), ptr(-97.7431))
	optedOut.NotifyRecommender = false
	assert.False(t, IsEligible(req, optedOut))

	// Paused recommenders are skipped.
	paused := newProfile("Austin", ptr(30.2672), ptr(-97.7431))
	paused.RecommenderPaused = true
	assert.False(t, IsEligible(req, paused))
}

func TestWantsChannel(t *testing.T) {
	profile := newProfile("Austin", nil, nil)

	assert.True(t, WantsChannel(profile, entity.ChannelPush))
	assert.True(t, WantsChannel(profile, entity.ChannelEmail))
	assert.True(t, WantsChannel(profile, entity.ChannelSMS))
	assert.True(t, WantsChannel(profile, entity.ChannelInApp))

	profile.PushNewRequest = false
	assert.False(t, WantsChannel(profile, entity.ChannelPush))

	// Email opt-in without an address is useless.
	profile.Email = ""
	assert.False(t, WantsChannel(profile, entity.ChannelEmail))

	profile.PhoneNumber = ""
	assert.False(t, WantsChannel(profile, entity.ChannelSMS))

	// In-app has no opt-out.
	assert.True(t, WantsChannel(profile, entity.ChannelInApp))
}

func TestEligibleRecipients(t *testing.T) {
	requester := uuid.New()
	req := newRequest(requester, "Austin", ptr(30.2672), ptr(-97.7431))

	near := newProfile("Austin", ptr(30.3032), ptr(-97.7431))
	far := newProfile("Austin", ptr(31.0317), ptr(-97.7431))
	noPush := newProfile("Austin", ptr(30.28), ptr(-97.74))
	noPush.PushNewRequest = false
	cityOnly := newProfile("Austin, TX", nil, nil)

	profiles := []*entity.Profile{near, far, noPush, cityOnly}

	push := EligibleRecipients(req, profiles, entity.ChannelPush)
	require.Len(t, push, 2)
	assert.Equal(t, near.UserID, push[0].UserID)
	assert.Equal(t, cityOnly.UserID, push[1].UserID)

	// noPush still gets the in-app entry.
	inApp := EligibleRecipients(req, profiles, entity.ChannelInApp)
	require.Len(t, inApp, 3)

	// Empty input yields an empty, non-nil slice.
	assert.Empty(t, EligibleRecipients(req, nil, entity.ChannelPush))
}
