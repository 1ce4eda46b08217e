// Package matching decides which recommender profiles should hear about a
// food request. All functions are pure so they can be exercised directly in
// tests and reused by both the API broadcast path and the worker.
package matching

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"cravlr/internal/domain/entity"
)

// DistanceKm calculates the great circle distance between two points in kilometers
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lng1, lat1}, orb.Point{lng2, lat2}) / 1000.0
}

// CityMatches reports whether two city names refer to the same place, using a
// case-insensitive substring check in both directions so "Austin" matches
// "Austin, TX" and vice versa. Empty strings never match.
func CityMatches(requestCity, profileCity string) bool {
	a := strings.ToLower(strings.TrimSpace(requestCity))
	b := strings.ToLower(strings.TrimSpace(profileCity))
	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

// IsEligible reports whether a profile should be notified about a request,
// ignoring channel preferences.
//
// When both sides carry coordinates the decision is purely geographic: the
// Haversine distance must be within the profile's notification radius. City
// matching is only a fallback for profiles or requests without coordinates.
func IsEligible(req *entity.FoodRequest, profile *entity.Profile) bool {
	if profile.UserID == req.RequesterID {
		return false
	}
	if !profile.NotifyRecommender || profile.RecommenderPaused {
		return false
	}

	if req.HasCoordinates() && profile.HasCoordinates() {
		distance := DistanceKm(*req.Latitude, *req.Longitude, *profile.Latitude, *profile.Longitude)

		return distance <= profile.EffectiveRadiusKm()
	}

	return CityMatches(req.City, profile.City)
}

// WantsChannel reports whether a profile has opted into the given channel and
// has the contact information it needs. In-app notifications have no opt-out.
func WantsChannel(profile *entity.Profile, channel entity.Channel) bool {
	switch channel {
	case entity.ChannelPush:
		return profile.PushNewRequest
	case entity.ChannelEmail:
		return profile.EmailNewRequest && profile.Email != ""
	case entity.ChannelSMS:
		return profile.SMSNewRequest && profile.PhoneNumber != ""
	case entity.ChannelInApp:
		return true
	default:
		return false
	}
}

// EligibleRecipients filters candidate profiles down to those that should be
// notified about the request on the given channel. Order of the input is
// preserved.
func EligibleRecipients(req *entity.FoodRequest, profiles []*entity.Profile, channel entity.Channel) []*entity.Profile {
	eligible := make([]*entity.Profile, 0, len(profiles))
	for _, profile := range profiles {
		if !IsEligible(req, profile) {
			continue
		}
		if !WantsChannel(profile, channel) {
			continue
		}

		eligible = append(eligible, profile)
	}

	return eligible
}
