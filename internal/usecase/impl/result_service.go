package impl

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/matching"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const maxRecentNotes = 3

// resultService implements the ResultUsecase interface: it merges the raw
// recommendations on a request into per-restaurant groups, enriches them with
// place details, scores them, and pages the sorted view.
type resultService struct {
	requestRepo        repository.RequestRepository
	recommendationRepo repository.RecommendationRepository
	profileRepo        repository.ProfileRepository
	placeService       service.PlaceDetailsService
	logger             *slog.Logger
}

// ResultServiceParams holds dependencies for resultService, injected by Fx.
type ResultServiceParams struct {
	fx.In

	RequestRepo        repository.RequestRepository
	RecommendationRepo repository.RecommendationRepository
	ProfileRepo        repository.ProfileRepository
	PlaceService       service.PlaceDetailsService
	Logger             *slog.Logger
}

// NewResultService is the constructor for resultService.
func NewResultService(params ResultServiceParams) usecase.ResultUsecase {
	return &resultService{
		requestRepo:        params.RequestRepo,
		recommendationRepo: params.RecommendationRepo,
		profileRepo:        params.ProfileRepo,
		placeService:       params.PlaceService,
		logger:             params.Logger,
	}
}

func (srv *resultService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetRequestResults builds one page of the aggregated results view.
func (srv *resultService) GetRequestResults(ctx context.Context, requestID uuid.UUID, limit, offset int) (*usecase.RequestResultsOutput, error) {
	limit, offset = normalizePage(limit, offset)

	request, err := srv.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRequestNotFound, "request not found")
		}

		return nil, errors.Wrap(err, "failed to find request")
	}

	recommendations, err := srv.recommendationRepo.FindRecommendationsByRequest(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recommendations")
	}

	names, err := srv.recommenderNames(ctx, recommendations)
	if err != nil {
		return nil, err
	}

	groups := groupRecommendations(recommendations, names)
	srv.enrichGroups(ctx, request, groups)

	for _, group := range groups {
		group.Score = scoreGroup(group)
	}

	sortGroups(groups)

	total := len(groups)
	page := paginateGroups(groups, limit, offset)
	results := make([]*usecase.RestaurantResult, 0, len(page))
	for _, group := range page {
		results = append(results, &group.RestaurantResult)
	}

	return &usecase.RequestResultsOutput{
		RequestID: requestID,
		Total:     total,
		HasMore:   offset+len(page) < total,
		Results:   results,
	}, nil
}

// recommenderNames resolves recommender IDs to display names in one query.
func (srv *resultService) recommenderNames(ctx context.Context, recommendations []*entity.Recommendation) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(recommendations))
	seen := make(map[uuid.UUID]struct{}, len(recommendations))
	for _, rec := range recommendations {
		if _, ok := seen[rec.RecommenderID]; ok {
			continue
		}
		seen[rec.RecommenderID] = struct{}{}
		ids = append(ids, rec.RecommenderID)
	}

	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	profiles, err := srv.profileRepo.FindProfilesByUserIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recommender profiles")
	}

	names := make(map[uuid.UUID]string, len(profiles))
	for _, profile := range profiles {
		names[profile.UserID] = profile.DisplayName
	}

	return names, nil
}

// restaurantGroup is a RestaurantResult plus the working state the scorer needs.
type restaurantGroup struct {
	usecase.RestaurantResult

	key        string
	notesTotal int // All non-empty notes, not just the three kept for display.
}

// groupRecommendations merges recommendations that name the same restaurant.
// A shared place ID always groups; otherwise a slug of the typed name does,
// so "Joe's Tacos" and "joes tacos" land in one group. Input is expected
// newest first, which makes the kept notes the most recent ones.
func groupRecommendations(recommendations []*entity.Recommendation, names map[uuid.UUID]string) []*restaurantGroup {
	byKey := make(map[string]*restaurantGroup)
	order := make([]*restaurantGroup, 0)
	seenNames := make(map[string]map[string]struct{})

	for _, rec := range recommendations {
		key := groupKey(rec)

		group, ok := byKey[key]
		if !ok {
			group = &restaurantGroup{
				RestaurantResult: usecase.RestaurantResult{
					PlaceID:            rec.PlaceID,
					Name:               rec.RestaurantName,
					MapsURL:            rec.MapsURL,
					FirstRecommendedAt: rec.CreatedAt,
					LastRecommendedAt:  rec.CreatedAt,
				},
				key: key,
			}
			byKey[key] = group
			order = append(order, group)
			seenNames[key] = make(map[string]struct{})
		}

		group.Count++
		if rec.CreatedAt.Before(group.FirstRecommendedAt) {
			group.FirstRecommendedAt = rec.CreatedAt
		}
		if rec.CreatedAt.After(group.LastRecommendedAt) {
			group.LastRecommendedAt = rec.CreatedAt
		}
		if group.MapsURL == "" {
			group.MapsURL = rec.MapsURL
		}

		if note := strings.TrimSpace(rec.Notes); note != "" {
			group.notesTotal++
			if len(group.RecentNotes) < maxRecentNotes {
				group.RecentNotes = append(group.RecentNotes, truncateNote(note))
			}
		}

		if name := names[rec.RecommenderID]; name != "" {
			if _, dup := seenNames[key][name]; !dup {
				seenNames[key][name] = struct{}{}
				group.RecommenderNames = append(group.RecommenderNames, name)
			}
		}
	}

	return order
}

// groupKey picks the merge key for a recommendation: the place ID when one
// was attached, otherwise a slug of the restaurant name.
func groupKey(rec *entity.Recommendation) string {
	if rec.PlaceID != "" {
		return "place:" + rec.PlaceID
	}

	return "name:" + slugifyName(rec.RestaurantName)
}

// slugifyName lowercases a restaurant name, drops punctuation, and collapses
// whitespace runs to single hyphens, so "Joe's Tacos" and "Joes Tacos" merge
// into one group.
func slugifyName(name string) string {
	var b strings.Builder
	lastHyphen := true // Suppress a leading hyphen.

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// truncateNote caps a note for display.
func truncateNote(note string) string {
	if utf8.RuneCountInString(note) <= entity.MaxRecommendationNoteLength {
		return note
	}

	runes := []rune(note)

	return string(runes[:entity.MaxRecommendationNoteLength-3]) + "..."
}

// enrichGroups fills in place details for every group carrying a place ID.
// Enrichment is best-effort: a lookup failure leaves the group bare rather
// than failing the whole view.
func (srv *resultService) enrichGroups(ctx context.Context, request *entity.FoodRequest, groups []*restaurantGroup) {
	for _, group := range groups {
		if group.PlaceID == "" {
			continue
		}

		details, err := srv.placeService.GetPlaceDetails(ctx, group.PlaceID)
		if err != nil {
			srv.log(ctx).Warn("Place details lookup failed", slog.String("placeID", group.PlaceID), slog.Any("error", err))

			continue
		}
		if details == nil {
			continue
		}

		group.Rating = details.Rating
		group.UserRatings = details.UserRatings
		group.PriceLevel = details.PriceLevel
		if details.MapsURL != "" {
			group.MapsURL = details.MapsURL
		}
		if details.Name != "" {
			group.Name = details.Name
		}

		if request.HasCoordinates() && details.Latitude != nil && details.Longitude != nil {
			distance := matching.DistanceKm(*request.Latitude, *request.Longitude, *details.Latitude, *details.Longitude)
			group.DistanceKm = &distance
		}
	}
}

// scoreGroup ranks a restaurant group. Recommendation count dominates so the
// score is strictly monotonic in it; rating, review volume, recommender
// variety, and notes nudge within a count bucket; distance from the request
// location penalizes up to a cap.
func scoreGroup(group *restaurantGroup) float64 {
	score := 100 * float64(group.Count)
	score += 10 * group.Rating
	score += math.Min(float64(group.UserRatings), 1000) * 0.02
	score += 3 * float64(len(group.RecommenderNames))
	score += 2 * math.Min(float64(group.notesTotal), 10)

	if group.DistanceKm != nil {
		score -= math.Min(2**group.DistanceKm, 30)
	}

	return score
}

// sortGroups orders by score descending, breaking ties alphabetically so the
// view is stable across refreshes.
func sortGroups(groups []*restaurantGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Score != groups[j].Score {
			return groups[i].Score > groups[j].Score
		}

		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
}

func paginateGroups(groups []*restaurantGroup, limit, offset int) []*restaurantGroup {
	if offset >= len(groups) {
		return nil
	}

	end := offset + limit
	if end > len(groups) {
		end = len(groups)
	}

	return groups[offset:end]
}
