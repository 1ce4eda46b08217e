package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"cravlr/internal/domain/entity"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResultService(
	requestRepo *fakeRequestRepo,
	recommendationRepo *fakeRecommendationRepo,
	profileRepo *fakeProfileRepo,
	placeService *fakePlaceService,
) usecase.ResultUsecase {
	return NewResultService(ResultServiceParams{
		RequestRepo:        requestRepo,
		RecommendationRepo: recommendationRepo,
		ProfileRepo:        profileRepo,
		PlaceService:       placeService,
		Logger:             testLogger(),
	})
}

func openRequest(requesterID uuid.UUID) *entity.FoodRequest {
	return &entity.FoodRequest{
		ID:                    uuid.New(),
		RequesterID:           requesterID,
		FoodType:              "tacos",
		City:                  "Austin",
		State:                 "TX",
		ResponseWindowMinutes: 60,
		Status:                entity.RequestStatusActive,
		ExpiresAt:             time.Now().Add(time.Hour),
	}
}

func TestSlugifyName(t *testing.T) {
	assert.Equal(t, "joes-tacos", slugifyName("Joe's Tacos"))
	assert.Equal(t, "joes-tacos", slugifyName("Joes Tacos"))
	assert.Equal(t, "joes-tacos", slugifyName("  JOE'S   TACOS!! "))
	assert.Equal(t, "taco-bell-2", slugifyName("Taco Bell #2"))
	assert.Equal(t, "", slugifyName("!!!"))
}

func TestTruncateNote(t *testing.T) {
	short := "best al pastor in town"
	assert.Equal(t, short, truncateNote(short))

	exact := strings.Repeat("a", entity.MaxRecommendationNoteLength)
	assert.Equal(t, exact, truncateNote(exact))

	long := strings.Repeat("b", entity.MaxRecommendationNoteLength+40)
	got := truncateNote(long)
	assert.Len(t, []rune(got), entity.MaxRecommendationNoteLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestGetRequestResults_GroupsByPlaceIDAndSlug(t *testing.T) {
	request := openRequest(uuid.New())
	alice := uuid.New()
	bob := uuid.New()
	cara := uuid.New()

	now := time.Now()
	recs := []*entity.Recommendation{
		// Same place ID groups even when the typed names differ.
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Veracruz All Natural", PlaceID: "place-1", Notes: "migas taco", CreatedAt: now},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: bob, RestaurantName: "veracruz", PlaceID: "place-1", CreatedAt: now.Add(-time.Minute)},
		// No place ID: the slug of the typed name merges these two.
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: bob, RestaurantName: "Joe's Tacos", Notes: "cash only", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: cara, RestaurantName: "joes  tacos!", CreatedAt: now.Add(-3 * time.Minute)},
	}

	requestRepo := &fakeRequestRepo{findByID: func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }}
	recommendationRepo := &fakeRecommendationRepo{findByRequest: func(uuid.UUID) ([]*entity.Recommendation, error) { return recs, nil }}
	profileRepo := &fakeProfileRepo{profiles: []*entity.Profile{
		{UserID: alice, DisplayName: "Alice"},
		{UserID: bob, DisplayName: "Bob"},
		{UserID: cara, DisplayName: "Cara"},
	}}

	svc := newResultService(requestRepo, recommendationRepo, profileRepo, &fakePlaceService{})

	output, err := svc.GetRequestResults(context.Background(), request.ID, 20, 0)
	require.NoError(t, err)
	require.Equal(t, 2, output.Total)
	require.Len(t, output.Results, 2)
	assert.False(t, output.HasMore)

	byName := make(map[string]*usecase.RestaurantResult, len(output.Results))
	for _, result := range output.Results {
		byName[result.Name] = result
	}

	veracruz, ok := byName["Veracruz All Natural"]
	require.True(t, ok, "place-grouped result keeps the first seen name")
	assert.Equal(t, 2, veracruz.Count)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, veracruz.RecommenderNames)
	assert.Equal(t, []string{"migas taco"}, veracruz.RecentNotes)
	assert.True(t, veracruz.FirstRecommendedAt.Before(veracruz.LastRecommendedAt))

	joes, ok := byName["Joe's Tacos"]
	require.True(t, ok)
	assert.Equal(t, 2, joes.Count)
	assert.ElementsMatch(t, []string{"Bob", "Cara"}, joes.RecommenderNames)
}

func TestGetRequestResults_ScoreMonotonicInCount(t *testing.T) {
	request := openRequest(uuid.New())
	alice := uuid.New()
	bob := uuid.New()

	// "Starred" has a stellar rating and review volume but only one
	// recommendation; "Plain" has two. Count must dominate.
	recs := []*entity.Recommendation{
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Starred", PlaceID: "starred", Notes: "amazing", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Plain", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: bob, RestaurantName: "plain", CreatedAt: time.Now()},
	}

	requestRepo := &fakeRequestRepo{findByID: func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }}
	recommendationRepo := &fakeRecommendationRepo{findByRequest: func(uuid.UUID) ([]*entity.Recommendation, error) { return recs, nil }}
	profileRepo := &fakeProfileRepo{profiles: []*entity.Profile{
		{UserID: alice, DisplayName: "Alice"},
		{UserID: bob, DisplayName: "Bob"},
	}}
	placeService := &fakePlaceService{details: map[string]*service.PlaceDetails{
		"starred": {PlaceID: "starred", Rating: 5.0, UserRatings: 5000},
	}}

	svc := newResultService(requestRepo, recommendationRepo, profileRepo, placeService)

	output, err := svc.GetRequestResults(context.Background(), request.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)
	assert.Equal(t, "Plain", output.Results[0].Name)
	assert.Greater(t, output.Results[0].Score, output.Results[1].Score)
}

func TestGetRequestResults_TiesBreakAlphabetically(t *testing.T) {
	request := openRequest(uuid.New())
	alice := uuid.New()

	recs := []*entity.Recommendation{
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Zebra Grill", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "alpha Diner", CreatedAt: time.Now()},
	}

	requestRepo := &fakeRequestRepo{findByID: func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }}
	recommendationRepo := &fakeRecommendationRepo{findByRequest: func(uuid.UUID) ([]*entity.Recommendation, error) { return recs, nil }}
	profileRepo := &fakeProfileRepo{profiles: []*entity.Profile{{UserID: alice, DisplayName: "Alice"}}}

	svc := newResultService(requestRepo, recommendationRepo, profileRepo, &fakePlaceService{})

	output, err := svc.GetRequestResults(context.Background(), request.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)
	assert.Equal(t, output.Results[0].Score, output.Results[1].Score)
	assert.Equal(t, "alpha Diner", output.Results[0].Name)
	assert.Equal(t, "Zebra Grill", output.Results[1].Name)
}

func TestGetRequestResults_Pagination(t *testing.T) {
	request := openRequest(uuid.New())
	alice := uuid.New()

	recs := []*entity.Recommendation{
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "First", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Second", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Third", CreatedAt: time.Now()},
	}

	requestRepo := &fakeRequestRepo{findByID: func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }}
	recommendationRepo := &fakeRecommendationRepo{findByRequest: func(uuid.UUID) ([]*entity.Recommendation, error) { return recs, nil }}
	profileRepo := &fakeProfileRepo{profiles: []*entity.Profile{{UserID: alice, DisplayName: "Alice"}}}

	svc := newResultService(requestRepo, recommendationRepo, profileRepo, &fakePlaceService{})

	page1, err := svc.GetRequestResults(context.Background(), request.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page1.Total)
	assert.Len(t, page1.Results, 2)
	assert.True(t, page1.HasMore)

	page2, err := svc.GetRequestResults(context.Background(), request.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Results, 1)
	assert.False(t, page2.HasMore)

	past, err := svc.GetRequestResults(context.Background(), request.ID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Results)
	assert.False(t, past.HasMore)
}

func TestGetRequestResults_EnrichmentIsBestEffort(t *testing.T) {
	lat := 30.2672
	lng := -97.7431
	request := openRequest(uuid.New())
	request.Latitude = &lat
	request.Longitude = &lng

	alice := uuid.New()
	recs := []*entity.Recommendation{
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Known Spot", PlaceID: "known", CreatedAt: time.Now()},
		{ID: uuid.New(), RequestID: request.ID, RecommenderID: alice, RestaurantName: "Unknown Spot", PlaceID: "unknown", CreatedAt: time.Now()},
	}

	placeLat := 30.3032
	placeLng := -97.7431
	requestRepo := &fakeRequestRepo{findByID: func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }}
	recommendationRepo := &fakeRecommendationRepo{findByRequest: func(uuid.UUID) ([]*entity.Recommendation, error) { return recs, nil }}
	profileRepo := &fakeProfileRepo{profiles: []*entity.Profile{{UserID: alice, DisplayName: "Alice"}}}
	placeService := &fakePlaceService{details: map[string]*service.PlaceDetails{
		"known": {PlaceID: "known", Name: "Known Spot (Official)", Rating: 4.5, UserRatings: 321, PriceLevel: 2, Latitude: &placeLat, Longitude: &placeLng},
	}}

	svc := newResultService(requestRepo, recommendationRepo, profileRepo, placeService)

	output, err := svc.GetRequestResults(context.Background(), request.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)
	assert.Equal(t, 2, placeService.calls)

	byPlace := make(map[string]*usecase.RestaurantResult, len(output.Results))
	for _, result := range output.Results {
		byPlace[result.PlaceID] = result
	}

	known := byPlace["known"]
	require.NotNil(t, known)
	assert.Equal(t, "Known Spot (Official)", known.Name)
	assert.InDelta(t, 4.5, known.Rating, 0.001)
	require.NotNil(t, known.DistanceKm)
	assert.InDelta(t, 4.0, *known.DistanceKm, 0.5)

	// Unknown upstream leaves the group bare instead of failing the view.
	unknown := byPlace["unknown"]
	require.NotNil(t, unknown)
	assert.Zero(t, unknown.Rating)
	assert.Nil(t, unknown.DistanceKm)
}
