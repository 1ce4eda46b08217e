package impl

import (
	"context"
	"testing"

	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type broadcastFixture struct {
	svc              usecase.BroadcastUsecase
	requestRepo      *fakeRequestRepo
	profileRepo      *fakeProfileRepo
	notificationRepo *fakeNotificationRepo
	publisher        *fakeEventPublisher
	stream           *fakeStreamPublisher
}

type fakeStreamPublisher struct {
	pings map[uuid.UUID][]*service.Ping
}

func (p *fakeStreamPublisher) PublishPing(userID uuid.UUID, ping *service.Ping) {
	if p.pings == nil {
		p.pings = make(map[uuid.UUID][]*service.Ping)
	}
	p.pings[userID] = append(p.pings[userID], ping)
}

func newBroadcastFixture() *broadcastFixture {
	f := &broadcastFixture{
		requestRepo:      &fakeRequestRepo{},
		profileRepo:      &fakeProfileRepo{},
		notificationRepo: &fakeNotificationRepo{},
		publisher:        &fakeEventPublisher{},
		stream:           &fakeStreamPublisher{},
	}
	txManager := &fakeTxManager{factory: &fakeRepoFactory{
		requestRepo:      f.requestRepo,
		notificationRepo: f.notificationRepo,
	}}
	f.svc = NewBroadcastService(BroadcastServiceParams{
		TxManager:       txManager,
		ProfileRepo:     f.profileRepo,
		EventPublisher:  f.publisher,
		StreamPublisher: f.stream,
		Logger:          testLogger(),
	})

	return f
}

func notifiableProfile(city string, lat, lng *float64) *entity.Profile {
	return &entity.Profile{
		UserID:            uuid.New(),
		DisplayName:       "Recommender",
		City:              city,
		Latitude:          lat,
		Longitude:         lng,
		NotifyRecommender: true,
	}
}

func coord(v float64) *float64 { return &v }

func TestBroadcastRequest_MatchesGeoAndCityFallback(t *testing.T) {
	f := newBroadcastFixture()

	request := openRequest(uuid.New())
	request.Latitude = coord(30.2672)
	request.Longitude = coord(-97.7431)
	request.ResponseWindowMinutes = 30
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }

	// About 4km north of the request: inside the default 20km radius.
	nearby := notifiableProfile("Austin", coord(30.3032), coord(-97.7431))
	nearby.Email = "nearby@example.com"
	nearby.PushNewRequest = true
	nearby.EmailNewRequest = true

	// About 85km away: outside the default radius even though the city matches.
	far := notifiableProfile("Austin", coord(31.0317), coord(-97.7431))
	far.PushNewRequest = true

	// No coordinates on file: the city substring fallback applies.
	austinByCity := notifiableProfile("austin", nil, nil)
	austinByCity.PhoneNumber = "+15125550100"
	austinByCity.SMSNewRequest = true

	dallasByCity := notifiableProfile("Dallas", nil, nil)
	dallasByCity.PushNewRequest = true

	paused := notifiableProfile("Austin", coord(30.3032), coord(-97.7431))
	paused.RecommenderPaused = true

	optedOut := notifiableProfile("Austin", coord(30.3032), coord(-97.7431))
	optedOut.NotifyRecommender = false

	requesterProfile := notifiableProfile("Austin", coord(30.2672), coord(-97.7431))
	requesterProfile.UserID = request.RequesterID

	f.profileRepo.profiles = []*entity.Profile{nearby, far, austinByCity, dallasByCity, paused, optedOut, requesterProfile}

	result, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalEligible)
	assert.Equal(t, 2, result.InAppCreated)
	assert.Equal(t, 1, result.PushTargets)
	assert.Equal(t, 1, result.EmailTargets)
	assert.Equal(t, 1, result.SMSTargets)

	require.Len(t, f.notificationRepo.recommender, 2)
	for _, n := range f.notificationRepo.recommender {
		assert.Equal(t, entity.NotificationTypeNearbyRequest, n.Type)
		assert.Equal(t, request.ID, n.RequestID)
		assert.Contains(t, n.Title, "tacos")
	}

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, request.ID.String(), event.RequestID)
	assert.Equal(t, []string{nearby.UserID.String()}, event.PushUserIDs)
	assert.Equal(t, []string{nearby.UserID.String()}, event.EmailUserIDs)
	assert.Equal(t, []string{austinByCity.UserID.String()}, event.SMSUserIDs)
}

func TestBroadcastRequest_RepeatIsIdempotent(t *testing.T) {
	f := newBroadcastFixture()

	request := openRequest(uuid.New())
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }

	recommender := notifiableProfile("Austin", nil, nil)
	recommender.PushNewRequest = true
	f.profileRepo.profiles = []*entity.Profile{recommender}

	first, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.InAppCreated)

	second, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	require.NoError(t, err)

	// The broadcast record is reused and no inbox rows are duplicated.
	assert.Equal(t, first.BroadcastID, second.BroadcastID)
	assert.Zero(t, second.InAppCreated)
	assert.Len(t, f.notificationRepo.broadcasts, 1)
	assert.Len(t, f.notificationRepo.recommender, 1)
}

func TestBroadcastRequest_ClosedRequest(t *testing.T) {
	f := newBroadcastFixture()

	request := openRequest(uuid.New())
	request.Status = entity.RequestStatusExpired
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }

	_, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	assert.ErrorIs(t, err, domainerrors.ErrRequestClosed)
	assert.Empty(t, f.publisher.events)
}

func TestBroadcastRequest_NoChannelTargetsSkipsPublish(t *testing.T) {
	f := newBroadcastFixture()

	request := openRequest(uuid.New())
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }

	// In-app only: no push, email, or SMS opt-ins.
	recommender := notifiableProfile("Austin", nil, nil)
	f.profileRepo.profiles = []*entity.Profile{recommender}

	result, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.InAppCreated)
	assert.Zero(t, result.PushTargets+result.EmailTargets+result.SMSTargets)
	assert.Empty(t, f.publisher.events)
}

func TestBroadcastRequest_LivePingsSkipDoNotDisturbAndDeferToWindowClose(t *testing.T) {
	f := newBroadcastFixture()

	request := openRequest(uuid.New())
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) { return request, nil }

	listening := notifiableProfile("Austin", nil, nil)
	quiet := notifiableProfile("Austin", nil, nil)
	quiet.DoNotDisturb = true
	f.profileRepo.profiles = []*entity.Profile{listening, quiet}

	result, err := f.svc.BroadcastRequest(context.Background(), request.ID)
	require.NoError(t, err)

	// Both still get the durable inbox entry; only the live ping is filtered.
	assert.Equal(t, 2, result.InAppCreated)

	require.Len(t, f.stream.pings[listening.UserID], 1)
	assert.Empty(t, f.stream.pings[quiet.UserID])

	ping := f.stream.pings[listening.UserID][0]
	assert.Equal(t, request.ID, ping.ID)
	assert.Equal(t, request.ExpiresAt, ping.ShowAt)
}

func TestBroadcastRequest_NotFound(t *testing.T) {
	f := newBroadcastFixture()
	f.requestRepo.findByID = func(uuid.UUID) (*entity.FoodRequest, error) {
		return nil, repository.ErrRequestNotFound
	}

	_, err := f.svc.BroadcastRequest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrRequestNotFound)
}
