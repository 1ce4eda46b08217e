package impl

import (
	"context"
	"log/slog"
	"time"

	"cravlr/internal/domain/entity"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"

	"github.com/google/uuid"
)

// The fakes below implement the repository and service interfaces with
// optional function fields. A nil field answers with the interface's
// not-found error or a zero value, so each test only wires the calls it
// cares about.

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// --- transaction manager ---

type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type fakeRepoFactory struct {
	userRepo           repository.UserRepository
	authRepo           repository.AuthRepository
	refreshTokenRepo   repository.RefreshTokenRepository
	profileRepo        repository.ProfileRepository
	requestRepo        repository.RequestRepository
	recommendationRepo repository.RecommendationRepository
	notificationRepo   repository.NotificationRepository
	referralRepo       repository.ReferralRepository
	businessRepo       repository.BusinessRepository
	reminderRepo       repository.ReminderRepository
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.userRepo }
func (f *fakeRepoFactory) AuthRepo() repository.AuthRepository { return f.authRepo }
func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.refreshTokenRepo
}
func (f *fakeRepoFactory) ProfileRepo() repository.ProfileRepository { return f.profileRepo }
func (f *fakeRepoFactory) RequestRepo() repository.RequestRepository { return f.requestRepo }
func (f *fakeRepoFactory) RecommendationRepo() repository.RecommendationRepository {
	return f.recommendationRepo
}
func (f *fakeRepoFactory) NotificationRepo() repository.NotificationRepository {
	return f.notificationRepo
}
func (f *fakeRepoFactory) ReferralRepo() repository.ReferralRepository { return f.referralRepo }
func (f *fakeRepoFactory) BusinessRepo() repository.BusinessRepository { return f.businessRepo }
func (f *fakeRepoFactory) ReminderRepo() repository.ReminderRepository { return f.reminderRepo }

// --- request repository ---

type fakeRequestRepo struct {
	findByID     func(id uuid.UUID) (*entity.FoodRequest, error)
	created      []*entity.FoodRequest
	statusChange func(id uuid.UUID, status entity.RequestStatus, closedAt *time.Time) error
	expireDue    func(now time.Time) (int64, error)
}

func (r *fakeRequestRepo) CreateRequest(_ context.Context, request *entity.FoodRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	r.created = append(r.created, request)

	return nil
}

func (r *fakeRequestRepo) FindRequestByID(_ context.Context, id uuid.UUID) (*entity.FoodRequest, error) {
	if r.findByID == nil {
		return nil, repository.ErrRequestNotFound
	}

	return r.findByID(id)
}

func (r *fakeRequestRepo) FindActiveRequests(_ context.Context, _, _ int) ([]*entity.FoodRequest, error) {
	return nil, nil
}

func (r *fakeRequestRepo) FindRequestsByRequester(_ context.Context, _ uuid.UUID, _, _ int) ([]*entity.FoodRequest, error) {
	return nil, nil
}

func (r *fakeRequestRepo) UpdateRequestStatus(_ context.Context, id uuid.UUID, status entity.RequestStatus, closedAt *time.Time) error {
	if r.statusChange == nil {
		return nil
	}

	return r.statusChange(id, status, closedAt)
}

func (r *fakeRequestRepo) ExpireDueRequests(_ context.Context, now time.Time) (int64, error) {
	if r.expireDue == nil {
		return 0, nil
	}

	return r.expireDue(now)
}

// --- recommendation repository ---

type fakeRecommendationRepo struct {
	findByID      func(id uuid.UUID) (*entity.Recommendation, error)
	findByRequest func(requestID uuid.UUID) ([]*entity.Recommendation, error)
	count         func(requestID uuid.UUID) (int64, error)
	createErr     error
	created       []*entity.Recommendation
	declines      []*entity.RequestDecline
	hasDeclined   bool
}

func (r *fakeRecommendationRepo) CreateRecommendation(_ context.Context, rec *entity.Recommendation) error {
	if r.createErr != nil {
		return r.createErr
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.created = append(r.created, rec)

	return nil
}

func (r *fakeRecommendationRepo) FindRecommendationByID(_ context.Context, id uuid.UUID) (*entity.Recommendation, error) {
	if r.findByID == nil {
		return nil, repository.ErrRecommendationNotFound
	}

	return r.findByID(id)
}

func (r *fakeRecommendationRepo) FindRecommendationsByRequest(_ context.Context, requestID uuid.UUID) ([]*entity.Recommendation, error) {
	if r.findByRequest == nil {
		return nil, nil
	}

	return r.findByRequest(requestID)
}

func (r *fakeRecommendationRepo) CountRecommendationsByRequest(_ context.Context, requestID uuid.UUID) (int64, error) {
	if r.count == nil {
		return int64(len(r.created)), nil
	}

	return r.count(requestID)
}

func (r *fakeRecommendationRepo) CreateDecline(_ context.Context, decline *entity.RequestDecline) error {
	r.declines = append(r.declines, decline)

	return nil
}

func (r *fakeRecommendationRepo) HasDeclined(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return r.hasDeclined, nil
}

// --- profile repository ---

type fakeProfileRepo struct {
	profiles []*entity.Profile
}

func (r *fakeProfileRepo) CreateProfile(_ context.Context, profile *entity.Profile) error {
	r.profiles = append(r.profiles, profile)

	return nil
}

func (r *fakeProfileRepo) FindProfileByUserID(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}

	return nil, repository.ErrProfileNotFound
}

func (r *fakeProfileRepo) FindProfilesByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error) {
	wanted := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	var found []*entity.Profile
	for _, profile := range r.profiles {
		if _, ok := wanted[profile.UserID]; ok {
			found = append(found, profile)
		}
	}

	return found, nil
}

func (r *fakeProfileRepo) FindNotifiableProfiles(_ context.Context) ([]*entity.Profile, error) {
	return r.profiles, nil
}

func (r *fakeProfileRepo) UpdateProfile(_ context.Context, _ *entity.Profile) error {
	return nil
}

// --- notification repository ---

type fakeNotificationRepo struct {
	notifications []*entity.Notification
	recommender   []*entity.RecommenderNotification
	broadcasts    []*entity.RequestBroadcast
	deliveries    []*entity.NotificationDelivery
	totalsSent    int
	totalsFailed  int

	// existingKeys simulates the (recommender, request, type) unique index
	// behind the upsert.
	existingKeys map[string]struct{}
}

func upsertKey(n *entity.RecommenderNotification) string {
	return n.RecommenderID.String() + "|" + n.RequestID.String() + "|" + n.Type
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *entity.Notification) error {
	r.notifications = append(r.notifications, n)

	return nil
}

func (r *fakeNotificationRepo) FindNotificationsByUser(_ context.Context, _ uuid.UUID, _, _ int) ([]*entity.Notification, error) {
	return r.notifications, nil
}

func (r *fakeNotificationRepo) CountUnreadByUser(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(r.notifications)), nil
}

func (r *fakeNotificationRepo) MarkNotificationRead(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (r *fakeNotificationRepo) UpsertRecommenderNotifications(_ context.Context, notifications []*entity.RecommenderNotification) (int64, error) {
	if r.existingKeys == nil {
		r.existingKeys = make(map[string]struct{})
	}

	var inserted int64
	for _, n := range notifications {
		key := upsertKey(n)
		if _, dup := r.existingKeys[key]; dup {
			continue
		}
		r.existingKeys[key] = struct{}{}
		r.recommender = append(r.recommender, n)
		inserted++
	}

	return inserted, nil
}

func (r *fakeNotificationRepo) FindRecommenderNotifications(_ context.Context, _ uuid.UUID, _, _ int) ([]*entity.RecommenderNotification, error) {
	return r.recommender, nil
}

func (r *fakeNotificationRepo) MarkRecommenderNotificationRead(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (r *fakeNotificationRepo) CreateBroadcast(_ context.Context, broadcast *entity.RequestBroadcast) error {
	if broadcast.ID == uuid.Nil {
		broadcast.ID = uuid.New()
	}
	r.broadcasts = append(r.broadcasts, broadcast)

	return nil
}

func (r *fakeNotificationRepo) FindBroadcastByRequest(_ context.Context, requestID uuid.UUID) (*entity.RequestBroadcast, error) {
	for _, broadcast := range r.broadcasts {
		if broadcast.RequestID == requestID {
			return broadcast, nil
		}
	}

	return nil, repository.ErrBroadcastNotFound
}

func (r *fakeNotificationRepo) UpdateBroadcastTotals(_ context.Context, _ uuid.UUID, totalSent, totalFailed int) error {
	r.totalsSent = totalSent
	r.totalsFailed = totalFailed

	return nil
}

func (r *fakeNotificationRepo) BatchCreateDeliveries(_ context.Context, deliveries []*entity.NotificationDelivery) error {
	r.deliveries = append(r.deliveries, deliveries...)

	return nil
}

// --- referral repository ---

type fakeReferralRepo struct {
	links       []*entity.ReferralLink
	clicks      []*entity.ReferralClick
	conversions []*entity.ReferralConversion
}

func (r *fakeReferralRepo) CreateLink(_ context.Context, link *entity.ReferralLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	r.links = append(r.links, link)

	return nil
}

func (r *fakeReferralRepo) FindLinkByCode(_ context.Context, code string) (*entity.ReferralLink, error) {
	for _, link := range r.links {
		if link.Code == code {
			return link, nil
		}
	}

	return nil, repository.ErrReferralLinkNotFound
}

func (r *fakeReferralRepo) FindLinkByRecommendation(_ context.Context, recommendationID uuid.UUID) (*entity.ReferralLink, error) {
	for _, link := range r.links {
		if link.RecommendationID == recommendationID {
			return link, nil
		}
	}

	return nil, repository.ErrReferralLinkNotFound
}

func (r *fakeReferralRepo) CreateClick(_ context.Context, click *entity.ReferralClick) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	r.clicks = append(r.clicks, click)

	return nil
}

func (r *fakeReferralRepo) FindClickByID(_ context.Context, id uuid.UUID) (*entity.ReferralClick, error) {
	for _, click := range r.clicks {
		if click.ID == id {
			return click, nil
		}
	}

	return nil, repository.ErrReferralClickNotFound
}

func (r *fakeReferralRepo) HasCountedClickSince(_ context.Context, linkID uuid.UUID, ipAddress string, since time.Time) (bool, error) {
	for _, click := range r.clicks {
		if click.LinkID == linkID && click.IPAddress == ipAddress && click.Counted && click.ClickedAt.After(since) {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeReferralRepo) CountClicksByIPSince(_ context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64
	for _, click := range r.clicks {
		if click.IPAddress == ipAddress && click.ClickedAt.After(since) {
			count++
		}
	}

	return count, nil
}

func (r *fakeReferralRepo) CreateConversion(_ context.Context, conversion *entity.ReferralConversion) error {
	for _, existing := range r.conversions {
		if existing.ClickID == conversion.ClickID {
			return repository.ErrConversionExists
		}
	}
	if conversion.ID == uuid.Nil {
		conversion.ID = uuid.New()
	}
	r.conversions = append(r.conversions, conversion)

	return nil
}

func (r *fakeReferralRepo) FindConversionsByBusiness(_ context.Context, businessID uuid.UUID, _, _ int) ([]*entity.ReferralConversion, error) {
	var found []*entity.ReferralConversion
	for _, conversion := range r.conversions {
		if conversion.BusinessID == businessID {
			found = append(found, conversion)
		}
	}

	return found, nil
}

func (r *fakeReferralRepo) SummarizeCommission(_ context.Context, businessID uuid.UUID) (*entity.CommissionSummary, error) {
	summary := &entity.CommissionSummary{BusinessID: businessID}
	for _, click := range r.clicks {
		if click.Counted {
			summary.TotalClicks++
		}
	}
	for _, conversion := range r.conversions {
		if conversion.BusinessID == businessID {
			summary.TotalConversions++
			summary.TotalCommission += conversion.CommissionAmount
		}
	}

	return summary, nil
}

// --- business repository ---

type fakeBusinessRepo struct {
	businesses []*entity.BusinessProfile
	claims     []*entity.BusinessClaim
}

func (r *fakeBusinessRepo) CreateClaim(_ context.Context, claim *entity.BusinessClaim) error {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	r.claims = append(r.claims, claim)

	return nil
}

func (r *fakeBusinessRepo) FindClaimByID(_ context.Context, id uuid.UUID) (*entity.BusinessClaim, error) {
	for _, claim := range r.claims {
		if claim.ID == id {
			return claim, nil
		}
	}

	return nil, repository.ErrClaimNotFound
}

func (r *fakeBusinessRepo) FindPendingClaimByClaimantAndPlace(_ context.Context, claimantID uuid.UUID, placeID string) (*entity.BusinessClaim, error) {
	for _, claim := range r.claims {
		if claim.ClaimantID == claimantID && claim.PlaceID == placeID && claim.Status == entity.ClaimStatusPending {
			return claim, nil
		}
	}

	return nil, repository.ErrClaimNotFound
}

func (r *fakeBusinessRepo) FindClaimsByStatus(_ context.Context, status entity.ClaimStatus, _, _ int) ([]*entity.BusinessClaim, error) {
	var found []*entity.BusinessClaim
	for _, claim := range r.claims {
		if claim.Status == status {
			found = append(found, claim)
		}
	}

	return found, nil
}

func (r *fakeBusinessRepo) UpdateClaim(_ context.Context, _ *entity.BusinessClaim) error {
	return nil
}

func (r *fakeBusinessRepo) CreateBusinessProfile(_ context.Context, business *entity.BusinessProfile) error {
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	r.businesses = append(r.businesses, business)

	return nil
}

func (r *fakeBusinessRepo) FindBusinessByID(_ context.Context, id uuid.UUID) (*entity.BusinessProfile, error) {
	for _, business := range r.businesses {
		if business.ID == id {
			return business, nil
		}
	}

	return nil, repository.ErrBusinessNotFound
}

func (r *fakeBusinessRepo) FindBusinessByOwner(_ context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error) {
	for _, business := range r.businesses {
		if business.OwnerID == ownerID {
			return business, nil
		}
	}

	return nil, repository.ErrBusinessNotFound
}

func (r *fakeBusinessRepo) UpdateBusinessProfile(_ context.Context, _ *entity.BusinessProfile) error {
	return nil
}

// --- reminder repository ---

type fakeReminderRepo struct {
	reminders []*entity.VisitReminder
	sentIDs   []uuid.UUID
}

func (r *fakeReminderRepo) CreateReminder(_ context.Context, reminder *entity.VisitReminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	r.reminders = append(r.reminders, reminder)

	return nil
}

func (r *fakeReminderRepo) FindDueReminders(_ context.Context, now time.Time, limit int) ([]*entity.VisitReminder, error) {
	var due []*entity.VisitReminder
	for _, reminder := range r.reminders {
		if !reminder.Sent && !reminder.ScheduledFor.After(now) && len(due) < limit {
			due = append(due, reminder)
		}
	}

	return due, nil
}

func (r *fakeReminderRepo) FindDueRemindersByUser(_ context.Context, userID uuid.UUID, now time.Time, limit int) ([]*entity.VisitReminder, error) {
	var due []*entity.VisitReminder
	for _, reminder := range r.reminders {
		if reminder.UserID == userID && !reminder.Sent && !reminder.ScheduledFor.After(now) && len(due) < limit {
			due = append(due, reminder)
		}
	}

	return due, nil
}

func (r *fakeReminderRepo) MarkRemindersSent(_ context.Context, ids []uuid.UUID) error {
	marked := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for _, reminder := range r.reminders {
		if _, ok := marked[reminder.ID]; ok {
			reminder.Sent = true
		}
	}
	r.sentIDs = append(r.sentIDs, ids...)

	return nil
}

// --- domain services ---

type fakePlaceService struct {
	details map[string]*service.PlaceDetails
	calls   int
}

func (s *fakePlaceService) GetPlaceDetails(_ context.Context, placeID string) (*service.PlaceDetails, error) {
	s.calls++
	if s.details == nil {
		return nil, nil
	}

	return s.details[placeID], nil
}

type fakeEventPublisher struct {
	events []*service.RequestBroadcastEvent
	err    error
}

func (p *fakeEventPublisher) PublishBroadcastEvent(_ context.Context, event *service.RequestBroadcastEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *fakeEventPublisher) Close() error { return nil }

type fakeQRService struct {
	lastURL string
}

func (s *fakeQRService) GenerateReferralQR(url string) ([]byte, error) {
	s.lastURL = url

	return []byte("png"), nil
}
