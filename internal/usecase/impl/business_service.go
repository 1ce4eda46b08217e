package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "cravlr/internal/delivery/context"
	"cravlr/internal/domain/entity"
	domainerrors "cravlr/internal/domain/errors"
	"cravlr/internal/domain/repository"
	"cravlr/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultCommissionRate = 0.05

// businessService implements the BusinessUsecase interface.
type businessService struct {
	txManager    repository.TransactionManager
	businessRepo repository.BusinessRepository
	logger       *slog.Logger
}

// BusinessServiceParams holds dependencies for businessService, injected by Fx.
type BusinessServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	BusinessRepo repository.BusinessRepository
	Logger       *slog.Logger
}

// NewBusinessService is the constructor for businessService.
func NewBusinessService(params BusinessServiceParams) usecase.BusinessUsecase {
	return &businessService{
		txManager:    params.TxManager,
		businessRepo: params.BusinessRepo,
		logger:       params.Logger,
	}
}

func (srv *businessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitClaim opens an ownership claim on a restaurant. Resubmitting while a
// claim is pending returns the pending claim instead of duplicating it.
func (srv *businessService) SubmitClaim(ctx context.Context, claimantID uuid.UUID, input *usecase.SubmitClaimInput) (*entity.BusinessClaim, error) {
	srv.log(ctx).Info("Submitting business claim", slog.Any("claimantID", claimantID), slog.String("placeID", input.PlaceID))

	if input.PlaceID == "" || input.BusinessName == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "place id and business name are required")
	}

	existing, err := srv.businessRepo.FindPendingClaimByClaimantAndPlace(ctx, claimantID, input.PlaceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrClaimNotFound) {
		return nil, errors.Wrap(err, "failed to check pending claims")
	}

	claim := &entity.BusinessClaim{
		ClaimantID:   claimantID,
		PlaceID:      input.PlaceID,
		BusinessName: input.BusinessName,
		Evidence:     input.Evidence,
		Status:       entity.ClaimStatusPending,
	}
	if err := srv.businessRepo.CreateClaim(ctx, claim); err != nil {
		srv.log(ctx).Error("Failed to create business claim", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create business claim")
	}

	return claim, nil
}

// GetMyBusiness retrieves the business profile the caller manages.
func (srv *businessService) GetMyBusiness(ctx context.Context, ownerID uuid.UUID) (*entity.BusinessProfile, error) {
	business, err := srv.businessRepo.FindBusinessByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, errors.Wrap(domainerrors.ErrBusinessNotFound, "no business profile for this account")
		}

		return nil, errors.Wrap(err, "failed to find business profile")
	}

	return business, nil
}

// ListClaims pages through claims in a given state for admin review.
func (srv *businessService) ListClaims(ctx context.Context, status entity.ClaimStatus, limit, offset int) ([]*entity.BusinessClaim, error) {
	limit, offset = normalizePage(limit, offset)

	claims, err := srv.businessRepo.FindClaimsByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list claims")
	}

	return claims, nil
}

// ReviewClaim resolves a pending claim. Approval creates the business profile
// and grants the claimant the business role in the same transaction.
func (srv *businessService) ReviewClaim(ctx context.Context, reviewerID, claimID uuid.UUID, input *usecase.ReviewClaimInput) (*entity.BusinessClaim, error) {
	srv.log(ctx).Info("Reviewing business claim", slog.Any("claimID", claimID), slog.Bool("approve", input.Approve))

	var reviewed *entity.BusinessClaim
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		businessRepo := repoFactory.BusinessRepo()
		userRepo := repoFactory.UserRepo()

		claim, findErr := businessRepo.FindClaimByID(ctx, claimID)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrClaimNotFound) {
				return errors.Wrap(domainerrors.ErrClaimNotFound, "claim not found")
			}

			return errors.Wrap(findErr, "failed to find claim")
		}
		if claim.Status != entity.ClaimStatusPending {
			return errors.Wrap(domainerrors.ErrConflict, "claim already reviewed")
		}

		now := time.Now()
		claim.ReviewedBy = &reviewerID
		claim.ReviewedAt = &now
		claim.Status = entity.ClaimStatusRejected
		if input.Approve {
			claim.Status = entity.ClaimStatusApproved
		}

		if updateErr := businessRepo.UpdateClaim(ctx, claim); updateErr != nil {
			return errors.Wrap(updateErr, "failed to update claim")
		}

		if input.Approve {
			if approveErr := srv.approveClaim(ctx, businessRepo, userRepo, claim, input.CommissionRate); approveErr != nil {
				return approveErr
			}
		}

		reviewed = claim

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute claim review transaction", slog.Any("claimID", claimID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute claim review transaction")
	}

	return reviewed, nil
}

func (srv *businessService) approveClaim(
	ctx context.Context,
	businessRepo repository.BusinessRepository,
	userRepo repository.UserRepository,
	claim *entity.BusinessClaim,
	commissionRate float64,
) error {
	if commissionRate <= 0 {
		commissionRate = defaultCommissionRate
	}

	business := &entity.BusinessProfile{
		OwnerID:        claim.ClaimantID,
		PlaceID:        claim.PlaceID,
		Name:           claim.BusinessName,
		CommissionRate: commissionRate,
	}
	if err := businessRepo.CreateBusinessProfile(ctx, business); err != nil {
		return errors.Wrap(err, "failed to create business profile")
	}

	claimant, err := userRepo.FindUserByID(ctx, claim.ClaimantID)
	if err != nil {
		return errors.Wrap(err, "failed to find claimant")
	}
	if !claimant.Roles.Contains(entity.RoleBusiness) {
		claimant.Roles = append(claimant.Roles, entity.RoleBusiness)
		if err := userRepo.UpdateUser(ctx, claimant); err != nil {
			return errors.Wrap(err, "failed to grant business role")
		}
	}

	return nil
}
