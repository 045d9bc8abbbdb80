package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// SubscriptionService activates paid tiers after payment confirmation and
// exposes subscription reads. Demotion is the sweeper's job.
type SubscriptionService interface {
	ActivateSubscription(ctx context.Context, req *dto.ActivateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	GetSubscriptionByOwner(ctx context.Context, ownerID string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

// ActivateSubscription moves the owner onto a paid package and opens a new
// billing period starting now. An existing record is updated in place through
// the versioned write; a missing one is created.
func (s *subscriptionService) ActivateSubscription(ctx context.Context, req *dto.ActivateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodEnd := req.BillingPeriod.NextPeriodEnd(now)

	if req.CouponCode != nil {
		if err := s.commitCouponRedemption(ctx, *req.CouponCode); err != nil {
			return nil, err
		}
	}

	sub, err := s.SubscriptionRepo.GetByOwner(ctx, req.OwnerID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		sub = &subscription.Subscription{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			OwnerID:            req.OwnerID,
			PackageStatus:      req.PackageStatus,
			SubscriptionStatus: types.SubscriptionStatusActive,
			CurrentPeriodStart: &now,
			CurrentPeriodEnd:   &periodEnd,
			Version:            1,
			BaseModel:          types.GetDefaultBaseModel(ctx),
		}
		if err := sub.Validate(); err != nil {
			return nil, err
		}
		if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
			return nil, err
		}

		s.Logger.Infow("activated subscription",
			"subscription_id", sub.ID,
			"owner_id", sub.OwnerID,
			"package_status", sub.PackageStatus)
		return &dto.SubscriptionResponse{Subscription: sub}, nil
	}

	sub.PackageStatus = req.PackageStatus
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = &periodEnd
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("activated subscription",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"package_status", sub.PackageStatus)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// commitCouponRedemption burns one use of the quoted coupon as part of the
// confirmed charge. The increment is conditional on remaining budget.
func (s *subscriptionService) commitCouponRedemption(ctx context.Context, code string) error {
	c, err := s.CouponRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if !c.IsRedeemable(time.Now().UTC()) {
		return ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]any{
				"code": code,
			}).
			Mark(ierr.ErrNotFound)
	}
	return s.CouponRepo.IncrementRedemptions(ctx, c.ID)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscriptionByOwner(ctx context.Context, ownerID string) (*dto.SubscriptionResponse, error) {
	if ownerID == "" {
		return nil, ierr.NewError("owner id is required").
			WithHint("Please provide an owner id").
			Mark(ierr.ErrValidation)
	}
	sub, err := s.SubscriptionRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}
