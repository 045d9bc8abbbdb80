package service

import (
	"context"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// SweeperService demotes lapsed paid subscriptions back to the free tier.
// Sweep is single-flight: a run that starts while another is in progress
// returns immediately with Skipped set. A failed item never aborts the run;
// failures are collected per item and the sweep moves on.
type SweeperService interface {
	Sweep(ctx context.Context, now time.Time) (*dto.SweepResponse, error)
}

type sweeperService struct {
	ServiceParams
	mu sync.Mutex
}

func NewSweeperService(params ServiceParams) SweeperService {
	return &sweeperService{
		ServiceParams: params,
	}
}

func (s *sweeperService) Sweep(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	if !s.mu.TryLock() {
		s.Logger.Warnw("sweep already in progress, skipping run", "now", now)
		return &dto.SweepResponse{Skipped: true}, nil
	}
	defer s.mu.Unlock()

	now = now.UTC()
	batchSize := s.Config.Sweeper.BatchSize

	s.Logger.Infow("starting subscription expiry sweep", "now", now, "batch_size", batchSize)

	response := &dto.SweepResponse{
		Items: make([]dto.SweepResultItem, 0),
	}

	offset := 0
	for {
		filter := &types.SubscriptionFilter{
			QueryFilter: &types.QueryFilter{
				Limit:  lo.ToPtr(batchSize),
				Offset: lo.ToPtr(offset),
				Status: lo.ToPtr(types.StatusPublished),
			},
			PackageStatusNot: lo.ToPtr(types.PackageStatusFree),
			PeriodEndBefore:  &now,
		}

		subs, err := s.SubscriptionRepo.ListExpiring(ctx, filter)
		if err != nil {
			return response, err
		}
		if len(subs) == 0 {
			break
		}

		s.Logger.Infow("processing expiry batch", "batch_size", len(subs), "offset", offset)

		for _, sub := range subs {
			// Re-scope the context to the owning tenant so the demotion
			// writes under the right scope.
			itemCtx := context.WithValue(ctx, types.CtxTenantID, sub.TenantID)
			itemCtx = context.WithValue(itemCtx, types.CtxUserID, sub.CreatedBy)

			item := dto.SweepResultItem{
				SubscriptionID: sub.ID,
				OwnerID:        sub.OwnerID,
			}

			if err := s.expireSubscription(itemCtx, sub, now); err != nil {
				s.Logger.Errorw("failed to expire subscription",
					"subscription_id", sub.ID,
					"error", err)
				response.TotalFailed++
				item.Error = err.Error()
			} else {
				response.TotalSuccess++
				item.Success = true
			}

			response.TotalProcessed++
			response.Items = append(response.Items, item)
		}

		// Demoted records drop out of the selection; only the failures
		// stay matched, so skip exactly those on the next pass.
		offset = response.TotalFailed
		if len(subs) < batchSize {
			break
		}
	}

	s.Logger.Infow("finished subscription expiry sweep",
		"total_processed", response.TotalProcessed,
		"total_success", response.TotalSuccess,
		"total_failed", response.TotalFailed)

	return response, nil
}

// expireSubscription demotes one lapsed subscription. A version conflict
// means another writer touched the record mid-sweep; re-read once and
// re-check expiry before giving up.
func (s *sweeperService) expireSubscription(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if !sub.IsExpired(now) {
		// Raced with an activation that opened a fresh period.
		return nil
	}

	sub.Demote()
	err := s.SubscriptionRepo.Update(ctx, sub)
	if err == nil {
		s.publishExpired(ctx, sub)
		return nil
	}
	if !ierr.IsVersionConflict(err) {
		return err
	}

	fresh, getErr := s.SubscriptionRepo.Get(ctx, sub.ID)
	if getErr != nil {
		return getErr
	}
	if !fresh.IsExpired(now) {
		return nil
	}

	fresh.Demote()
	if err := s.SubscriptionRepo.Update(ctx, fresh); err != nil {
		return err
	}
	s.publishExpired(ctx, fresh)
	return nil
}

func (s *sweeperService) publishExpired(ctx context.Context, sub *subscription.Subscription) {
	if err := s.EventPublisher.Publish(ctx, publisher.TopicSubscriptionExpired, map[string]any{
		"subscription_id": sub.ID,
		"owner_id":        sub.OwnerID,
	}); err != nil {
		s.Logger.Warnw("failed to publish subscription expired event",
			"error", err,
			"subscription_id", sub.ID)
	}
}
