package service

import (
	"context"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/suite"
)

type SweeperServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SweeperService
}

func TestSweeperService(t *testing.T) {
	suite.Run(t, new(SweeperServiceSuite))
}

func (s *SweeperServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSweeperService(s.params(s.GetStores().SubscriptionRepo))
}

func (s *SweeperServiceSuite) params(subRepo subscription.Repository) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		EventPublisher:   s.GetPublisher(),
		InvoiceRepo:      stores.InvoiceRepo,
		ReceiptRepo:      stores.ReceiptRepo,
		CouponRepo:       stores.CouponRepo,
		ModulePriceRepo:  stores.ModulePriceRepo,
		PlanRepo:         stores.PlanRepo,
		SubscriptionRepo: subRepo,
	}
}

func (s *SweeperServiceSuite) createSubscription(ownerID string, pkg types.PackageStatus, periodEnd *time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		OwnerID:            ownerID,
		PackageStatus:      pkg,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodEnd:   periodEnd,
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	if periodEnd != nil {
		start := periodEnd.Add(-30 * 24 * time.Hour)
		sub.CurrentPeriodStart = &start
	}
	if pkg == types.PackageStatusFree {
		sub.SubscriptionStatus = types.SubscriptionStatusInactive
		sub.CurrentPeriodStart = nil
		sub.CurrentPeriodEnd = nil
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *SweeperServiceSuite) TestSweepDemotesLapsedSubscriptions() {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	lapsed := s.createSubscription("owner_lapsed", types.PackageStatusStarter, &past)
	current := s.createSubscription("owner_current", types.PackageStatusBusiness, &future)
	free := s.createSubscription("owner_free", types.PackageStatusFree, nil)

	resp, err := s.service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.False(resp.Skipped)
	s.Equal(1, resp.TotalProcessed)
	s.Equal(1, resp.TotalSuccess)
	s.Equal(0, resp.TotalFailed)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), lapsed.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusFree, stored.PackageStatus)
	s.Equal(types.SubscriptionStatusInactive, stored.SubscriptionStatus)
	s.Nil(stored.CurrentPeriodStart)
	s.Nil(stored.CurrentPeriodEnd)

	stored, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusBusiness, stored.PackageStatus)

	stored, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), free.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusFree, stored.PackageStatus)

	events := s.GetPublisher().EventsForTopic(publisher.TopicSubscriptionExpired)
	s.Len(events, 1)
}

func (s *SweeperServiceSuite) TestSweepIsIdempotent() {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	s.createSubscription("owner_1", types.PackageStatusStarter, &past)

	resp, err := s.service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.Equal(1, resp.TotalSuccess)

	// Demoted records no longer match the selection.
	resp, err = s.service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.Equal(0, resp.TotalProcessed)
}

func (s *SweeperServiceSuite) TestSweepIsolatesItemFailures() {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	broken := s.createSubscription("owner_broken", types.PackageStatusStarter, &past)
	healthy := s.createSubscription("owner_healthy", types.PackageStatusBusiness, &past)

	repo := &failingUpdateRepo{
		Repository: s.GetStores().SubscriptionRepo,
		failID:     broken.ID,
	}
	service := NewSweeperService(s.params(repo))

	resp, err := service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.Equal(2, resp.TotalProcessed)
	s.Equal(1, resp.TotalSuccess)
	s.Equal(1, resp.TotalFailed)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), healthy.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusFree, stored.PackageStatus)

	stored, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), broken.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusStarter, stored.PackageStatus)
}

func (s *SweeperServiceSuite) TestSweepSkipsFreshlyRenewedSubscription() {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	sub := s.createSubscription("owner_renewed", types.PackageStatusStarter, &past)

	// Another writer renews the subscription between listing and demotion:
	// the version conflict makes the sweeper re-read, and the fresh period
	// keeps it on the paid tier.
	repo := &renewOnUpdateRepo{
		Repository: s.GetStores().SubscriptionRepo,
		renewID:    sub.ID,
		renewedEnd: now.Add(30 * 24 * time.Hour),
		ctx:        s.GetContext(),
	}
	service := NewSweeperService(s.params(repo))

	resp, err := service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.Equal(1, resp.TotalProcessed)
	s.Equal(1, resp.TotalSuccess)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.PackageStatusStarter, stored.PackageStatus)
	s.NotNil(stored.CurrentPeriodEnd)
	s.True(stored.CurrentPeriodEnd.After(now))

	s.Empty(s.GetPublisher().EventsForTopic(publisher.TopicSubscriptionExpired))
}

func (s *SweeperServiceSuite) TestSweepSingleFlight() {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	s.createSubscription("owner_1", types.PackageStatusStarter, &past)

	entered := make(chan struct{})
	release := make(chan struct{})
	repo := &blockingListRepo{
		Repository: s.GetStores().SubscriptionRepo,
		entered:    entered,
		release:    release,
	}
	service := NewSweeperService(s.params(repo))

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := service.Sweep(s.GetContext(), now)
		s.NoError(err)
		s.False(resp.Skipped)
	}()

	<-entered

	resp, err := service.Sweep(s.GetContext(), now)
	s.NoError(err)
	s.True(resp.Skipped)
	s.Equal(0, resp.TotalProcessed)

	close(release)
	<-done
}

// failingUpdateRepo rejects updates for one subscription id.
type failingUpdateRepo struct {
	subscription.Repository
	failID string
}

func (r *failingUpdateRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub.ID == r.failID {
		return ierr.NewError("storage unavailable").
			WithHint("Could not update subscription").
			Mark(ierr.ErrDatabase)
	}
	return r.Repository.Update(ctx, sub)
}

// renewOnUpdateRepo simulates an activation racing the sweeper: the first
// update for the target id loses to a renewal that bumps the version and
// opens a fresh period.
type renewOnUpdateRepo struct {
	subscription.Repository
	renewID    string
	renewedEnd time.Time
	ctx        context.Context
	renewed    bool
}

func (r *renewOnUpdateRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub.ID == r.renewID && !r.renewed {
		r.renewed = true
		fresh, err := r.Repository.Get(r.ctx, r.renewID)
		if err != nil {
			return err
		}
		start := r.renewedEnd.Add(-30 * 24 * time.Hour)
		fresh.PackageStatus = types.PackageStatusStarter
		fresh.SubscriptionStatus = types.SubscriptionStatusActive
		fresh.CurrentPeriodStart = &start
		fresh.CurrentPeriodEnd = &r.renewedEnd
		if err := r.Repository.Update(r.ctx, fresh); err != nil {
			return err
		}
		return ierr.NewError("version conflict").
			WithHint("Subscription was modified concurrently").
			Mark(ierr.ErrVersionConflict)
	}
	return r.Repository.Update(ctx, sub)
}

// blockingListRepo parks the first ListExpiring call until released so a
// second sweep can observe the in-progress run.
type blockingListRepo struct {
	subscription.Repository
	entered chan struct{}
	release chan struct{}
	blocked bool
}

func (r *blockingListRepo) ListExpiring(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if !r.blocked {
		r.blocked = true
		close(r.entered)
		<-r.release
	}
	return r.Repository.ListExpiring(ctx, filter)
}
