package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainSub "github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

type subscriptionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) domainSub.Repository {
	return &subscriptionRepository{
		client: client,
		logger: logger,
	}
}

const subscriptionColumns = `id, owner_id, package_status, subscription_status,
	current_period_start, current_period_end, version,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) Create(ctx context.Context, s *domainSub.Subscription) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (:id, :owner_id, :package_status, :subscription_status,
			:current_period_start, :current_period_end, :version,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		s)
	if err != nil {
		r.logger.Errorw("failed to create subscription", "error", err, "subscription_id", s.ID)
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSub.Subscription, error) {
	q := r.client.Querier(ctx)

	var s domainSub.Subscription
	err := q.GetContext(ctx, &s, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]any{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) GetByOwner(ctx context.Context, ownerID string) (*domainSub.Subscription, error) {
	q := r.client.Querier(ctx)

	var s domainSub.Subscription
	err := q.GetContext(ctx, &s, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE owner_id = $1 AND tenant_id = $2 AND status != $3`,
		ownerID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]any{
					"owner_id": ownerID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

// Update is conditional on the version the caller read. The sweeper and
// payment confirmation both write through here, so neither can clobber the
// other's change.
func (r *subscriptionRepository) Update(ctx context.Context, s *domainSub.Subscription) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE subscriptions
		SET package_status = $1, subscription_status = $2,
			current_period_start = $3, current_period_end = $4,
			version = version + 1, updated_at = $5, updated_by = $6
		WHERE id = $7 AND tenant_id = $8 AND version = $9 AND status != $10`,
		s.PackageStatus, s.SubscriptionStatus,
		s.CurrentPeriodStart, s.CurrentPeriodEnd,
		time.Now().UTC(), types.GetUserID(ctx),
		s.ID, types.GetTenantID(ctx), s.Version, types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update subscription", "error", err, "subscription_id", s.ID)
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, s.ID); getErr != nil {
			return getErr
		}
		return ierr.NewError("subscription was modified concurrently").
			WithHint("Subscription was updated by another request, please retry").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"version":         s.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	s.Version++
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*domainSub.Subscription, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}
	query, args = applySubscriptionFilter(query, args, filter)
	query += ` ORDER BY created_at ASC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var subs []*domainSub.Subscription
	if err := q.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

// ListExpiring runs tenant-wide: the sweep covers every tenant in one pass,
// so it intentionally does not scope by the context tenant.
func (r *subscriptionRepository) ListExpiring(ctx context.Context, filter *types.SubscriptionFilter) ([]*domainSub.Subscription, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status != $1`
	args := []interface{}{types.StatusDeleted}
	query, args = applySubscriptionFilter(query, args, filter)
	query += ` ORDER BY current_period_end ASC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var subs []*domainSub.Subscription
	if err := q.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expiring subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func applySubscriptionFilter(query string, args []interface{}, filter *types.SubscriptionFilter) (string, []interface{}) {
	if filter == nil {
		return query, args
	}
	if filter.PackageStatusNot != nil {
		args = append(args, *filter.PackageStatusNot)
		query += placeholderClause(" AND package_status != ", len(args))
	}
	if filter.PeriodEndBefore != nil {
		args = append(args, *filter.PeriodEndBefore)
		query += placeholderClause(" AND current_period_end IS NOT NULL AND current_period_end <= ", len(args))
	}
	return query, args
}
