package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domainCoupon "github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
	"github.com/lib/pq"
)

type couponRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewCouponRepository(client postgres.IClient, logger *logger.Logger) domainCoupon.Repository {
	return &couponRepository{
		client: client,
		logger: logger,
	}
}

const couponColumns = `id, code, type, discount, minimum_spend, maximum_spend,
	usage_limit, usage_per_user, used_count, is_active, expiry_date,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *couponRepository) Create(ctx context.Context, c *domainCoupon.Coupon) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO coupons (`+couponColumns+`)
		VALUES (:id, :code, :type, :discount, :minimum_spend, :maximum_spend,
			:usage_limit, :usage_per_user, :used_count, :is_active, :expiry_date,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		c)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ierr.WithError(err).
				WithHint("A coupon with this code already exists").
				WithReportableDetails(map[string]any{
					"code": c.Code,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		r.logger.Errorw("failed to create coupon", "error", err, "coupon_id", c.ID)
		return ierr.WithError(err).
			WithHint("Failed to create coupon").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *couponRepository) Get(ctx context.Context, id string) (*domainCoupon.Coupon, error) {
	return r.getOne(ctx, "id", id)
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domainCoupon.Coupon, error) {
	return r.getOne(ctx, "code", strings.TrimSpace(code))
}

func (r *couponRepository) getOne(ctx context.Context, column, value string) (*domainCoupon.Coupon, error) {
	q := r.client.Querier(ctx)

	var c domainCoupon.Coupon
	err := q.GetContext(ctx, &c, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE `+column+` = $1 AND tenant_id = $2 AND status != $3`,
		value, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("coupon not found").
				WithHint("Coupon not found").
				WithReportableDetails(map[string]any{
					column: value,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get coupon").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *couponRepository) Update(ctx context.Context, c *domainCoupon.Coupon) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE coupons
		SET type = $1, discount = $2, minimum_spend = $3, maximum_spend = $4,
			usage_limit = $5, usage_per_user = $6, is_active = $7, expiry_date = $8,
			updated_at = $9, updated_by = $10
		WHERE id = $11 AND tenant_id = $12 AND status != $13`,
		c.Type, c.Discount, c.MinimumSpend, c.MaximumSpend,
		c.UsageLimit, c.UsagePerUser, c.IsActive, c.ExpiryDate,
		time.Now().UTC(), types.GetUserID(ctx),
		c.ID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update coupon", "error", err, "coupon_id", c.ID)
		return ierr.WithError(err).
			WithHint("Failed to update coupon").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE coupons
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete coupon").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *couponRepository) List(ctx context.Context, filter *types.CouponFilter) ([]*domainCoupon.Coupon, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter != nil && filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += placeholderClause(" AND is_active = ", len(args))
	}
	if filter != nil && filter.Code != nil {
		args = append(args, *filter.Code)
		query += placeholderClause(" AND code = ", len(args))
	}
	query += ` ORDER BY created_at DESC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var coupons []*domainCoupon.Coupon
	if err := q.SelectContext(ctx, &coupons, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list coupons").
			Mark(ierr.ErrDatabase)
	}
	return coupons, nil
}

func (r *couponRepository) Count(ctx context.Context, filter *types.CouponFilter) (int, error) {
	q := r.client.Querier(ctx)

	query := `SELECT COUNT(*) FROM coupons WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter != nil && filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += placeholderClause(" AND is_active = ", len(args))
	}
	if filter != nil && filter.Code != nil {
		args = append(args, *filter.Code)
		query += placeholderClause(" AND code = ", len(args))
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count coupons").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// IncrementRedemptions bumps used_count atomically. The usage-limit guard is
// part of the statement so two concurrent redemptions cannot both land once
// the budget is down to one.
func (r *couponRepository) IncrementRedemptions(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = $1, updated_by = $2
		WHERE id = $3 AND tenant_id = $4 AND status != $5
			AND (usage_limit IS NULL OR used_count < usage_limit)`,
		time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to increment coupon redemptions", "error", err, "coupon_id", id)
		return ierr.WithError(err).
			WithHint("Failed to record coupon redemption").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record coupon redemption").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ierr.NewError("coupon usage limit reached").
			WithHint("Coupon has no redemptions remaining").
			WithReportableDetails(map[string]any{
				"coupon_id": id,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
