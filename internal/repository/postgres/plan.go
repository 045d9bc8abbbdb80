package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainPlan "github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

type planRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewPlanRepository(client postgres.IClient, logger *logger.Logger) domainPlan.Repository {
	return &planRepository{
		client: client,
		logger: logger,
	}
}

const planColumns = `id, name, basic_price_month, basic_price_year,
	price_per_user_month, price_per_user_year,
	price_per_workspace_month, price_per_workspace_year,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *planRepository) Create(ctx context.Context, p *domainPlan.Plan) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES (:id, :name, :basic_price_month, :basic_price_year,
			:price_per_user_month, :price_per_user_year,
			:price_per_workspace_month, :price_per_workspace_year,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		p)
	if err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "plan_id", p.ID)
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*domainPlan.Plan, error) {
	q := r.client.Querier(ctx)

	var p domainPlan.Plan
	err := q.GetContext(ctx, &p, `
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHint("Plan not found").
				WithReportableDetails(map[string]any{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) Update(ctx context.Context, p *domainPlan.Plan) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE plans
		SET name = $1, basic_price_month = $2, basic_price_year = $3,
			price_per_user_month = $4, price_per_user_year = $5,
			price_per_workspace_month = $6, price_per_workspace_year = $7,
			updated_at = $8, updated_by = $9
		WHERE id = $10 AND tenant_id = $11 AND status != $12`,
		p.Name, p.BasicPriceMonth, p.BasicPriceYear,
		p.PricePerUserMonth, p.PricePerUserYear,
		p.PricePerWorkspaceMonth, p.PricePerWorkspaceYear,
		time.Now().UTC(), types.GetUserID(ctx),
		p.ID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update plan", "error", err, "plan_id", p.ID)
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("plan not found").
			WithHint("Plan not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE plans
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete plan").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("plan not found").
			WithHint("Plan not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *planRepository) List(ctx context.Context) ([]*domainPlan.Plan, error) {
	q := r.client.Querier(ctx)

	var plans []*domainPlan.Plan
	err := q.SelectContext(ctx, &plans, `
		SELECT `+planColumns+`
		FROM plans
		WHERE tenant_id = $1 AND status != $2
		ORDER BY created_at ASC`,
		types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
