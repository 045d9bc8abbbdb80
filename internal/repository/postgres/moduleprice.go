package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainModule "github.com/billforge/billforge/internal/domain/moduleprice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
	"github.com/jmoiron/sqlx"
)

type modulePriceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewModulePriceRepository(client postgres.IClient, logger *logger.Logger) domainModule.Repository {
	return &modulePriceRepository{
		client: client,
		logger: logger,
	}
}

const modulePriceColumns = `id, name, price_month, price_year, logo,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *modulePriceRepository) Create(ctx context.Context, m *domainModule.ModulePrice) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO module_prices (`+modulePriceColumns+`)
		VALUES (:id, :name, :price_month, :price_year, :logo,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		m)
	if err != nil {
		r.logger.Errorw("failed to create module price", "error", err, "module_id", m.ID)
		return ierr.WithError(err).
			WithHint("Failed to create module price").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *modulePriceRepository) Get(ctx context.Context, id string) (*domainModule.ModulePrice, error) {
	q := r.client.Querier(ctx)

	var m domainModule.ModulePrice
	err := q.GetContext(ctx, &m, `
		SELECT `+modulePriceColumns+`
		FROM module_prices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("module not found").
				WithHint("Module not found").
				WithReportableDetails(map[string]any{
					"module_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get module price").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

// GetBatch loads the requested modules and fails with ErrNotFound when any
// id is unknown, so an invalid selection aborts a quote instead of silently
// dropping a module.
func (r *modulePriceRepository) GetBatch(ctx context.Context, ids []string) ([]*domainModule.ModulePrice, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := r.client.Querier(ctx)

	query, args, err := sqlx.In(`
		SELECT `+modulePriceColumns+`
		FROM module_prices
		WHERE id IN (?) AND tenant_id = ? AND status != ?`,
		ids, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build module lookup").
			Mark(ierr.ErrDatabase)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var modules []*domainModule.ModulePrice
	if err := q.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load modules").
			Mark(ierr.ErrDatabase)
	}

	if len(modules) != len(ids) {
		found := make(map[string]struct{}, len(modules))
		for _, m := range modules {
			found[m.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, ierr.NewError("module not found").
					WithHint("One or more selected modules do not exist").
					WithReportableDetails(map[string]any{
						"module_id": id,
					}).
					Mark(ierr.ErrNotFound)
			}
		}
	}

	return modules, nil
}

func (r *modulePriceRepository) Update(ctx context.Context, m *domainModule.ModulePrice) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE module_prices
		SET name = $1, price_month = $2, price_year = $3, logo = $4,
			updated_at = $5, updated_by = $6
		WHERE id = $7 AND tenant_id = $8 AND status != $9`,
		m.Name, m.PriceMonth, m.PriceYear, m.Logo,
		time.Now().UTC(), types.GetUserID(ctx),
		m.ID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update module price", "error", err, "module_id", m.ID)
		return ierr.WithError(err).
			WithHint("Failed to update module price").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("module not found").
			WithHint("Module not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *modulePriceRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE module_prices
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete module price").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("module not found").
			WithHint("Module not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *modulePriceRepository) List(ctx context.Context, filter *types.ModulePriceFilter) ([]*domainModule.ModulePrice, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + modulePriceColumns + `
		FROM module_prices
		WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter != nil && filter.Name != nil {
		args = append(args, *filter.Name)
		query += placeholderClause(" AND name = ", len(args))
	}
	query += ` ORDER BY name ASC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var modules []*domainModule.ModulePrice
	if err := q.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list module prices").
			Mark(ierr.ErrDatabase)
	}
	return modules, nil
}

func (r *modulePriceRepository) Count(ctx context.Context, filter *types.ModulePriceFilter) (int, error) {
	q := r.client.Querier(ctx)

	query := `SELECT COUNT(*) FROM module_prices WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if filter != nil && filter.Name != nil {
		args = append(args, *filter.Name)
		query += placeholderClause(" AND name = ", len(args))
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count module prices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
