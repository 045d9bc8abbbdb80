package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainInvoice "github.com/billforge/billforge/internal/domain/invoice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

type invoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		client: client,
		logger: logger,
	}
}

const invoiceColumns = `id, workspace_id, owner_id, subtotal, total_discount, total_tax,
	total_price, paid, due, invoice_status, metadata, version,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (:id, :workspace_id, :owner_id, :subtotal, :total_discount, :total_tax,
			:total_price, :paid, :due, :invoice_status, :metadata, :version,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		inv)
	if err != nil {
		r.logger.Errorw("failed to create invoice", "error", err, "invoice_id", inv.ID)
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	for _, item := range inv.LineItems {
		item.InvoiceID = inv.ID
		if _, err := q.NamedExecContext(ctx, `
			INSERT INTO invoice_line_items (id, invoice_id, description, quantity, unit_price,
				discount, tax, tenant_id, status, created_at, updated_at, created_by, updated_by)
			VALUES (:id, :invoice_id, :description, :quantity, :unit_price,
				:discount, :tax, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
			item); err != nil {
			r.logger.Errorw("failed to create invoice line item", "error", err, "invoice_id", inv.ID)
			return ierr.WithError(err).
				WithHint("Failed to create invoice line item").
				Mark(ierr.ErrDatabase)
		}
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	q := r.client.Querier(ctx)

	var inv domainInvoice.Invoice
	err := q.GetContext(ctx, &inv, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHint("Invoice not found").
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	var items []*domainInvoice.LineItem
	err = q.SelectContext(ctx, &items, `
		SELECT id, invoice_id, description, quantity, unit_price, discount, tax,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		FROM invoice_line_items
		WHERE invoice_id = $1 AND status != $2
		ORDER BY created_at ASC`,
		id, types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice line items").
			Mark(ierr.ErrDatabase)
	}
	inv.LineItems = items

	return &inv, nil
}

// Update persists the mutable ledger fields conditionally on the version the
// caller read. A lost race surfaces as ErrVersionConflict so the caller can
// re-read and retry.
func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE invoices
		SET paid = $1, due = $2, invoice_status = $3, metadata = $4,
			version = version + 1, updated_at = $5, updated_by = $6
		WHERE id = $7 AND tenant_id = $8 AND version = $9 AND status != $10`,
		inv.Paid, inv.Due, inv.InvoiceStatus, inv.Metadata,
		time.Now().UTC(), types.GetUserID(ctx),
		inv.ID, types.GetTenantID(ctx), inv.Version, types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update invoice", "error", err, "invoice_id", inv.ID)
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// Either the row vanished or another writer bumped the version.
		if _, getErr := r.Get(ctx, inv.ID); getErr != nil {
			return getErr
		}
		return ierr.NewError("invoice was modified concurrently").
			WithHint("Invoice was updated by another request, please retry").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"version":    inv.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	inv.Version++
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	query, args = applyInvoiceFilter(query, args, filter)
	query += ` ORDER BY created_at DESC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var invoices []*domainInvoice.Invoice
	if err := q.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	q := r.client.Querier(ctx)

	query := `SELECT COUNT(*) FROM invoices WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}
	query, args = applyInvoiceFilter(query, args, filter)

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func applyInvoiceFilter(query string, args []interface{}, filter *types.InvoiceFilter) (string, []interface{}) {
	if filter == nil {
		return query, args
	}
	if filter.WorkspaceID != nil {
		args = append(args, *filter.WorkspaceID)
		query += placeholderClause(" AND workspace_id = ", len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += placeholderClause(" AND owner_id = ", len(args))
	}
	if filter.InvoiceStatus != nil {
		args = append(args, *filter.InvoiceStatus)
		query += placeholderClause(" AND invoice_status = ", len(args))
	}
	return query, args
}
