package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainReceipt "github.com/billforge/billforge/internal/domain/receipt"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

type receiptRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewReceiptRepository(client postgres.IClient, logger *logger.Logger) domainReceipt.Repository {
	return &receiptRepository{
		client: client,
		logger: logger,
	}
}

const receiptColumns = `id, number, invoice_id, amount, date, bank_account_id, reference,
	file_url, workspace_id, user_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *receiptRepository) Create(ctx context.Context, rcpt *domainReceipt.Receipt) error {
	q := r.client.Querier(ctx)

	_, err := q.NamedExecContext(ctx, `
		INSERT INTO receipts (`+receiptColumns+`)
		VALUES (:id, :number, :invoice_id, :amount, :date, :bank_account_id, :reference,
			:file_url, :workspace_id, :user_id,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		rcpt)
	if err != nil {
		r.logger.Errorw("failed to create receipt", "error", err, "receipt_id", rcpt.ID)
		return ierr.WithError(err).
			WithHint("Failed to create receipt").
			WithReportableDetails(map[string]any{
				"receipt_id": rcpt.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *receiptRepository) Get(ctx context.Context, id string) (*domainReceipt.Receipt, error) {
	q := r.client.Querier(ctx)

	var rcpt domainReceipt.Receipt
	err := q.GetContext(ctx, &rcpt, `
		SELECT `+receiptColumns+`
		FROM receipts
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("receipt not found").
				WithHint("Receipt not found").
				WithReportableDetails(map[string]any{
					"receipt_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get receipt").
			Mark(ierr.ErrDatabase)
	}
	return &rcpt, nil
}

func (r *receiptRepository) Update(ctx context.Context, rcpt *domainReceipt.Receipt) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE receipts
		SET amount = $1, date = $2, bank_account_id = $3, reference = $4, file_url = $5,
			updated_at = $6, updated_by = $7
		WHERE id = $8 AND tenant_id = $9 AND status != $10`,
		rcpt.Amount, rcpt.Date, rcpt.BankAccountID, rcpt.Reference, rcpt.FileURL,
		time.Now().UTC(), types.GetUserID(ctx),
		rcpt.ID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		r.logger.Errorw("failed to update receipt", "error", err, "receipt_id", rcpt.ID)
		return ierr.WithError(err).
			WithHint("Failed to update receipt").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *receiptRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)

	res, err := q.ExecContext(ctx, `
		UPDATE receipts
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete receipt").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *receiptRepository) List(ctx context.Context, filter *types.ReceiptFilter) ([]*domainReceipt.Receipt, error) {
	q := r.client.Querier(ctx)

	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	query, args = applyReceiptFilter(query, args, filter)
	query += ` ORDER BY date DESC, created_at DESC`
	query, args = applyPagination(query, args, filter.QueryFilter)

	var receipts []*domainReceipt.Receipt
	if err := q.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list receipts").
			Mark(ierr.ErrDatabase)
	}
	return receipts, nil
}

func (r *receiptRepository) Count(ctx context.Context, filter *types.ReceiptFilter) (int, error) {
	q := r.client.Querier(ctx)

	query := `SELECT COUNT(*) FROM receipts WHERE tenant_id = $1 AND status != $2`
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}
	query, args = applyReceiptFilter(query, args, filter)

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count receipts").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *receiptRepository) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	q := r.client.Querier(ctx)

	var sum decimal.Decimal
	err := q.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM receipts
		WHERE invoice_id = $1 AND tenant_id = $2 AND status != $3`,
		invoiceID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to sum receipts for invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return sum, nil
}

func applyReceiptFilter(query string, args []interface{}, filter *types.ReceiptFilter) (string, []interface{}) {
	if filter == nil {
		return query, args
	}
	if filter.WorkspaceID != nil {
		args = append(args, *filter.WorkspaceID)
		query += placeholderClause(" AND workspace_id = ", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += placeholderClause(" AND user_id = ", len(args))
	}
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		query += placeholderClause(" AND invoice_id = ", len(args))
	}
	return query, args
}
