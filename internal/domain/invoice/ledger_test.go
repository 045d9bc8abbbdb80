package invoice

import (
	"testing"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name       string
		paid       decimal.Decimal
		totalPrice decimal.Decimal
		want       types.InvoiceStatus
	}{
		{"unpaid", dec(0), dec(1000), types.InvoiceStatusDraft},
		{"partially paid", dec(400), dec(1000), types.InvoiceStatusDraft},
		{"exactly paid", dec(1000), dec(1000), types.InvoiceStatusPaid},
		{"overpaid state still reads paid", dec(1200), dec(1000), types.InvoiceStatusPaid},
		{"zero total", dec(0), dec(0), types.InvoiceStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.paid, tt.totalPrice))
		})
	}
}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	// Invoice of 1000: 400 succeeds, then 600 completes it.
	app, err := ApplyPayment(dec(0), dec(1000), dec(1000), dec(400))
	require.NoError(t, err)
	assert.True(t, app.Paid.Equal(dec(400)))
	assert.True(t, app.Due.Equal(dec(600)))
	assert.Equal(t, types.InvoiceStatusDraft, app.Status)

	app, err = ApplyPayment(app.Paid, app.Due, dec(1000), dec(600))
	require.NoError(t, err)
	assert.True(t, app.Paid.Equal(dec(1000)))
	assert.True(t, app.Due.IsZero())
	assert.Equal(t, types.InvoiceStatusPaid, app.Status)
}

func TestApplyPayment_ExceedsRemainingBalance(t *testing.T) {
	// After a 400 payment on a 1000 invoice, 700 must be rejected citing 600.
	_, err := ApplyPayment(dec(400), dec(600), dec(1000), dec(700))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.Contains(t, err.Error(), "exceeds")
}

func TestApplyPayment_AlreadyFullyPaid(t *testing.T) {
	_, err := ApplyPayment(dec(1000), dec(0), dec(1000), dec(1))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))

	// Rejected regardless of amount.
	_, err = ApplyPayment(dec(1000), dec(0), dec(1000), dec(1000000))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
}

func TestApplyPayment_InvalidAmount(t *testing.T) {
	_, err := ApplyPayment(dec(0), dec(1000), dec(1000), dec(0))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = ApplyPayment(dec(0), dec(1000), dec(1000), dec(-50))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestApplyPayment_PreservesInvariant(t *testing.T) {
	total := dec(1000)
	paid, due := dec(0), total

	for _, amount := range []int64{100, 250, 400, 250} {
		app, err := ApplyPayment(paid, due, total, dec(amount))
		require.NoError(t, err)
		assert.True(t, app.Paid.Add(app.Due).Equal(total), "paid + due must equal total price")
		paid, due = app.Paid, app.Due
	}

	assert.Equal(t, types.InvoiceStatusPaid, ComputeStatus(paid, total))
}

func TestInvoiceValidate(t *testing.T) {
	inv := &Invoice{
		ID:            "inv_1",
		TotalPrice:    dec(100),
		Paid:          dec(40),
		Due:           dec(60),
		InvoiceStatus: types.InvoiceStatusDraft,
	}
	require.NoError(t, inv.Validate())

	inv.Due = dec(70)
	err := inv.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestComputeTotals(t *testing.T) {
	items := []*LineItem{
		{Quantity: dec(2), UnitPrice: dec(50), Discount: dec(10), Tax: dec(5)},
		{Quantity: dec(1), UnitPrice: dec(200), Tax: dec(20)},
	}

	subtotal, discount, tax, total := ComputeTotals(items)
	assert.True(t, subtotal.Equal(dec(300)))
	assert.True(t, discount.Equal(dec(10)))
	assert.True(t, tax.Equal(dec(25)))
	assert.True(t, total.Equal(dec(315)))
}
