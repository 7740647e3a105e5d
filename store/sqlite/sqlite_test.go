package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/money"
	"github.com/dasunhq/idurar-erp-crm/store/sqlite"
	"github.com/dasunhq/idurar-erp-crm/taxes"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testInvoice(id string) *ledger.Invoice {
	now := time.Now().UTC()
	return &ledger.Invoice{
		ID:     id,
		Number: "3008264120001",
		Year:   2026,
		Items: []ledger.LineItem{
			{Name: "hosting", Quantity: money.MustParse("2"), Price: money.MustParse("50.00"), Total: money.MustParse("100.00")},
		},
		TaxRate:       money.Zero,
		SubTotal:      money.MustParse("100.00"),
		TaxTotal:      money.Zero,
		Total:         money.MustParse("100.00"),
		Discount:      money.Zero,
		Credit:        money.Zero,
		PaymentStatus: ledger.StatusUnpaid,
		Version:       1,
		Note:          "net 30",
		CreatedBy:     "admin-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testPayment(id, invoiceID string, amount string) *ledger.Payment {
	now := time.Now().UTC()
	return &ledger.Payment{
		ID: id,
		Invoice: ledger.InvoiceSnapshot{
			InvoiceID: invoiceID,
			Total:     money.MustParse("100.00"),
			Discount:  money.Zero,
			Credit:    money.MustParse(amount),
			Version:   2,
		},
		Amount:    money.MustParse(amount),
		Mode:      "wire",
		CreatedBy: "admin-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// INVOICE PERSISTENCE
// =============================================================================

func TestInvoice_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	want := testInvoice("inv-1")
	require.NoError(t, st.InsertInvoice(ctx, want))

	got, err := st.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)

	assert.Equal(t, want.Number, got.Number)
	assert.True(t, got.Total.Equal(want.Total), "total %s != %s", got.Total, want.Total)
	assert.True(t, got.SubTotal.Equal(want.SubTotal))
	assert.Equal(t, ledger.StatusUnpaid, got.PaymentStatus)
	assert.Equal(t, want.Note, got.Note)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "hosting", got.Items[0].Name)
	assert.True(t, got.Items[0].Total.Equal(money.MustParse("100.00")))
	assert.Empty(t, got.PaymentIDs)
}

func TestGetInvoice_Missing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetInvoice(context.Background(), "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUpdateInvoice_BumpsVersion(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	inv := testInvoice("inv-1")
	require.NoError(t, st.InsertInvoice(ctx, inv))

	inv.Note = "net 60"
	require.NoError(t, st.UpdateInvoice(ctx, inv))
	assert.Equal(t, int64(2), inv.Version, "version must be reflected back onto the document")

	got, err := st.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "net 60", got.Note)
	assert.Equal(t, int64(2), got.Version)
}

// =============================================================================
// PAYMENT DELTA - the compound invoice write
// =============================================================================

func TestApplyPaymentDelta_AttachAndDetach(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertInvoice(ctx, testInvoice("inv-1")))

	got, err := st.ApplyPaymentDelta(ctx, "inv-1", "pay-1",
		money.MustParse("40.00"), ledger.StatusPartially, ledger.AttachAdd)
	require.NoError(t, err)
	assert.True(t, got.Credit.Equal(money.MustParse("40.00")))
	assert.Equal(t, ledger.StatusPartially, got.PaymentStatus)
	assert.Equal(t, []string{"pay-1"}, got.PaymentIDs)
	assert.Equal(t, int64(2), got.Version)

	got, err = st.ApplyPaymentDelta(ctx, "inv-1", "pay-1",
		money.MustParse("-40.00"), ledger.StatusUnpaid, ledger.AttachRemove)
	require.NoError(t, err)
	assert.True(t, got.Credit.IsZero())
	assert.Equal(t, ledger.StatusUnpaid, got.PaymentStatus)
	assert.Empty(t, got.PaymentIDs)
	assert.Equal(t, int64(3), got.Version)
}

func TestApplyPaymentDelta_RefusesCeilingBreach(t *testing.T) {
	// The store is the last line of defense: even called directly, a
	// positive delta past total - discount must not commit.
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertInvoice(ctx, testInvoice("inv-1")))

	_, err := st.ApplyPaymentDelta(ctx, "inv-1", "pay-1",
		money.MustParse("100.01"), ledger.StatusPaid, ledger.AttachAdd)
	assert.ErrorIs(t, err, ledger.ErrOverpayment)

	got, err := st.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, got.Credit.IsZero(), "rejected delta must not leak into credit")
	assert.Empty(t, got.PaymentIDs)
}

func TestApplyPaymentDelta_ExactCeilingCommits(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertInvoice(ctx, testInvoice("inv-1")))

	got, err := st.ApplyPaymentDelta(ctx, "inv-1", "pay-1",
		money.MustParse("100.00"), ledger.StatusPaid, ledger.AttachAdd)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, got.PaymentStatus)
}

// =============================================================================
// PAYMENT PERSISTENCE
// =============================================================================

func TestPayment_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	want := testPayment("pay-1", "inv-1", "40.00")
	want.Date = time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	want.Number = "7"
	want.Ref = "wire-777"
	require.NoError(t, st.InsertPayment(ctx, want))

	got, err := st.GetPayment(ctx, "pay-1")
	require.NoError(t, err)

	assert.Equal(t, "inv-1", got.Invoice.InvoiceID)
	assert.True(t, got.Invoice.Total.Equal(money.MustParse("100.00")))
	assert.True(t, got.Invoice.Credit.Equal(money.MustParse("40.00")))
	assert.Equal(t, int64(2), got.Invoice.Version)
	assert.True(t, got.Amount.Equal(money.MustParse("40.00")))
	assert.Equal(t, "wire", got.Mode)
	assert.Equal(t, "wire-777", got.Ref)
	assert.True(t, got.Date.Equal(want.Date))
}

func TestSoftDeletePayment_HiddenFromReads(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertPayment(ctx, testPayment("pay-1", "inv-1", "40.00")))

	deleted, err := st.SoftDeletePayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, deleted.Removed)

	_, err = st.GetPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = st.SoftDeletePayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSoftDeleteInvoice_CascadesToPayments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertInvoice(ctx, testInvoice("inv-1")))
	require.NoError(t, st.InsertPayment(ctx, testPayment("pay-1", "inv-1", "40.00")))
	require.NoError(t, st.InsertPayment(ctx, testPayment("pay-2", "inv-1", "20.00")))

	deleted, err := st.SoftDeleteInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, deleted.Removed)

	_, err = st.GetInvoice(ctx, "inv-1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = st.GetPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = st.GetPayment(ctx, "pay-2")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// SEQUENCES
// =============================================================================

func TestNext_MonotonicPerKey(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := st.Next(ctx, ledger.SeqInvoice)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Independent keys do not share a counter.
	got, err := st.Next(ctx, ledger.SeqQuote)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

// =============================================================================
// TAXES
// =============================================================================

func TestSetDefaultTax_SingleDefault(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"tax-1", "tax-2", "tax-3"} {
		require.NoError(t, st.InsertTax(ctx, &taxes.Tax{
			ID: id, Name: id, Rate: money.MustParse("19"),
			IsDefault: id == "tax-1", Enabled: true,
			CreatedAt: now, UpdatedAt: now,
		}))
		now = now.Add(time.Millisecond)
	}

	require.NoError(t, st.SetDefaultTax(ctx, "tax-3"))

	all, err := st.ListTaxes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, tax := range all {
		assert.Equal(t, tax.ID == "tax-3", tax.IsDefault, "tax %s", tax.ID)
	}
}

func TestSetDefaultTax_Missing(t *testing.T) {
	st := newTestStore(t)
	err := st.SetDefaultTax(context.Background(), "nope")
	assert.ErrorIs(t, err, taxes.ErrNotFound)
}

// =============================================================================
// ENGINE OVER SQLITE - the two layers composed end to end
// =============================================================================

func TestEngineOverSQLite_StaleSnapshotAmendmentCommits(t *testing.T) {
	// An invoice edit between payment operations makes the payment's
	// snapshot lag the invoice row. The amendment validates against the
	// snapshot; the store must commit the matching delta instead of
	// second-guessing it against the fresher row, or the payment write
	// and the invoice write come apart.
	st := newTestStore(t)
	ctx := context.Background()
	e := ledger.NewEngine(st, st, zerolog.Nop())

	inv, err := e.CreateInvoice(ctx, ledger.CreateInvoiceInput{
		Items: []ledger.LineItem{
			{Name: "consulting", Quantity: money.MustParse("1"), Price: money.MustParse("100.00")},
		},
		TaxRate:  money.Zero,
		Discount: money.Zero,
	})
	require.NoError(t, err)

	p, err := e.CreatePayment(ctx, ledger.CreatePaymentInput{
		InvoiceID: inv.ID, Amount: money.MustParse("40.00"),
	})
	require.NoError(t, err)

	_, err = e.RecalcInvoice(ctx, ledger.RecalcInvoiceInput{
		InvoiceID: inv.ID,
		Items: []ledger.LineItem{
			{Name: "consulting", Quantity: money.MustParse("1"), Price: money.MustParse("100.00")},
		},
		TaxRate:  money.Zero,
		Discount: money.MustParse("20.00"),
	})
	require.NoError(t, err)

	// 85.00 passes the snapshot check (discount 0 there) even though the
	// invoice's net is now 80.00.
	updated, err := e.UpdatePayment(ctx, ledger.UpdatePaymentInput{
		PaymentID: p.ID, Amount: money.MustParse("85.00"),
	})
	require.NoError(t, err, "amendment accepted by the engine must commit")

	got, err := e.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Credit.Equal(money.MustParse("85.00")),
		"credit %s must reflect the amended amount", got.Credit)
	assert.True(t, updated.Amount.Equal(got.Credit),
		"payment amount and invoice credit must not diverge")
}

func TestEngineOverSQLite_PaymentLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := ledger.NewEngine(st, st, zerolog.Nop())

	inv, err := e.CreateInvoice(ctx, ledger.CreateInvoiceInput{
		Items: []ledger.LineItem{
			{Name: "consulting", Quantity: money.MustParse("1"), Price: money.MustParse("100.00")},
		},
		TaxRate:  money.Zero,
		Discount: money.Zero,
		ActorID:  "admin-1",
	})
	require.NoError(t, err)

	p, err := e.CreatePayment(ctx, ledger.CreatePaymentInput{
		InvoiceID: inv.ID, Amount: money.MustParse("40.00"),
	})
	require.NoError(t, err)

	_, err = e.UpdatePayment(ctx, ledger.UpdatePaymentInput{
		PaymentID: p.ID, Amount: money.MustParse("100.00"),
	})
	require.NoError(t, err)

	got, err := e.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, got.PaymentStatus)
	assert.True(t, got.Credit.Equal(money.MustParse("100.00")))

	_, err = e.DeletePayment(ctx, p.ID)
	require.NoError(t, err)

	got, err = e.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnpaid, got.PaymentStatus)
	assert.True(t, got.Credit.IsZero())
	assert.Empty(t, got.PaymentIDs)
}
