package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/config"
	customerdomain "github.com/vyapardesk/vyapardesk/internal/customer/domain"
	customerrepo "github.com/vyapardesk/vyapardesk/internal/customer/repository"
	customersvc "github.com/vyapardesk/vyapardesk/internal/customer/service"
	"github.com/vyapardesk/vyapardesk/internal/gst"
	"github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/internal/invoice/pricing"
	"github.com/vyapardesk/vyapardesk/internal/invoice/repository"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	invoices  domain.Service
	customers customerdomain.Service
	ctx       context.Context
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.Installment{},
	))
	require.NoError(t, db.Exec(
		`CREATE TABLE IF NOT EXISTS document_sequences (
			org_id INTEGER NOT NULL,
			doc_type TEXT NOT NULL,
			next_number INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (org_id, doc_type)
		)`,
	).Error)
	t.Cleanup(func() {
		for _, table := range []string{"installments", "invoice_items", "invoices", "document_sequences", "customers"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 11, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	customers := customersvc.New(customersvc.Params{
		DB:    db,
		Log:   log,
		Clock: fake,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})

	invoices := New(Params{
		DB:        db,
		Log:       log,
		Clock:     fake,
		GenID:     node,
		Repo:      repository.Provide(),
		Customers: customers,
		Finance: config.NewStaticFinanceConfigHolder(config.FinanceConfig{
			HomeState:           "Gujarat",
			DefaultSlabPercent:  18,
			MinMonthlyAmount:    100,
			MaxInstallmentCount: 60,
		}),
	})

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return fixture{invoices: invoices, customers: customers, ctx: ctx}
}

func (f fixture) newCustomer(t *testing.T, name, state string) customerdomain.Customer {
	t.Helper()
	customer, err := f.customers.Create(f.ctx, customerdomain.CreateCustomerRequest{
		Name:  name,
		State: state,
	})
	require.NoError(t, err)
	return customer
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateInvoiceIntraState(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Sharma Traders", "Gujarat")

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Ceiling Fan", Quantity: dec("2"), UnitRate: dec("1000"), SlabPercent: 18},
			{Name: "Extension Cord", Quantity: dec("1"), UnitRate: dec("500"), SlabPercent: 5},
		},
		PaymentPlan: "PENDING",
	})
	require.NoError(t, err)

	invoice := detail.Invoice
	assert.Equal(t, "VD-INV-1", invoice.InvoiceNumber)
	assert.Equal(t, "Sharma Traders", invoice.CustomerName)
	assert.True(t, invoice.Subtotal.Equal(dec("2500")))
	assert.True(t, invoice.TaxAmount.Equal(dec("385")))
	assert.True(t, invoice.CGSTAmount.Equal(dec("192.50")))
	assert.True(t, invoice.SGSTAmount.Equal(dec("192.50")))
	assert.True(t, invoice.IGSTAmount.IsZero())
	assert.True(t, invoice.GrandTotal.Equal(dec("2885")))
	assert.True(t, invoice.RemainingBalance.Equal(dec("2885")))
	require.Len(t, detail.Items, 2)
	assert.True(t, detail.Items[0].TotalAmount.Equal(dec("2360")))
	assert.Empty(t, detail.Installments)

	second, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:  customer.ID.String(),
		Items:       []domain.ItemInput{{Name: "Bulb", Quantity: dec("1"), UnitRate: dec("100"), SlabPercent: 12}},
		PaymentPlan: "PAID",
	})
	require.NoError(t, err)
	assert.Equal(t, "VD-INV-2", second.Invoice.InvoiceNumber)
	assert.True(t, second.Invoice.RemainingBalance.IsZero())
	assert.True(t, second.Invoice.DownPayment.Equal(second.Invoice.GrandTotal))
}

func TestCreateInvoiceInterState(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Mumbai Mart", "Maharashtra")

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Mixer", Quantity: dec("1"), UnitRate: dec("1000"), SlabPercent: 18},
		},
	})
	require.NoError(t, err)

	assert.True(t, detail.Invoice.IGSTAmount.Equal(dec("180")))
	assert.True(t, detail.Invoice.CGSTAmount.IsZero())
	assert.True(t, detail.Invoice.SGSTAmount.IsZero())
	assert.Equal(t, pricing.PlanPending, detail.Invoice.PaymentPlan)
}

func TestCreateInvoiceEMISchedule(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Patel Electronics", "Gujarat")

	monthly := dec("4000")
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		TaxEnabled: boolPtr(false),
		Items: []domain.ItemInput{
			{Name: "Refrigerator", Quantity: dec("1"), UnitRate: dec("10000"), SlabPercent: 18},
		},
		PaymentPlan:   "EMI",
		DownPayment:   dec("1000"),
		MonthlyAmount: &monthly,
		EMIStartDate:  &start,
	})
	require.NoError(t, err)

	invoice := detail.Invoice
	assert.True(t, invoice.GrandTotal.Equal(dec("10000")))
	assert.True(t, invoice.RemainingBalance.Equal(dec("9000")))
	assert.Equal(t, int64(3), invoice.InstallmentCount)

	require.Len(t, detail.Installments, 3)
	assert.True(t, detail.Installments[0].Amount.Equal(dec("4000")))
	assert.True(t, detail.Installments[1].Amount.Equal(dec("4000")))
	assert.True(t, detail.Installments[2].Amount.Equal(dec("1000")))
	assert.Equal(t, start, detail.Installments[0].DueDate.UTC())
	assert.Equal(t, start.AddDate(0, 2, 0), detail.Installments[2].DueDate.UTC())

	loaded, err := f.invoices.GetByID(f.ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	require.Len(t, loaded.Installments, 3)
	assert.False(t, loaded.Installments[0].Paid)
}

func TestCreateInvoiceRecomputesUndersizedCount(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Patel Electronics", "Gujarat")

	monthly := dec("3000")
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		TaxEnabled: boolPtr(false),
		Items: []domain.ItemInput{
			{Name: "Washing machine", Quantity: dec("1"), UnitRate: dec("10000"), SlabPercent: 18},
		},
		PaymentPlan:      "EMI",
		DownPayment:      dec("1000"),
		MonthlyAmount:    &monthly,
		EMIStartDate:     &start,
		InstallmentCount: 2,
	})
	require.NoError(t, err)

	// Two installments of 3000 cannot cover the 9000 balance; the count
	// is re-derived so no installment exceeds the monthly amount.
	require.Len(t, detail.Installments, 3)
	assert.True(t, detail.Installments[0].Amount.Equal(dec("3000")))
	assert.True(t, detail.Installments[1].Amount.Equal(dec("3000")))
	assert.True(t, detail.Installments[2].Amount.Equal(dec("3000")))
	assert.Equal(t, int64(3), detail.Invoice.InstallmentCount)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Test", "Gujarat")
	id := customer.ID.String()
	item := domain.ItemInput{Name: "X", Quantity: dec("1"), UnitRate: dec("100"), SlabPercent: 18}

	_, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{CustomerID: id})
	assert.ErrorIs(t, err, domain.ErrInvalidItems)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: id,
		Items:      []domain.ItemInput{{Name: "X", Quantity: dec("1"), UnitRate: dec("100"), SlabPercent: 7}},
	})
	assert.ErrorIs(t, err, gst.ErrInvalidSlab)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:  id,
		Items:       []domain.ItemInput{item},
		DownPayment: dec("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDownPayment)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:  id,
		Items:       []domain.ItemInput{item},
		PaymentPlan: "LAYAWAY",
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidPaymentPlan)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:  id,
		Items:       []domain.ItemInput{item},
		PaymentPlan: "EMI",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMonthlyAmount)

	low := dec("50")
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:    id,
		Items:         []domain.ItemInput{item},
		PaymentPlan:   "EMI",
		MonthlyAmount: &low,
		EMIStartDate:  &start,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMonthlyAmount)

	monthly := dec("100")
	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:    id,
		Items:         []domain.ItemInput{item},
		PaymentPlan:   "EMI",
		MonthlyAmount: &monthly,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEMIStart)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID:       id,
		Items:            []domain.ItemInput{item},
		PaymentPlan:      "EMI",
		MonthlyAmount:    &monthly,
		EMIStartDate:     &start,
		InstallmentCount: 120,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInstallmentCount)

	_, err = f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		Items: []domain.ItemInput{item},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = f.invoices.Create(context.Background(), domain.CreateInvoiceRequest{
		CustomerID: id,
		Items:      []domain.ItemInput{item},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestBulkOverrideIgnoresItems(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Bulk Buyer", "Gujarat")

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Assorted Stock", Quantity: dec("10"), UnitRate: dec("99"), SlabPercent: 18},
		},
		Bulk: &domain.BulkInput{TotalPrice: dec("1180"), SlabPercent: 18, TaxInclusive: true},
	})
	require.NoError(t, err)

	invoice := detail.Invoice
	assert.True(t, invoice.Subtotal.Equal(dec("1000")))
	assert.True(t, invoice.TaxAmount.Equal(dec("180")))
	assert.True(t, invoice.GrandTotal.Equal(dec("1180")))
	require.NotNil(t, invoice.BulkPrice)
	assert.True(t, invoice.BulkPrice.Equal(dec("1180")))
	assert.True(t, invoice.BulkTaxInclusive)
	require.Len(t, detail.Items, 1)
}

func TestPreviewMatchesCreate(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Preview Co", "Gujarat")

	items := []domain.ItemInput{
		{Name: "Heater", Quantity: dec("1"), UnitRate: dec("2360"), SlabPercent: 18, TaxInclusive: true},
	}

	preview, err := f.invoices.Preview(f.ctx, domain.PreviewInvoiceRequest{
		CustomerState: "Gujarat",
		Items:         items,
	})
	require.NoError(t, err)
	assert.True(t, preview.Totals.Subtotal.Equal(dec("2000")))
	assert.True(t, preview.Totals.Tax.Equal(dec("360")))
	assert.True(t, preview.Totals.Grand.Equal(dec("2360")))

	list, err := f.invoices.List(f.ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Invoices)

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items:      items,
	})
	require.NoError(t, err)
	assert.True(t, detail.Invoice.GrandTotal.Equal(preview.Totals.Grand))
	assert.True(t, detail.Invoice.Subtotal.Equal(preview.Totals.Subtotal))
}

func TestMarkInstallmentPaid(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "EMI Buyer", "Gujarat")

	monthly := dec("3000")
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		TaxEnabled: boolPtr(false),
		Items: []domain.ItemInput{
			{Name: "Television", Quantity: dec("1"), UnitRate: dec("10000"), SlabPercent: 0},
		},
		PaymentPlan:   "EMI",
		DownPayment:   dec("1000"),
		MonthlyAmount: &monthly,
		EMIStartDate:  &start,
	})
	require.NoError(t, err)
	require.Len(t, detail.Installments, 3)

	id := detail.Invoice.ID.String()

	paid, err := f.invoices.MarkInstallmentPaid(f.ctx, domain.MarkInstallmentPaidRequest{InvoiceID: id, Number: 1})
	require.NoError(t, err)
	assert.True(t, paid.Invoice.RemainingBalance.Equal(dec("6000")))
	assert.True(t, paid.Installments[0].Paid)
	require.NotNil(t, paid.Installments[0].PaidAt)
	assert.False(t, paid.Installments[1].Paid)

	_, err = f.invoices.MarkInstallmentPaid(f.ctx, domain.MarkInstallmentPaidRequest{InvoiceID: id, Number: 1})
	assert.ErrorIs(t, err, domain.ErrInstallmentAlreadyPaid)

	_, err = f.invoices.MarkInstallmentPaid(f.ctx, domain.MarkInstallmentPaidRequest{InvoiceID: id, Number: 9})
	assert.ErrorIs(t, err, domain.ErrInstallmentNotFound)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Revise Co", "Gujarat")

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Pipe", Quantity: dec("1"), UnitRate: dec("1000"), SlabPercent: 18},
		},
	})
	require.NoError(t, err)
	number := detail.Invoice.InvoiceNumber

	updated, err := f.invoices.Update(f.ctx, domain.UpdateInvoiceRequest{
		ID: detail.Invoice.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Pipe", Quantity: dec("2"), UnitRate: dec("1000"), SlabPercent: 18},
			{Name: "Fittings", Quantity: dec("1"), UnitRate: dec("500"), SlabPercent: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, number, updated.Invoice.InvoiceNumber)
	assert.True(t, updated.Invoice.Subtotal.Equal(dec("2500")))
	assert.True(t, updated.Invoice.GrandTotal.Equal(dec("2885")))
	require.Len(t, updated.Items, 2)

	loaded, err := f.invoices.GetByID(f.ctx, domain.GetInvoiceRequest{ID: detail.Invoice.ID.String()})
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
}

func TestDeleteInvoice(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "Gone Co", "Gujarat")

	detail, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.ItemInput{
			{Name: "Wire", Quantity: dec("1"), UnitRate: dec("250"), SlabPercent: 18},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.invoices.Delete(f.ctx, domain.DeleteInvoiceRequest{ID: detail.Invoice.ID.String()}))
	_, err = f.invoices.GetByID(f.ctx, domain.GetInvoiceRequest{ID: detail.Invoice.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersByPlan(t *testing.T) {
	f := setup(t)
	customer := f.newCustomer(t, "List Co", "Gujarat")

	for _, plan := range []string{"PAID", "PENDING", "PENDING"} {
		_, err := f.invoices.Create(f.ctx, domain.CreateInvoiceRequest{
			CustomerID:  customer.ID.String(),
			Items:       []domain.ItemInput{{Name: "Item", Quantity: dec("1"), UnitRate: dec("100"), SlabPercent: 18}},
			PaymentPlan: plan,
		})
		require.NoError(t, err)
	}

	list, err := f.invoices.List(f.ctx, domain.ListInvoiceRequest{PaymentPlan: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, list.Invoices, 2)

	byCustomer, err := f.invoices.List(f.ctx, domain.ListInvoiceRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byCustomer.Invoices, 3)
}

func boolPtr(b bool) *bool { return &b }
