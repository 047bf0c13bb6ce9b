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
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	invoicerepo "github.com/vyapardesk/vyapardesk/internal/invoice/repository"
	invoicesvc "github.com/vyapardesk/vyapardesk/internal/invoice/service"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"github.com/vyapardesk/vyapardesk/internal/quotation/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	quotations domain.Service
	invoices   invoicedomain.Service
	customers  customerdomain.Service
	ctx        context.Context
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.Installment{},
		&domain.Quotation{},
		&domain.QuotationItem{},
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
		for _, table := range []string{"quotation_items", "quotations", "installments", "invoice_items", "invoices", "document_sequences", "customers"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 11, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	finance := config.NewStaticFinanceConfigHolder(config.FinanceConfig{
		HomeState:           "Gujarat",
		DefaultSlabPercent:  18,
		MinMonthlyAmount:    100,
		MaxInstallmentCount: 60,
	})

	customers := customersvc.New(customersvc.Params{
		DB:    db,
		Log:   log,
		Clock: fake,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})

	invoices := invoicesvc.New(invoicesvc.Params{
		DB:        db,
		Log:       log,
		Clock:     fake,
		GenID:     node,
		Repo:      invoicerepo.Provide(),
		Customers: customers,
		Finance:   finance,
	})

	quotations := New(Params{
		DB:        db,
		Log:       log,
		Clock:     fake,
		GenID:     node,
		Repo:      repository.Provide(),
		Customers: customers,
		Invoices:  invoices,
		Finance:   finance,
	})

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return fixture{quotations: quotations, invoices: invoices, customers: customers, ctx: ctx}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f fixture) newQuotation(t *testing.T, state string) domain.QuotationDetail {
	t.Helper()
	customer, err := f.customers.Create(f.ctx, customerdomain.CreateCustomerRequest{
		Name:  "Quote Customer",
		State: state,
	})
	require.NoError(t, err)

	detail, err := f.quotations.Create(f.ctx, domain.CreateQuotationRequest{
		CustomerID: customer.ID.String(),
		Items: []invoicedomain.ItemInput{
			{Name: "Water Pump", Quantity: dec("1"), UnitRate: dec("1000"), SlabPercent: 18},
			{Name: "Hose", Quantity: dec("2"), UnitRate: dec("250"), SlabPercent: 5},
		},
	})
	require.NoError(t, err)
	return detail
}

func TestCreateQuotation(t *testing.T) {
	f := setup(t)

	detail := f.newQuotation(t, "Gujarat")
	quotation := detail.Quotation

	assert.Equal(t, "VD-QTN-1", quotation.QuotationNumber)
	assert.Equal(t, domain.StatusDraft, quotation.Status)
	assert.True(t, quotation.Subtotal.Equal(dec("1500")))
	assert.True(t, quotation.TaxAmount.Equal(dec("205")))
	assert.True(t, quotation.GrandTotal.Equal(dec("1705")))
	assert.True(t, quotation.CGSTAmount.Equal(dec("102.50")))
	assert.True(t, quotation.SGSTAmount.Equal(dec("102.50")))
	require.Len(t, detail.Items, 2)
}

func TestQuotationStatusLifecycle(t *testing.T) {
	f := setup(t)
	detail := f.newQuotation(t, "Gujarat")
	id := detail.Quotation.ID.String()

	sent, err := f.quotations.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: id, Status: "SENT"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Quotation.Status)

	_, err = f.quotations.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: id, Status: "ACCEPTED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.quotations.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: id, Status: "BOGUS"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	rejected, err := f.quotations.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: id, Status: "REJECTED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Quotation.Status)

	_, err = f.quotations.Convert(f.ctx, domain.ConvertRequest{ID: id, PaymentPlan: "PENDING"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestConvertQuotation(t *testing.T) {
	f := setup(t)
	detail := f.newQuotation(t, "Gujarat")
	id := detail.Quotation.ID.String()

	invoice, err := f.quotations.Convert(f.ctx, domain.ConvertRequest{ID: id, PaymentPlan: "PENDING"})
	require.NoError(t, err)

	assert.True(t, invoice.Invoice.GrandTotal.Equal(detail.Quotation.GrandTotal))
	assert.True(t, invoice.Invoice.Subtotal.Equal(detail.Quotation.Subtotal))
	assert.Equal(t, detail.Quotation.CustomerName, invoice.Invoice.CustomerName)
	require.Len(t, invoice.Items, 2)

	sealed, err := f.quotations.GetByID(f.ctx, domain.GetQuotationRequest{ID: id})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, sealed.Quotation.Status)
	require.NotNil(t, sealed.Quotation.ConvertedInvoiceID)
	assert.Equal(t, invoice.Invoice.ID, *sealed.Quotation.ConvertedInvoiceID)

	_, err = f.quotations.Convert(f.ctx, domain.ConvertRequest{ID: id, PaymentPlan: "PENDING"})
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)

	_, err = f.quotations.Update(f.ctx, domain.UpdateQuotationRequest{
		ID:    id,
		Items: []invoicedomain.ItemInput{{Name: "X", Quantity: dec("1"), UnitRate: dec("10"), SlabPercent: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)
}

func TestConvertWithEMITerms(t *testing.T) {
	f := setup(t)
	customer, err := f.customers.Create(f.ctx, customerdomain.CreateCustomerRequest{
		Name:  "EMI Quote",
		State: "Gujarat",
	})
	require.NoError(t, err)

	detail, err := f.quotations.Create(f.ctx, domain.CreateQuotationRequest{
		CustomerID: customer.ID.String(),
		TaxEnabled: boolPtr(false),
		Items: []invoicedomain.ItemInput{
			{Name: "Generator", Quantity: dec("1"), UnitRate: dec("10000"), SlabPercent: 0},
		},
	})
	require.NoError(t, err)

	monthly := dec("3000")
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := f.quotations.Convert(f.ctx, domain.ConvertRequest{
		ID:            detail.Quotation.ID.String(),
		PaymentPlan:   "EMI",
		DownPayment:   dec("1000"),
		MonthlyAmount: &monthly,
		EMIStartDate:  &start,
	})
	require.NoError(t, err)

	assert.True(t, invoice.Invoice.RemainingBalance.Equal(dec("9000")))
	require.Len(t, invoice.Installments, 3)
}

func TestConvertExpiredQuotation(t *testing.T) {
	f := setup(t)
	customer, err := f.customers.Create(f.ctx, customerdomain.CreateCustomerRequest{
		Name:  "Late Customer",
		State: "Gujarat",
	})
	require.NoError(t, err)

	expired := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	detail, err := f.quotations.Create(f.ctx, domain.CreateQuotationRequest{
		CustomerID: customer.ID.String(),
		Items: []invoicedomain.ItemInput{
			{Name: "Lamp", Quantity: dec("1"), UnitRate: dec("500"), SlabPercent: 12},
		},
		ValidUntil: &expired,
	})
	require.NoError(t, err)

	_, err = f.quotations.Convert(f.ctx, domain.ConvertRequest{ID: detail.Quotation.ID.String(), PaymentPlan: "PAID"})
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestUpdateQuotationRecomputes(t *testing.T) {
	f := setup(t)
	detail := f.newQuotation(t, "Maharashtra")
	assert.True(t, detail.Quotation.IGSTAmount.Equal(dec("205")))

	updated, err := f.quotations.Update(f.ctx, domain.UpdateQuotationRequest{
		ID: detail.Quotation.ID.String(),
		Items: []invoicedomain.ItemInput{
			{Name: "Water Pump", Quantity: dec("2"), UnitRate: dec("1000"), SlabPercent: 18},
		},
	})
	require.NoError(t, err)
	assert.True(t, updated.Quotation.Subtotal.Equal(dec("2000")))
	assert.True(t, updated.Quotation.IGSTAmount.Equal(dec("360")))
	assert.Equal(t, detail.Quotation.QuotationNumber, updated.Quotation.QuotationNumber)
}

func TestListQuotationsByStatus(t *testing.T) {
	f := setup(t)
	first := f.newQuotation(t, "Gujarat")
	second := f.newQuotation(t, "Gujarat")

	_, err := f.quotations.UpdateStatus(f.ctx, domain.UpdateStatusRequest{ID: first.Quotation.ID.String(), Status: "SENT"})
	require.NoError(t, err)

	drafts, err := f.quotations.List(f.ctx, domain.ListQuotationRequest{Status: "DRAFT"})
	require.NoError(t, err)
	require.Len(t, drafts.Quotations, 1)
	assert.Equal(t, second.Quotation.ID, drafts.Quotations[0].ID)

	all, err := f.quotations.List(f.ctx, domain.ListQuotationRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Quotations, 2)
}

func boolPtr(b bool) *bool { return &b }
