package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/internal/invoice/pricing"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

// ItemInput is one line item as submitted by the caller. Monetary
// figures are derived server side and never accepted from input.
type ItemInput struct {
	Name         string
	Description  string
	HSNCode      string
	Quantity     decimal.Decimal
	UnitRate     decimal.Decimal
	SlabPercent  int64
	TaxInclusive bool
}

// BulkInput replaces per-item pricing with one flat price for the
// whole document.
type BulkInput struct {
	TotalPrice   decimal.Decimal
	SlabPercent  int64
	TaxInclusive bool
}

type CreateInvoiceRequest struct {
	CustomerID       string
	CustomerName     string
	CustomerState    string
	CustomerGSTIN    string
	TaxEnabled       *bool
	Items            []ItemInput
	Bulk             *BulkInput
	PaymentPlan      string
	DownPayment      decimal.Decimal
	MonthlyAmount    *decimal.Decimal
	EMIStartDate     *time.Time
	InstallmentCount int
	IssuedAt         *time.Time
}

// UpdateInvoiceRequest is a full replacement of the mutable document
// body. The invoice number and customer snapshot are preserved unless a
// new customer is supplied.
type UpdateInvoiceRequest struct {
	ID               string
	CustomerID       string
	TaxEnabled       *bool
	Items            []ItemInput
	Bulk             *BulkInput
	PaymentPlan      string
	DownPayment      decimal.Decimal
	MonthlyAmount    *decimal.Decimal
	EMIStartDate     *time.Time
	InstallmentCount int
	IssuedAt         *time.Time
}

type PreviewInvoiceRequest struct {
	CustomerState    string
	TaxEnabled       *bool
	Items            []ItemInput
	Bulk             *BulkInput
	PaymentPlan      string
	DownPayment      decimal.Decimal
	MonthlyAmount    *decimal.Decimal
	EMIStartDate     *time.Time
	InstallmentCount int
}

// PreviewInvoiceResponse mirrors what Create would persist, without
// touching storage.
type PreviewInvoiceResponse struct {
	Totals           pricing.Totals        `json:"totals"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	Schedule         []pricing.Installment `json:"schedule,omitempty"`
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	CustomerID  string
	PaymentPlan string
	IssuedFrom  *time.Time
	IssuedTo    *time.Time
}

type ListInvoiceFilter struct {
	CustomerID  int64
	PaymentPlan string
	IssuedFrom  *time.Time
	IssuedTo    *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type GetInvoiceRequest struct {
	ID string
}

type DeleteInvoiceRequest struct {
	ID string
}

type MarkInstallmentPaidRequest struct {
	InvoiceID string
	Number    int64
}

// InvoiceDetail bundles an invoice with its children.
type InvoiceDetail struct {
	Invoice      Invoice       `json:"invoice"`
	Items        []InvoiceItem `json:"items"`
	Installments []Installment `json:"installments,omitempty"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (InvoiceDetail, error)
	Update(context.Context, UpdateInvoiceRequest) (InvoiceDetail, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceDetail, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Delete(context.Context, DeleteInvoiceRequest) error
	Preview(context.Context, PreviewInvoiceRequest) (PreviewInvoiceResponse, error)
	MarkInstallmentPaid(context.Context, MarkInstallmentPaidRequest) (InvoiceDetail, error)
}

var (
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidCustomer         = errors.New("invalid_customer")
	ErrInvalidItems            = errors.New("invalid_items")
	ErrInvalidDownPayment      = errors.New("invalid_down_payment")
	ErrInvalidMonthlyAmount    = errors.New("invalid_monthly_amount")
	ErrInvalidEMIStart         = errors.New("invalid_emi_start_date")
	ErrInvalidInstallmentCount = errors.New("invalid_installment_count")
	ErrInstallmentNotFound     = errors.New("installment_not_found")
	ErrInstallmentAlreadyPaid  = errors.New("installment_already_paid")
	ErrNotFound                = errors.New("not_found")
)
