package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type CreateQuotationRequest struct {
	CustomerID    string
	CustomerName  string
	CustomerState string
	CustomerGSTIN string
	TaxEnabled    *bool
	Items         []invoicedomain.ItemInput
	Bulk          *invoicedomain.BulkInput
	ValidUntil    *time.Time
}

type UpdateQuotationRequest struct {
	ID         string
	CustomerID string
	TaxEnabled *bool
	Items      []invoicedomain.ItemInput
	Bulk       *invoicedomain.BulkInput
	ValidUntil *time.Time
}

type UpdateStatusRequest struct {
	ID     string
	Status string
}

// ConvertRequest turns an accepted quotation into an invoice. Payment
// terms are supplied at conversion time since a quotation carries none.
type ConvertRequest struct {
	ID               string
	PaymentPlan      string
	DownPayment      decimal.Decimal
	MonthlyAmount    *decimal.Decimal
	EMIStartDate     *time.Time
	InstallmentCount int
}

type ListQuotationRequest struct {
	PageToken   string
	PageSize    int32
	CustomerID  string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListQuotationFilter struct {
	CustomerID  int64
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListQuotationResponse struct {
	pagination.PageInfo
	Quotations []Quotation `json:"quotations"`
}

type GetQuotationRequest struct {
	ID string
}

type DeleteQuotationRequest struct {
	ID string
}

type QuotationDetail struct {
	Quotation Quotation       `json:"quotation"`
	Items     []QuotationItem `json:"items"`
}

type Service interface {
	Create(context.Context, CreateQuotationRequest) (QuotationDetail, error)
	Update(context.Context, UpdateQuotationRequest) (QuotationDetail, error)
	GetByID(context.Context, GetQuotationRequest) (QuotationDetail, error)
	List(context.Context, ListQuotationRequest) (ListQuotationResponse, error)
	Delete(context.Context, DeleteQuotationRequest) error
	UpdateStatus(context.Context, UpdateStatusRequest) (QuotationDetail, error)
	Convert(context.Context, ConvertRequest) (invoicedomain.InvoiceDetail, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidItems        = errors.New("invalid_items")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrAlreadyConverted    = errors.New("quotation_already_converted")
	ErrExpired             = errors.New("quotation_expired")
	ErrNotFound            = errors.New("not_found")
)
