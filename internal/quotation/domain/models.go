package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status is the quotation lifecycle state.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return Status(raw), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Quotation carries the same pricing snapshot as an invoice but is not
// a billing document until converted.
type Quotation struct {
	ID                 snowflake.ID     `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID     `gorm:"column:org_id;not null;index;uniqueIndex:ux_quotations_org_number" json:"organization_id"`
	QuotationNumber    string           `gorm:"column:quotation_number;not null;uniqueIndex:ux_quotations_org_number" json:"quotation_number"`
	CustomerID         *snowflake.ID    `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CustomerName       string           `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerState      string           `gorm:"column:customer_state" json:"customer_state,omitempty"`
	CustomerGSTIN      string           `gorm:"column:customer_gstin" json:"customer_gstin,omitempty"`
	TaxEnabled         bool             `gorm:"column:tax_enabled;not null;default:true" json:"tax_enabled"`
	BulkPrice          *decimal.Decimal `gorm:"column:bulk_price;type:numeric(12,2)" json:"bulk_price,omitempty"`
	BulkSlabPercent    *int64           `gorm:"column:bulk_slab_percent" json:"bulk_slab_percent,omitempty"`
	BulkTaxInclusive   bool             `gorm:"column:bulk_tax_inclusive;not null;default:false" json:"bulk_tax_inclusive"`
	Subtotal           decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount          decimal.Decimal  `gorm:"column:tax_amount;type:numeric(12,2);not null" json:"tax_amount"`
	CGSTAmount         decimal.Decimal  `gorm:"column:cgst_amount;type:numeric(12,2);not null" json:"cgst_amount"`
	SGSTAmount         decimal.Decimal  `gorm:"column:sgst_amount;type:numeric(12,2);not null" json:"sgst_amount"`
	IGSTAmount         decimal.Decimal  `gorm:"column:igst_amount;type:numeric(12,2);not null" json:"igst_amount"`
	GrandTotal         decimal.Decimal  `gorm:"column:grand_total;type:numeric(12,2);not null" json:"grand_total"`
	Status             Status           `gorm:"column:status;not null;default:'DRAFT'" json:"status"`
	ValidUntil         *time.Time       `gorm:"column:valid_until;type:date" json:"valid_until,omitempty"`
	ConvertedInvoiceID *snowflake.ID    `gorm:"column:converted_invoice_id" json:"converted_invoice_id,omitempty"`
	CreatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quotation) TableName() string { return "quotations" }

type QuotationItem struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	QuotationID    snowflake.ID    `gorm:"column:quotation_id;not null;index" json:"quotation_id"`
	Position       int64           `gorm:"column:position;not null;default:0" json:"position"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Description    string          `gorm:"column:description" json:"description,omitempty"`
	HSNCode        string          `gorm:"column:hsn_code" json:"hsn_code,omitempty"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null" json:"quantity"`
	UnitRate       decimal.Decimal `gorm:"column:unit_rate;type:numeric(12,2);not null" json:"unit_rate"`
	TaxSlabPercent int64           `gorm:"column:tax_slab_percent;not null;default:0" json:"tax_slab_percent"`
	TaxInclusive   bool            `gorm:"column:tax_inclusive;not null;default:false" json:"tax_inclusive"`
	BaseAmount     decimal.Decimal `gorm:"column:base_amount;type:numeric(12,2);not null" json:"base_amount"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
}

func (QuotationItem) TableName() string { return "quotation_items" }
