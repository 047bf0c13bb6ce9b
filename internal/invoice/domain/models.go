package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/internal/invoice/pricing"
)

// Invoice is the persisted billing document. Customer fields are a
// snapshot taken at issue time so later customer edits do not rewrite
// history.
type Invoice struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID     `gorm:"column:org_id;not null;index;uniqueIndex:ux_invoices_org_number" json:"organization_id"`
	InvoiceNumber    string           `gorm:"column:invoice_number;not null;uniqueIndex:ux_invoices_org_number" json:"invoice_number"`
	CustomerID       *snowflake.ID    `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CustomerName     string           `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerState    string           `gorm:"column:customer_state" json:"customer_state,omitempty"`
	CustomerGSTIN    string           `gorm:"column:customer_gstin" json:"customer_gstin,omitempty"`
	TaxEnabled       bool             `gorm:"column:tax_enabled;not null;default:true" json:"tax_enabled"`
	BulkPrice        *decimal.Decimal `gorm:"column:bulk_price;type:numeric(12,2)" json:"bulk_price,omitempty"`
	BulkSlabPercent  *int64           `gorm:"column:bulk_slab_percent" json:"bulk_slab_percent,omitempty"`
	BulkTaxInclusive bool             `gorm:"column:bulk_tax_inclusive;not null;default:false" json:"bulk_tax_inclusive"`
	Subtotal         decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount        decimal.Decimal  `gorm:"column:tax_amount;type:numeric(12,2);not null" json:"tax_amount"`
	CGSTAmount       decimal.Decimal  `gorm:"column:cgst_amount;type:numeric(12,2);not null" json:"cgst_amount"`
	SGSTAmount       decimal.Decimal  `gorm:"column:sgst_amount;type:numeric(12,2);not null" json:"sgst_amount"`
	IGSTAmount       decimal.Decimal  `gorm:"column:igst_amount;type:numeric(12,2);not null" json:"igst_amount"`
	GrandTotal       decimal.Decimal  `gorm:"column:grand_total;type:numeric(12,2);not null" json:"grand_total"`
	PaymentPlan      pricing.PlanType `gorm:"column:payment_plan;not null;default:'PENDING'" json:"payment_plan"`
	DownPayment      decimal.Decimal  `gorm:"column:down_payment;type:numeric(12,2);not null" json:"down_payment"`
	RemainingBalance decimal.Decimal  `gorm:"column:remaining_balance;type:numeric(12,2);not null" json:"remaining_balance"`
	MonthlyAmount    *decimal.Decimal `gorm:"column:monthly_amount;type:numeric(12,2)" json:"monthly_amount,omitempty"`
	EMIStartDate     *time.Time       `gorm:"column:emi_start_date;type:date" json:"emi_start_date,omitempty"`
	InstallmentCount int64            `gorm:"column:installment_count;not null;default:0" json:"installment_count"`
	IssuedAt         time.Time        `gorm:"column:issued_at;not null" json:"issued_at"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID      snowflake.ID    `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
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

func (InvoiceItem) TableName() string { return "invoice_items" }

type Installment struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID         snowflake.ID    `gorm:"column:invoice_id;not null;index;uniqueIndex:ux_installments_invoice_number" json:"invoice_id"`
	InstallmentNumber int64           `gorm:"column:installment_number;not null;uniqueIndex:ux_installments_invoice_number" json:"installment_number"`
	DueDate           time.Time       `gorm:"column:due_date;type:date;not null" json:"due_date"`
	Amount            decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Paid              bool            `gorm:"column:paid;not null;default:false" json:"paid"`
	PaidAt            *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func (Installment) TableName() string { return "installments" }
