package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stats is the landing-page summary for one organization.
type Stats struct {
	CustomerCount        int64                 `json:"customer_count"`
	EmployeeCount        int64                 `json:"employee_count"`
	InvoiceCountMonth    int64                 `json:"invoice_count_month"`
	RevenueMonth         decimal.Decimal       `json:"revenue_month"`
	OutstandingBalance   decimal.Decimal       `json:"outstanding_balance"`
	OpenQuotationCount   int64                 `json:"open_quotation_count"`
	UpcomingInstallments []UpcomingInstallment `json:"upcoming_installments"`
}

// UpcomingInstallment is an unpaid installment falling due inside the
// lookahead window.
type UpcomingInstallment struct {
	InvoiceID         snowflake.ID    `json:"invoice_id"`
	InvoiceNumber     string          `json:"invoice_number"`
	CustomerName      string          `json:"customer_name"`
	InstallmentNumber int64           `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
}

type Repository interface {
	CustomerCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	EmployeeCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	InvoiceCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) (int64, error)
	Revenue(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) (decimal.Decimal, error)
	OutstandingBalance(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (decimal.Decimal, error)
	OpenQuotationCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	UpcomingInstallments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time, limit int) ([]UpcomingInstallment, error)
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
