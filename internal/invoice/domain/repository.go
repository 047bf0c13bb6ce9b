package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	NextDocumentNumber(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, docType string) (int64, error)
	Insert(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, tx *gorm.DB, items []InvoiceItem) error
	InsertInstallments(ctx context.Context, tx *gorm.DB, installments []Installment) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	FindInstallments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Installment, error)
	FindInstallment(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, number int64) (*Installment, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	MarkInstallmentPaid(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, number int64, paidAt time.Time) error
	DeleteItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error
	DeleteInstallments(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error
	Delete(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) error
}
