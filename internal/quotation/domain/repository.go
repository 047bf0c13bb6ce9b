package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	NextDocumentNumber(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, docType string) (int64, error)
	Insert(ctx context.Context, tx *gorm.DB, quotation *Quotation) error
	InsertItems(ctx context.Context, tx *gorm.DB, items []QuotationItem) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quotation, error)
	FindItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]QuotationItem, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListQuotationFilter, page pagination.Pagination) ([]*Quotation, error)
	Update(ctx context.Context, tx *gorm.DB, quotation *Quotation) error
	DeleteItems(ctx context.Context, tx *gorm.DB, quotationID snowflake.ID) error
	Delete(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) error
}
