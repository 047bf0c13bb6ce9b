package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, employee *Employee) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Employee, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListEmployeeFilter, page pagination.Pagination) ([]*Employee, error)
	Update(ctx context.Context, db *gorm.DB, employee *Employee) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	Suggest(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string, limit int) ([]*Employee, error)
	Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
