package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Employee struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Name          string            `gorm:"not null" json:"name"`
	Phone         string            `gorm:"column:phone" json:"phone,omitempty"`
	Email         string            `gorm:"column:email" json:"email,omitempty"`
	Role          string            `gorm:"column:role" json:"role,omitempty"`
	JoinedAt      *time.Time        `gorm:"column:joined_at" json:"joined_at,omitempty"`
	MonthlySalary decimal.Decimal   `gorm:"column:monthly_salary;type:numeric(12,2)" json:"monthly_salary"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
