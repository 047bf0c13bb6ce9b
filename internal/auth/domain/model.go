// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// User represents a staff account able to sign in.
type User struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID               snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Username            string            `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Email               string            `gorm:"column:email" json:"email,omitempty"`
	PasswordHash        *string           `gorm:"type:text" json:"-"`
	Role                string            `gorm:"type:text;not null;default:'staff'" json:"role"`
	Scopes              pq.StringArray    `gorm:"type:text[]" json:"scopes,omitempty"`
	IsDefault           bool              `gorm:"column:is_default" json:"-"`
	LastPasswordChanged *time.Time        `gorm:"column:last_password_changed" json:"-"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	OrgID            snowflake.ID `gorm:"column:org_id;not null"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "sessions" }
