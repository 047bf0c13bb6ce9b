package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateUserRequest struct {
	OrgID    snowflake.ID
	Username string
	Email    string
	Password string
	Role     string
	Scopes   []string
}

type LoginRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	SessionID snowflake.ID
	ExpiresAt time.Time
}

type Service interface {
	CreateUser(context.Context, CreateUserRequest) (*User, error)
	Login(context.Context, LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, *User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error
}
