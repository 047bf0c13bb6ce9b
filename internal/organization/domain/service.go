package domain

import (
	"context"
	"errors"
)

type CreateOrganizationRequest struct {
	Name    string
	State   string
	GSTIN   string
	Address string
}

type GetOrganizationRequest struct {
	ID string
}

type UpdateOrganizationRequest struct {
	ID      string
	Name    *string
	State   *string
	GSTIN   *string
	Address *string
}

type Service interface {
	Create(context.Context, CreateOrganizationRequest) (Organization, error)
	GetByID(context.Context, GetOrganizationRequest) (Organization, error)
	GetByCode(ctx context.Context, code string) (Organization, error)
	Update(context.Context, UpdateOrganizationRequest) (Organization, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidState = errors.New("invalid_state")
	ErrInvalidID    = errors.New("invalid_id")
	ErrCodeTaken    = errors.New("organization_code_taken")
	ErrNotFound     = errors.New("not_found")
)
