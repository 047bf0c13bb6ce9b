package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type ListEmployeeRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Role        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListEmployeeFilter struct {
	Name        string
	Role        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListEmployeeResponse struct {
	pagination.PageInfo
	Employees []Employee `json:"employees"`
}

type CreateEmployeeRequest struct {
	Name          string
	Phone         string
	Email         string
	Role          string
	JoinedAt      *time.Time
	MonthlySalary decimal.Decimal
}

type UpdateEmployeeRequest struct {
	ID            string
	Name          *string
	Phone         *string
	Email         *string
	Role          *string
	JoinedAt      *time.Time
	MonthlySalary *decimal.Decimal
}

type GetEmployeeRequest struct {
	ID string
}

type DeleteEmployeeRequest struct {
	ID string
}

type SuggestRequest struct {
	Query string
	Limit int32
	Seq   int64
}

type SuggestResponse struct {
	Seq         int64      `json:"seq"`
	Suggestions []Employee `json:"suggestions"`
}

type Service interface {
	Create(context.Context, CreateEmployeeRequest) (Employee, error)
	Update(context.Context, UpdateEmployeeRequest) (Employee, error)
	List(context.Context, ListEmployeeRequest) (ListEmployeeResponse, error)
	GetByID(context.Context, GetEmployeeRequest) (Employee, error)
	Delete(context.Context, DeleteEmployeeRequest) error
	Suggest(context.Context, SuggestRequest) (SuggestResponse, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidSalary       = errors.New("invalid_salary")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
