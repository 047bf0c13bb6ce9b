package domain

import (
	"context"
	"errors"
	"time"

	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Phone       string
	State       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Name        string
	Phone       string
	State       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name    string
	Phone   string
	Email   string
	State   string
	GSTIN   string
	Address string
}

type UpdateCustomerRequest struct {
	ID      string
	Name    *string
	Phone   *string
	Email   *string
	State   *string
	GSTIN   *string
	Address *string
}

type GetCustomerRequest struct {
	ID string
}

type DeleteCustomerRequest struct {
	ID string
}

// SuggestRequest carries the caller's sequence number so stale typeahead
// responses can be discarded client-side.
type SuggestRequest struct {
	Query string
	Limit int32
	Seq   int64
}

type SuggestResponse struct {
	Seq         int64      `json:"seq"`
	Suggestions []Customer `json:"suggestions"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	Delete(context.Context, DeleteCustomerRequest) error
	Suggest(context.Context, SuggestRequest) (SuggestResponse, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidPhone        = errors.New("invalid_phone")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
