// Package authorization enforces role-based permissions with casbin.
package authorization

import (
	"context"
	"errors"
)

const (
	ObjectCustomer     = "customer"
	ObjectEmployee     = "employee"
	ObjectInvoice      = "invoice"
	ObjectQuotation    = "quotation"
	ObjectDashboard    = "dashboard"
	ObjectOrganization = "organization"
	ObjectUser         = "user"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"

	ActionInvoicePayInstallment = "invoice.pay_installment"
	ActionQuotationConvert      = "quotation.convert"
)

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("forbidden")
)

// Permission is the coarse-grained answer handed to clients so forms can
// enable or disable their edit and delete affordances.
type Permission struct {
	Object    string `json:"object"`
	CanView   bool   `json:"can_view"`
	CanCreate bool   `json:"can_create"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}

type Service interface {
	Authorize(ctx context.Context, actor, orgID, object, action string) error
	CanEdit(ctx context.Context, actor, orgID, object string) bool
	CanDelete(ctx context.Context, actor, orgID, object string) bool
	Permissions(ctx context.Context, actor, orgID string) ([]Permission, error)
}
