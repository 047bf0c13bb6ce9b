package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	dom := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, dom); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, dom, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) CanEdit(ctx context.Context, actor, orgID, object string) bool {
	return s.Authorize(ctx, actor, orgID, object, ActionEdit) == nil
}

func (s *ServiceImpl) CanDelete(ctx context.Context, actor, orgID, object string) bool {
	return s.Authorize(ctx, actor, orgID, object, ActionDelete) == nil
}

func (s *ServiceImpl) Permissions(ctx context.Context, actor, orgID string) ([]Permission, error) {
	objects := []string{
		ObjectCustomer,
		ObjectEmployee,
		ObjectInvoice,
		ObjectQuotation,
		ObjectDashboard,
	}

	permissions := make([]Permission, 0, len(objects))
	for _, object := range objects {
		permissions = append(permissions, Permission{
			Object:    object,
			CanView:   s.Authorize(ctx, actor, orgID, object, ActionView) == nil,
			CanCreate: s.Authorize(ctx, actor, orgID, object, ActionCreate) == nil,
			CanEdit:   s.CanEdit(ctx, actor, orgID, object),
			CanDelete: s.CanDelete(ctx, actor, orgID, object),
		})
	}
	return permissions, nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, error) {
	if actor == "system" {
		return actor, "role:owner", nil
	}
	if userIDRaw, ok := strings.CutPrefix(actor, "user:"); ok {
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		role, err := s.roleForUser(ctx, userID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE id = ? LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject, roleName, dom string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", dom)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, dom)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, dom)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Viewers are read-only.
		{"role:viewer", "*", ObjectCustomer, ActionView},
		{"role:viewer", "*", ObjectEmployee, ActionView},
		{"role:viewer", "*", ObjectInvoice, ActionView},
		{"role:viewer", "*", ObjectQuotation, ActionView},
		{"role:viewer", "*", ObjectDashboard, ActionView},

		// Staff handle day-to-day records but cannot delete.
		{"role:staff", "*", ObjectCustomer, ActionView},
		{"role:staff", "*", ObjectCustomer, ActionCreate},
		{"role:staff", "*", ObjectCustomer, ActionEdit},
		{"role:staff", "*", ObjectInvoice, ActionView},
		{"role:staff", "*", ObjectInvoice, ActionCreate},
		{"role:staff", "*", ObjectInvoice, ActionEdit},
		{"role:staff", "*", ObjectInvoice, ActionInvoicePayInstallment},
		{"role:staff", "*", ObjectQuotation, ActionView},
		{"role:staff", "*", ObjectQuotation, ActionCreate},
		{"role:staff", "*", ObjectQuotation, ActionEdit},
		{"role:staff", "*", ObjectQuotation, ActionQuotationConvert},
		{"role:staff", "*", ObjectDashboard, ActionView},

		// Admins additionally manage employees and delete records.
		{"role:admin", "*", ObjectCustomer, "*"},
		{"role:admin", "*", ObjectEmployee, "*"},
		{"role:admin", "*", ObjectInvoice, "*"},
		{"role:admin", "*", ObjectQuotation, "*"},
		{"role:admin", "*", ObjectDashboard, ActionView},

		// Owners hold every permission including org and user management.
		{"role:owner", "*", ObjectCustomer, "*"},
		{"role:owner", "*", ObjectEmployee, "*"},
		{"role:owner", "*", ObjectInvoice, "*"},
		{"role:owner", "*", ObjectQuotation, "*"},
		{"role:owner", "*", ObjectDashboard, ActionView},
		{"role:owner", "*", ObjectOrganization, "*"},
		{"role:owner", "*", ObjectUser, "*"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
