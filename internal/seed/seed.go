// Package seed bootstraps the default organization and owner account so
// a fresh install is usable without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/vyapardesk/vyapardesk/internal/auth/domain"
	"github.com/vyapardesk/vyapardesk/internal/auth/password"
	organizationdomain "github.com/vyapardesk/vyapardesk/internal/organization/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main Store"
	defaultOrgState      = "Gujarat"
	defaultOwnerUsername = "owner"
	defaultOwnerPassword = "changeme-now"
)

// EnsureMainOrgWithID seeds the default organization under a fixed ID,
// used when DEFAULT_ORG pins the tenant for single-org deployments.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, snowflake.ID(orgID))
		if err != nil {
			return err
		}
		return ensureOwnerTx(ctx, tx, node, org.ID)
	})
}

// EnsureMainOrgAndOwner seeds the default organization and owner user.
func EnsureMainOrgAndOwner(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, 0)
		if err != nil {
			return err
		}
		return ensureOwnerTx(ctx, tx, node, org.ID)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fixedID snowflake.ID) (*organizationdomain.Organization, error) {
	code := slug.Make(defaultOrgName)

	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("code = ?", code).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id := fixedID
	if id == 0 {
		id = node.Generate()
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        id,
		Name:      defaultOrgName,
		Code:      code,
		State:     defaultOrgState,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureOwnerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("username = ?", defaultOwnerUsername).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultOwnerPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		OrgID:        orgID,
		Username:     defaultOwnerUsername,
		PasswordHash: &hashed,
		Role:         "owner",
		IsDefault:    true,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}
