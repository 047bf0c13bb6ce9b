package authorization

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) (*ServiceImpl, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, role TEXT NOT NULL)`).Error)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer})
	return svc.(*ServiceImpl), db, node
}

func seedUser(t *testing.T, db *gorm.DB, node *snowflake.Node, role string) string {
	t.Helper()
	id := node.Generate()
	require.NoError(t, db.Exec(`INSERT INTO users (id, role) VALUES (?, ?)`, id, role).Error)
	return fmt.Sprintf("user:%s", id)
}

func TestAuthorizeByRole(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	owner := seedUser(t, db, node, "owner")
	staff := seedUser(t, db, node, "staff")
	viewer := seedUser(t, db, node, "viewer")

	assert.NoError(t, svc.Authorize(ctx, owner, "1", ObjectEmployee, ActionDelete))
	assert.NoError(t, svc.Authorize(ctx, staff, "1", ObjectInvoice, ActionCreate))
	assert.NoError(t, svc.Authorize(ctx, viewer, "1", ObjectInvoice, ActionView))

	assert.ErrorIs(t, svc.Authorize(ctx, staff, "1", ObjectInvoice, ActionDelete), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, staff, "1", ObjectEmployee, ActionCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, viewer, "1", ObjectCustomer, ActionEdit), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc, _, _ := setupAuthz(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "", "1", ObjectInvoice, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:1", "", ObjectInvoice, ActionView), ErrInvalidOrganization)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:1", "1", "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:1", "1", ObjectInvoice, ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.Authorize(ctx, "apikey:9", "1", ObjectInvoice, ActionView), ErrInvalidActor)
}

func TestSystemActorHasFullAccess(t *testing.T) {
	svc, _, _ := setupAuthz(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, "system", "1", ObjectInvoice, ActionDelete))
	assert.NoError(t, svc.Authorize(ctx, "system", "1", ObjectOrganization, ActionEdit))
}

func TestPermissionsMatrix(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	staff := seedUser(t, db, node, "staff")

	permissions, err := svc.Permissions(ctx, staff, "1")
	require.NoError(t, err)

	byObject := map[string]Permission{}
	for _, p := range permissions {
		byObject[p.Object] = p
	}

	assert.True(t, byObject[ObjectInvoice].CanEdit)
	assert.False(t, byObject[ObjectInvoice].CanDelete)
	assert.True(t, byObject[ObjectCustomer].CanCreate)
	assert.False(t, byObject[ObjectEmployee].CanCreate)
	assert.True(t, byObject[ObjectDashboard].CanView)
}

func TestRoleChangeRebindsGrouping(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	actor := seedUser(t, db, node, "viewer")
	assert.ErrorIs(t, svc.Authorize(ctx, actor, "1", ObjectInvoice, ActionDelete), ErrForbidden)

	id := actor[len("user:"):]
	require.NoError(t, db.Exec(`UPDATE users SET role = 'admin' WHERE id = ?`, id).Error)

	assert.NoError(t, svc.Authorize(ctx, actor, "1", ObjectInvoice, ActionDelete))
}
