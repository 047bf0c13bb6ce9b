package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/customer/domain"
	"github.com/vyapardesk/vyapardesk/internal/customer/repository"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	clock *clock.FakeClock
	orgID snowflake.ID
}

func setup(t *testing.T) (*fixture, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))
	t.Cleanup(func() { db.Exec("DELETE FROM customers") })

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC))
	orgID := node.Generate()

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	return &fixture{svc: svc, clock: fake, orgID: orgID}, ctx
}

func TestCreateAndGet(t *testing.T) {
	f, ctx := setup(t)

	created, err := f.svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "  Mehta Traders ",
		Phone: "9898989898",
		State: "Gujarat",
		GSTIN: "24abcde1234f1z5",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mehta Traders", created.Name)
	assert.Equal(t, "24ABCDE1234F1Z5", created.GSTIN)
	assert.Equal(t, f.orgID, created.OrgID)

	got, err := f.svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Gujarat", got.State)
}

func TestCreateValidation(t *testing.T) {
	f, ctx := setup(t)

	_, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "X", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateFields(t *testing.T) {
	f, ctx := setup(t)

	created, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "Patel & Sons", State: "Gujarat"})
	require.NoError(t, err)

	newState := "Maharashtra"
	newPhone := "9000000001"
	updated, err := f.svc.Update(ctx, domain.UpdateCustomerRequest{
		ID:    created.ID.String(),
		State: &newState,
		Phone: &newPhone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra", updated.State)
	assert.Equal(t, "9000000001", updated.Phone)
	assert.Equal(t, "Patel & Sons", updated.Name)

	empty := " "
	_, err = f.svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestListPagination(t *testing.T) {
	f, ctx := setup(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: fmt.Sprintf("Customer %02d", i)})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	first, err := f.svc.List(ctx, domain.ListCustomerRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.Customers, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := f.svc.List(ctx, domain.ListCustomerRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, second.Customers, 2)
	assert.True(t, second.HasMore)
	assert.NotEqual(t, first.Customers[0].ID, second.Customers[0].ID)
}

func TestListFilters(t *testing.T) {
	f, ctx := setup(t)

	_, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", State: "Gujarat"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "B", State: "Kerala"})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListCustomerRequest{State: "Kerala"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "B", resp.Customers[0].Name)
}

func TestSuggestEchoesSeq(t *testing.T) {
	f, ctx := setup(t)

	for _, name := range []string{"Sharma Stores", "Shah Electricals", "Mehta Traders"} {
		_, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	resp, err := f.svc.Suggest(ctx, domain.SuggestRequest{Query: "Sha", Seq: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Seq)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "Shah Electricals", resp.Suggestions[0].Name)

	empty, err := f.svc.Suggest(ctx, domain.SuggestRequest{Query: "  ", Seq: 43})
	require.NoError(t, err)
	assert.Equal(t, int64(43), empty.Seq)
	assert.Empty(t, empty.Suggestions)
}

func TestDeleteAndCount(t *testing.T) {
	f, ctx := setup(t)

	created, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "Temp"})
	require.NoError(t, err)

	count, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, f.svc.Delete(ctx, domain.DeleteCustomerRequest{ID: created.ID.String()}))

	_, err = f.svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.svc.Delete(ctx, domain.DeleteCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrgScoping(t *testing.T) {
	f, ctx := setup(t)

	created, err := f.svc.Create(ctx, domain.CreateCustomerRequest{Name: "Scoped"})
	require.NoError(t, err)

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	otherCtx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err = f.svc.GetByID(otherCtx, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
