package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/employee/domain"
	"github.com/vyapardesk/vyapardesk/internal/employee/repository"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Employee{}))
	t.Cleanup(func() { db.Exec("DELETE FROM employees") })

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return svc, ctx
}

func TestCreateAndGetEmployee(t *testing.T) {
	svc, ctx := setup(t)

	joined := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, domain.CreateEmployeeRequest{
		Name:          "Ravi Kumar",
		Role:          "sales",
		JoinedAt:      &joined,
		MonthlySalary: decimal.RequireFromString("18500.505"),
	})
	require.NoError(t, err)
	assert.True(t, created.MonthlySalary.Equal(decimal.RequireFromString("18500.51")))

	got, err := svc.GetByID(ctx, domain.GetEmployeeRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", got.Name)
	assert.Equal(t, "sales", got.Role)
}

func TestCreateEmployeeValidation(t *testing.T) {
	svc, ctx := setup(t)

	_, err := svc.Create(ctx, domain.CreateEmployeeRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateEmployeeRequest{Name: "X", Email: "bad"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateEmployeeRequest{
		Name:          "X",
		MonthlySalary: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSalary)
}

func TestUpdateEmployeeSalary(t *testing.T) {
	svc, ctx := setup(t)

	created, err := svc.Create(ctx, domain.CreateEmployeeRequest{
		Name:          "Asha",
		MonthlySalary: decimal.RequireFromString("15000"),
	})
	require.NoError(t, err)

	raise := decimal.RequireFromString("17000")
	updated, err := svc.Update(ctx, domain.UpdateEmployeeRequest{
		ID:            created.ID.String(),
		MonthlySalary: &raise,
	})
	require.NoError(t, err)
	assert.True(t, updated.MonthlySalary.Equal(raise))
}

func TestEmployeeSuggestAndRoleFilter(t *testing.T) {
	svc, ctx := setup(t)

	for _, e := range []struct{ name, role string }{
		{"Ravi Kumar", "sales"},
		{"Rakesh Shah", "accounts"},
		{"Meena Patel", "sales"},
	} {
		_, err := svc.Create(ctx, domain.CreateEmployeeRequest{Name: e.name, Role: e.role})
		require.NoError(t, err)
	}

	suggest, err := svc.Suggest(ctx, domain.SuggestRequest{Query: "Ra", Seq: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), suggest.Seq)
	assert.Len(t, suggest.Suggestions, 2)

	list, err := svc.List(ctx, domain.ListEmployeeRequest{Role: "sales"})
	require.NoError(t, err)
	assert.Len(t, list.Employees, 2)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestDeleteEmployee(t *testing.T) {
	svc, ctx := setup(t)

	created, err := svc.Create(ctx, domain.CreateEmployeeRequest{Name: "Temp"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.DeleteEmployeeRequest{ID: created.ID.String()}))
	_, err = svc.GetByID(ctx, domain.GetEmployeeRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
