package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/internal/dashboard/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CustomerCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	return r.count(ctx, db, `SELECT COUNT(*) FROM customers WHERE org_id = ?`, orgID)
}

func (r *repo) EmployeeCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	return r.count(ctx, db, `SELECT COUNT(*) FROM employees WHERE org_id = ?`, orgID)
}

func (r *repo) InvoiceCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices WHERE org_id = ? AND issued_at >= ? AND issued_at < ?`,
		orgID,
		from,
		to,
	).Scan(&count).Error
	return count, err
}

func (r *repo) Revenue(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, db,
		`SELECT COALESCE(SUM(grand_total), 0) FROM invoices WHERE org_id = ? AND issued_at >= ? AND issued_at < ?`,
		orgID, from, to)
}

func (r *repo) OutstandingBalance(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(remaining_balance), 0) FROM invoices WHERE org_id = ?`,
		orgID,
	).Scan(&balance).Error
	return balance, err
}

func (r *repo) OpenQuotationCount(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM quotations WHERE org_id = ? AND status IN (?, ?)`,
		orgID,
		"DRAFT",
		"SENT",
	).Scan(&count).Error
	return count, err
}

func (r *repo) UpcomingInstallments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time, limit int) ([]domain.UpcomingInstallment, error) {
	var upcoming []domain.UpcomingInstallment
	err := db.WithContext(ctx).Raw(
		`SELECT i.invoice_id, v.invoice_number, v.customer_name, i.installment_number, i.due_date, i.amount
		 FROM installments i
		 JOIN invoices v ON v.id = i.invoice_id
		 WHERE v.org_id = ? AND i.paid = ? AND i.due_date >= ? AND i.due_date < ?
		 ORDER BY i.due_date asc, i.installment_number asc
		 LIMIT ?`,
		orgID,
		false,
		from,
		to,
		limit,
	).Scan(&upcoming).Error
	if err != nil {
		return nil, err
	}
	return upcoming, nil
}

func (r *repo) count(ctx context.Context, db *gorm.DB, query string, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(query, orgID).Scan(&count).Error
	return count, err
}

func (r *repo) sum(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.WithContext(ctx).Raw(query, args...).Scan(&total).Error
	return total, err
}
