package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/option"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// NextDocumentNumber reserves the next number for the given document
// type. Must run inside the caller's transaction so the reservation and
// the document insert commit together. The increment runs before the
// read so the sequence row is locked for the rest of the transaction;
// concurrent reservations in the same org serialize on that lock
// instead of both reading the same number. Two transactions racing to
// seed a brand-new sequence collide on its primary key, which surfaces
// as a duplicate-key error.
func (r *repo) NextDocumentNumber(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, docType string) (int64, error) {
	res := tx.WithContext(ctx).Exec(
		`UPDATE document_sequences SET next_number = next_number + 1 WHERE org_id = ? AND doc_type = ?`,
		orgID,
		docType,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO document_sequences (org_id, doc_type, next_number) VALUES (?, ?, ?)`,
			orgID,
			docType,
			2,
		).Error
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT next_number FROM document_sequences WHERE org_id = ? AND doc_type = ?`,
		orgID,
		docType,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, org_id, invoice_number, customer_id, customer_name, customer_state, customer_gstin,
			tax_enabled, bulk_price, bulk_slab_percent, bulk_tax_inclusive,
			subtotal, tax_amount, cgst_amount, sgst_amount, igst_amount, grand_total,
			payment_plan, down_payment, remaining_balance, monthly_amount, emi_start_date, installment_count,
			issued_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.OrgID,
		invoice.InvoiceNumber,
		invoice.CustomerID,
		invoice.CustomerName,
		invoice.CustomerState,
		invoice.CustomerGSTIN,
		invoice.TaxEnabled,
		invoice.BulkPrice,
		invoice.BulkSlabPercent,
		invoice.BulkTaxInclusive,
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.CGSTAmount,
		invoice.SGSTAmount,
		invoice.IGSTAmount,
		invoice.GrandTotal,
		invoice.PaymentPlan,
		invoice.DownPayment,
		invoice.RemainingBalance,
		invoice.MonthlyAmount,
		invoice.EMIStartDate,
		invoice.InstallmentCount,
		invoice.IssuedAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, tx *gorm.DB, items []domain.InvoiceItem) error {
	for i := range items {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO invoice_items (
				id, invoice_id, position, name, description, hsn_code,
				quantity, unit_rate, tax_slab_percent, tax_inclusive,
				base_amount, tax_amount, total_amount
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].InvoiceID,
			items[i].Position,
			items[i].Name,
			items[i].Description,
			items[i].HSNCode,
			items[i].Quantity,
			items[i].UnitRate,
			items[i].TaxSlabPercent,
			items[i].TaxInclusive,
			items[i].BaseAmount,
			items[i].TaxAmount,
			items[i].TotalAmount,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertInstallments(ctx context.Context, tx *gorm.DB, installments []domain.Installment) error {
	for i := range installments {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO installments (id, invoice_id, installment_number, due_date, amount, paid, paid_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			installments[i].ID,
			installments[i].InvoiceID,
			installments[i].InstallmentNumber,
			installments[i].DueDate,
			installments[i].Amount,
			installments[i].Paid,
			installments[i].PaidAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Model(&domain.InvoiceItem{}).
		Where("invoice_id = ?", invoiceID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindInstallments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.Installment, error) {
	var installments []domain.Installment
	err := db.WithContext(ctx).
		Model(&domain.Installment{}).
		Where("invoice_id = ?", invoiceID).
		Order("installment_number asc").
		Find(&installments).Error
	if err != nil {
		return nil, err
	}
	return installments, nil
}

func (r *repo) FindInstallment(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, number int64) (*domain.Installment, error) {
	var installment domain.Installment
	err := db.WithContext(ctx).
		Model(&domain.Installment{}).
		Where("invoice_id = ? AND installment_number = ?", invoiceID, number).
		Find(&installment).Error
	if err != nil {
		return nil, err
	}
	if installment.ID == 0 {
		return nil, nil
	}
	return &installment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ?", orgID)
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.PaymentPlan != "" {
		stmt = stmt.Where("payment_plan = ?", filter.PaymentPlan)
	}
	if filter.IssuedFrom != nil {
		stmt = stmt.Where("issued_at >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		stmt = stmt.Where("issued_at <= ?", *filter.IssuedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE invoices SET
			customer_id = ?, customer_name = ?, customer_state = ?, customer_gstin = ?,
			tax_enabled = ?, bulk_price = ?, bulk_slab_percent = ?, bulk_tax_inclusive = ?,
			subtotal = ?, tax_amount = ?, cgst_amount = ?, sgst_amount = ?, igst_amount = ?, grand_total = ?,
			payment_plan = ?, down_payment = ?, remaining_balance = ?, monthly_amount = ?, emi_start_date = ?, installment_count = ?,
			issued_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		invoice.CustomerID,
		invoice.CustomerName,
		invoice.CustomerState,
		invoice.CustomerGSTIN,
		invoice.TaxEnabled,
		invoice.BulkPrice,
		invoice.BulkSlabPercent,
		invoice.BulkTaxInclusive,
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.CGSTAmount,
		invoice.SGSTAmount,
		invoice.IGSTAmount,
		invoice.GrandTotal,
		invoice.PaymentPlan,
		invoice.DownPayment,
		invoice.RemainingBalance,
		invoice.MonthlyAmount,
		invoice.EMIStartDate,
		invoice.InstallmentCount,
		invoice.IssuedAt,
		invoice.UpdatedAt,
		invoice.OrgID,
		invoice.ID,
	).Error
}

func (r *repo) MarkInstallmentPaid(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, number int64, paidAt time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE installments SET paid = ?, paid_at = ? WHERE invoice_id = ? AND installment_number = ?`,
		true,
		paidAt,
		invoiceID,
		number,
	).Error
}

func (r *repo) DeleteItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM invoice_items WHERE invoice_id = ?`,
		invoiceID,
	).Error
}

func (r *repo) DeleteInstallments(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM installments WHERE invoice_id = ?`,
		invoiceID,
	).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM invoices WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}
