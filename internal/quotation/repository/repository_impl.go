package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/option"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// NextDocumentNumber increments before reading so concurrent
// reservations in the same org serialize on the sequence row lock.
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

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, quotation *domain.Quotation) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO quotations (
			id, org_id, quotation_number, customer_id, customer_name, customer_state, customer_gstin,
			tax_enabled, bulk_price, bulk_slab_percent, bulk_tax_inclusive,
			subtotal, tax_amount, cgst_amount, sgst_amount, igst_amount, grand_total,
			status, valid_until, converted_invoice_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quotation.ID,
		quotation.OrgID,
		quotation.QuotationNumber,
		quotation.CustomerID,
		quotation.CustomerName,
		quotation.CustomerState,
		quotation.CustomerGSTIN,
		quotation.TaxEnabled,
		quotation.BulkPrice,
		quotation.BulkSlabPercent,
		quotation.BulkTaxInclusive,
		quotation.Subtotal,
		quotation.TaxAmount,
		quotation.CGSTAmount,
		quotation.SGSTAmount,
		quotation.IGSTAmount,
		quotation.GrandTotal,
		quotation.Status,
		quotation.ValidUntil,
		quotation.ConvertedInvoiceID,
		quotation.CreatedAt,
		quotation.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, tx *gorm.DB, items []domain.QuotationItem) error {
	for i := range items {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO quotation_items (
				id, quotation_id, position, name, description, hsn_code,
				quantity, unit_rate, tax_slab_percent, tax_inclusive,
				base_amount, tax_amount, total_amount
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].QuotationID,
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Find(&quotation).Error
	if err != nil {
		return nil, err
	}
	if quotation.ID == 0 {
		return nil, nil
	}
	return &quotation, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]domain.QuotationItem, error) {
	var items []domain.QuotationItem
	err := db.WithContext(ctx).
		Model(&domain.QuotationItem{}).
		Where("quotation_id = ?", quotationID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListQuotationFilter, page pagination.Pagination) ([]*domain.Quotation, error) {
	var quotations []*domain.Quotation
	stmt := db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("org_id = ?", orgID)
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&quotations).Error
	if err != nil {
		return nil, err
	}
	return quotations, nil
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, quotation *domain.Quotation) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE quotations SET
			customer_id = ?, customer_name = ?, customer_state = ?, customer_gstin = ?,
			tax_enabled = ?, bulk_price = ?, bulk_slab_percent = ?, bulk_tax_inclusive = ?,
			subtotal = ?, tax_amount = ?, cgst_amount = ?, sgst_amount = ?, igst_amount = ?, grand_total = ?,
			status = ?, valid_until = ?, converted_invoice_id = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		quotation.CustomerID,
		quotation.CustomerName,
		quotation.CustomerState,
		quotation.CustomerGSTIN,
		quotation.TaxEnabled,
		quotation.BulkPrice,
		quotation.BulkSlabPercent,
		quotation.BulkTaxInclusive,
		quotation.Subtotal,
		quotation.TaxAmount,
		quotation.CGSTAmount,
		quotation.SGSTAmount,
		quotation.IGSTAmount,
		quotation.GrandTotal,
		quotation.Status,
		quotation.ValidUntil,
		quotation.ConvertedInvoiceID,
		quotation.UpdatedAt,
		quotation.OrgID,
		quotation.ID,
	).Error
}

func (r *repo) DeleteItems(ctx context.Context, tx *gorm.DB, quotationID snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM quotation_items WHERE quotation_id = ?`,
		quotationID,
	).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`DELETE FROM quotations WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}
