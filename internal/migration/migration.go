package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/vyapardesk/vyapardesk/internal/auth/domain"
	customerdomain "github.com/vyapardesk/vyapardesk/internal/customer/domain"
	employeedomain "github.com/vyapardesk/vyapardesk/internal/employee/domain"
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	organizationdomain "github.com/vyapardesk/vyapardesk/internal/organization/domain"
	quotationdomain "github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded SQL migrations against postgres so a
// fresh deployment is usable out of the box.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema from the gorm models for the mysql and
// sqlite dialects, where the embedded postgres migrations do not apply.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&organizationdomain.Organization{},
		&authdomain.User{},
		&authdomain.Session{},
		&DocumentSequence{},
		&customerdomain.Customer{},
		&employeedomain.Employee{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.Installment{},
		&quotationdomain.Quotation{},
		&quotationdomain.QuotationItem{},
	)
}

// DocumentSequence backs the per-organization numbering of invoices and
// quotations.
type DocumentSequence struct {
	OrgID      int64  `gorm:"column:org_id;primaryKey"`
	DocType    string `gorm:"column:doc_type;primaryKey"`
	NextNumber int64  `gorm:"column:next_number;not null;default:1"`
}

func (DocumentSequence) TableName() string { return "document_sequences" }
