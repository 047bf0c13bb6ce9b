package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/internal/employee/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/option"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO employees (id, org_id, name, phone, email, role, joined_at, monthly_salary, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.OrgID,
		employee.Name,
		employee.Phone,
		employee.Email,
		employee.Role,
		employee.JoinedAt,
		employee.MonthlySalary,
		employee.Metadata,
		employee.CreatedAt,
		employee.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, phone, email, role, joined_at, monthly_salary, metadata, created_at, updated_at
		 FROM employees WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&employee).Error
	if err != nil {
		return nil, err
	}
	if employee.ID == 0 {
		return nil, nil
	}
	return &employee, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListEmployeeFilter, page pagination.Pagination) ([]*domain.Employee, error) {
	var employees []*domain.Employee
	stmt := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("org_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
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
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`UPDATE employees SET name = ?, phone = ?, email = ?, role = ?, joined_at = ?, monthly_salary = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		employee.Name,
		employee.Phone,
		employee.Email,
		employee.Role,
		employee.JoinedAt,
		employee.MonthlySalary,
		employee.UpdatedAt,
		employee.OrgID,
		employee.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM employees WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) Suggest(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string, limit int) ([]*domain.Employee, error) {
	var employees []*domain.Employee
	err := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("org_id = ?", orgID).
		Where("name LIKE ?", prefix+"%").
		Order("name asc").
		Limit(limit).
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
