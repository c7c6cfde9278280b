package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/repository/builder"
)

const departmentTable = "department"

// DepartmentRepository handles all database operations for Department
type DepartmentRepository struct {
	db *sql.DB
}

// NewDepartmentRepository creates a new instance of DepartmentRepository
func NewDepartmentRepository(db *sql.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindByID retrieves a department by id
func (r *DepartmentRepository) FindByID(ctx context.Context, id int) (*domain.Department, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "name").
		From(departmentTable).
		Where("id = ?", id).
		Build()

	var d domain.Department
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("department", id)
		}
		return nil, fmt.Errorf("failed to get department %d: %w", id, err)
	}
	return &d, nil
}

// FindAll retrieves all departments ordered by id
func (r *DepartmentRepository) FindAll(ctx context.Context) ([]domain.Department, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "name").
		From(departmentTable).
		OrderBy("id ASC").
		Build()
	return r.list(ctx, "failed to get all departments", query, args)
}

// FindByIDs retrieves the departments among ids
func (r *DepartmentRepository) FindByIDs(ctx context.Context, ids []int) ([]domain.Department, error) {
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}
	query, args := builder.NewSQLBuilder().
		Select("id", "name").
		From(departmentTable).
		WhereIn("id", vals...).
		Build()
	return r.list(ctx, "failed to get departments by ids", query, args)
}

// Save inserts a department when its id is zero, otherwise renames it
func (r *DepartmentRepository) Save(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	saved := domain.Department{ID: d.ID, Name: d.Name}

	if d.ID == 0 {
		query, args := builder.NewSQLBuilder().
			Insert(departmentTable, "name").
			Values(d.Name).
			Returning("id").
			Build()
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&saved.ID); err != nil {
			return nil, fmt.Errorf("failed to create department: %w", err)
		}
		return &saved, nil
	}

	query, args := builder.NewSQLBuilder().
		Update(departmentTable).
		Set("name", d.Name).
		Where("id = ?", d.ID).
		Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update department %d: %w", d.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.NewNotFoundError("department", d.ID)
	}
	return &saved, nil
}

func (r *DepartmentRepository) list(ctx context.Context, msg, query string, args []interface{}) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return departments, nil
}
