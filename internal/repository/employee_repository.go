package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/repository/builder"
)

const employeeTable = "employee"

var employeeColumns = []string{"id", "name", "salary", "department_id"}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a Postgres backed EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) FindByID(ctx context.Context, id int) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		Where("id = ?", id).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("employee", id)
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return e, nil
}

func (r *employeeRepository) FindAll(ctx context.Context) ([]domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		OrderBy("id ASC").
		Build()
	return r.list(ctx, "failed to list employees", query, args)
}

func (r *employeeRepository) FindByName(ctx context.Context, name string) ([]domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		Where("name = ?", name).
		OrderBy("id ASC").
		Build()
	return r.list(ctx, "failed to get employees by name", query, args)
}

func (r *employeeRepository) FindByDepartmentID(ctx context.Context, departmentID int) ([]domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeeTable).
		Where("department_id = ?", departmentID).
		OrderBy("id ASC").
		Build()
	return r.list(ctx, "failed to get employees by department", query, args)
}

func (r *employeeRepository) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	saved := *e
	departmentID := nullableInt(e.DepartmentID)

	if e.ID == 0 {
		query, args := builder.NewSQLBuilder().
			Insert(employeeTable, "name", "salary", "department_id").
			Values(e.Name, e.Salary, departmentID).
			Returning("id").
			Build()
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&saved.ID); err != nil {
			return nil, fmt.Errorf("failed to create employee: %w", err)
		}
		return &saved, nil
	}

	query, args := builder.NewSQLBuilder().
		Update(employeeTable).
		Set("name", e.Name).
		Set("salary", e.Salary).
		Set("department_id", departmentID).
		Where("id = ?", e.ID).
		Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.NewNotFoundError("employee", e.ID)
	}
	return &saved, nil
}

func (r *employeeRepository) list(ctx context.Context, msg, query string, args []interface{}) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return employees, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e            domain.Employee
		departmentID sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Salary, &departmentID); err != nil {
		return nil, err
	}
	if departmentID.Valid {
		id := int(departmentID.Int64)
		e.DepartmentID = &id
	}
	return &e, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
