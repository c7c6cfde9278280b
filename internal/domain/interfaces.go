package domain

import "context"

// EmployeeRepository defines the gateway for employee data access.
// FindByID returns a *NotFoundError when no employee has the id.
// Save inserts when ID is zero and assigns the generated id, otherwise it updates.
type EmployeeRepository interface {
	FindByID(ctx context.Context, id int) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	Save(ctx context.Context, e *Employee) (*Employee, error)
	FindByName(ctx context.Context, name string) ([]Employee, error)
	FindByDepartmentID(ctx context.Context, departmentID int) ([]Employee, error)
}

// DepartmentRepository defines the gateway for department data access
type DepartmentRepository interface {
	FindByID(ctx context.Context, id int) (*Department, error)
	FindAll(ctx context.Context) ([]Department, error)
	Save(ctx context.Context, d *Department) (*Department, error)
	// FindByIDs returns the departments that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []int) ([]Department, error)
}
