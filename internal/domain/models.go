package domain

// Employee represents the employee table
type Employee struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Salary       string `json:"salary" db:"salary"`
	DepartmentID *int   `json:"departmentId" db:"department_id"`
}

// InDepartment reports whether the employee is assigned to the given department.
func (e Employee) InDepartment(departmentID int) bool {
	return e.DepartmentID != nil && *e.DepartmentID == departmentID
}

// Department represents the department table.
// Employees is filled in at resolution time and never persisted.
type Department struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Employees []Employee `json:"employees,omitempty" db:"-"`
}

// AddEmployeeInput carries the fields of a new employee.
// IdempotencyKey is optional; when set, repeated calls with the same key and
// the same fields return the record created by the first call. Reusing a key
// with different fields is a validation error.
type AddEmployeeInput struct {
	Name           string `json:"name" validate:"required"`
	Salary         string `json:"salary" validate:"required,numeric"`
	DepartmentID   int    `json:"departmentId" validate:"required,gt=0"`
	IdempotencyKey string `json:"idempotencyKey,omitempty" validate:"omitempty,max=128"`
}

// UpdateSalaryInput replaces the salary of an existing employee.
type UpdateSalaryInput struct {
	EmployeeID int    `json:"employeeId" validate:"required,gt=0"`
	Salary     string `json:"salary" validate:"required,numeric"`
}

// ToEmployee maps the input into a new, not yet persisted employee.
func (in AddEmployeeInput) ToEmployee() *Employee {
	departmentID := in.DepartmentID
	return &Employee{
		Name:         in.Name,
		Salary:       in.Salary,
		DepartmentID: &departmentID,
	}
}
