package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
)

// EmployeeService handles business logic for employees and departments
type EmployeeService struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	validate    *validator.Validate

	// idempotent holds employees created under an idempotency key
	idempotent *cache.Cache
	keyMu      sync.Mutex
}

// NewEmployeeService creates a new EmployeeService instance.
// Idempotency keys are remembered for idempotencyTTL.
func NewEmployeeService(
	employees domain.EmployeeRepository,
	departments domain.DepartmentRepository,
	idempotencyTTL time.Duration,
) *EmployeeService {
	return &EmployeeService{
		employees:   employees,
		departments: departments,
		validate:    newValidator(),
		idempotent:  cache.New(idempotencyTTL, 2*idempotencyTTL),
	}
}

// ==================== Department Operations ====================

// AllDepartments returns every department, unfiltered and unpaged.
// Employees are not populated here; see loader.BatchLoader.
func (s *EmployeeService) AllDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.FindAll(ctx)
	if err != nil {
		return nil, domain.WrapUpstream("find all departments", err)
	}
	return departments, nil
}

// ==================== Employee Operations ====================

// EmployeesByName returns the employees whose name equals name exactly.
func (s *EmployeeService) EmployeesByName(ctx context.Context, name *string) ([]domain.Employee, error) {
	if name == nil {
		return nil, domain.NewValidationError("employeeName", "required")
	}
	employees, err := s.employees.FindByName(ctx, *name)
	if err != nil {
		return nil, domain.WrapUpstream("find employees by name", err)
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

// AddEmployee persists a new employee and returns it with its assigned id.
// Without an idempotency key every call creates a new record.
func (s *EmployeeService) AddEmployee(ctx context.Context, in domain.AddEmployeeInput) (*domain.Employee, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if in.IdempotencyKey == "" {
		return s.create(ctx, in)
	}

	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if cached, ok := s.idempotent.Get(in.IdempotencyKey); ok {
		entry := cached.(idempotentEntry)
		if entry.input != in {
			return nil, domain.NewValidationError("idempotencyKey", "reused with different input")
		}
		logger.InfoLog(ctx, "addEmployee replayed idempotency key %q as employee %d", in.IdempotencyKey, entry.employee.ID)
		return copyEmployee(entry.employee), nil
	}

	created, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.idempotent.Set(in.IdempotencyKey, idempotentEntry{input: in, employee: *copyEmployee(*created)}, cache.DefaultExpiration)
	return created, nil
}

type idempotentEntry struct {
	input    domain.AddEmployeeInput
	employee domain.Employee
}

func (s *EmployeeService) create(ctx context.Context, in domain.AddEmployeeInput) (*domain.Employee, error) {
	saved, err := s.employees.Save(ctx, in.ToEmployee())
	if err != nil {
		return nil, domain.WrapUpstream("save employee", err)
	}
	logger.InfoLog(ctx, "created employee %d in department %d", saved.ID, in.DepartmentID)
	return saved, nil
}

// UpdateSalary replaces the salary of an existing employee, leaving every other field intact.
// The lookup and the save are separate gateway calls, so concurrent updates of the
// same employee resolve as last write wins.
func (s *EmployeeService) UpdateSalary(ctx context.Context, in domain.UpdateSalaryInput) (*domain.Employee, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	employee, err := s.employees.FindByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, domain.WrapUpstream("find employee", err)
	}

	employee.Salary = in.Salary
	saved, err := s.employees.Save(ctx, employee)
	if err != nil {
		return nil, domain.WrapUpstream("save employee", err)
	}
	logger.InfoLog(ctx, "updated salary of employee %d", saved.ID)
	return saved, nil
}

// AllEmployees returns a snapshot of every employee.
func (s *EmployeeService) AllEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.employees.FindAll(ctx)
	if err != nil {
		return nil, domain.WrapUpstream("find all employees", err)
	}
	return employees, nil
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts the first validator failure into a *domain.ValidationError.
func (s *EmployeeService) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return domain.NewValidationError(fe.Field(), reason)
	}
	return domain.NewValidationError("", err.Error())
}

func copyEmployee(e domain.Employee) *domain.Employee {
	if e.DepartmentID != nil {
		id := *e.DepartmentID
		e.DepartmentID = &id
	}
	return &e
}
