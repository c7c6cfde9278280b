package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/repository"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// brokenEmployees fails every call.
type brokenEmployees struct {
	domain.EmployeeRepository
}

var errDown = errors.New("database is down")

func (brokenEmployees) Save(context.Context, *domain.Employee) (*domain.Employee, error) {
	return nil, errDown
}

func (brokenEmployees) FindByName(context.Context, string) ([]domain.Employee, error) {
	return nil, errDown
}

func (brokenEmployees) FindAll(context.Context) ([]domain.Employee, error) {
	return nil, errDown
}

func newTestService(t *testing.T) (*EmployeeService, *repository.MemoryStore, *domain.Department) {
	t.Helper()
	store := repository.NewMemoryStore()
	dept, err := store.Departments().Save(context.Background(), &domain.Department{Name: "Engineering"})
	require.NoError(t, err)
	return NewEmployeeService(store.Employees(), store.Departments(), time.Minute), store, dept
}

func TestAddEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and returns the new record", func(t *testing.T) {
		svc, _, dept := newTestService(t)

		created, err := svc.AddEmployee(ctx, domain.AddEmployeeInput{Name: "Alice", Salary: "5000", DepartmentID: dept.ID})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Alice", created.Name)
		assert.Equal(t, "5000", created.Salary)
		assert.Equal(t, intPtr(dept.ID), created.DepartmentID)

		found, err := svc.EmployeesByName(ctx, strPtr("Alice"))
		require.NoError(t, err)
		assert.Equal(t, []domain.Employee{*created}, found)
	})

	t.Run("identical inputs without a key create distinct records", func(t *testing.T) {
		svc, _, dept := newTestService(t)
		in := domain.AddEmployeeInput{Name: "Bob", Salary: "4000", DepartmentID: dept.ID}

		first, err := svc.AddEmployee(ctx, in)
		require.NoError(t, err)
		second, err := svc.AddEmployee(ctx, in)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("a repeated idempotency key returns the first record", func(t *testing.T) {
		svc, store, dept := newTestService(t)
		in := domain.AddEmployeeInput{Name: "Bob", Salary: "4000", DepartmentID: dept.ID, IdempotencyKey: "req-1"}

		first, err := svc.AddEmployee(ctx, in)
		require.NoError(t, err)
		second, err := svc.AddEmployee(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		all, err := store.Employees().FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("a reused idempotency key with different fields is rejected", func(t *testing.T) {
		svc, store, dept := newTestService(t)
		in := domain.AddEmployeeInput{Name: "Bob", Salary: "4000", DepartmentID: dept.ID, IdempotencyKey: "req-2"}

		_, err := svc.AddEmployee(ctx, in)
		require.NoError(t, err)

		in.Salary = "9000"
		_, err = svc.AddEmployee(ctx, in)
		require.ErrorIs(t, err, domain.ErrValidation)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "idempotencyKey", verr.Field)

		all, err := store.Employees().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "4000", all[0].Salary)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _, dept := newTestService(t)

		tests := []struct {
			name  string
			in    domain.AddEmployeeInput
			field string
		}{
			{"missing name", domain.AddEmployeeInput{Salary: "1", DepartmentID: dept.ID}, "name"},
			{"salary not numeric", domain.AddEmployeeInput{Name: "X", Salary: "lots", DepartmentID: dept.ID}, "salary"},
			{"department id zero", domain.AddEmployeeInput{Name: "X", Salary: "1"}, "departmentId"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.AddEmployee(ctx, tt.in)
				require.ErrorIs(t, err, domain.ErrValidation)
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			})
		}
	})

	t.Run("gateway failure surfaces as upstream failure", func(t *testing.T) {
		svc := NewEmployeeService(brokenEmployees{}, nil, time.Minute)

		_, err := svc.AddEmployee(ctx, domain.AddEmployeeInput{Name: "Alice", Salary: "5000", DepartmentID: 1})
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.ErrorIs(t, err, errDown)
	})
}

func TestEmployeesByName(t *testing.T) {
	ctx := context.Background()
	svc, _, dept := newTestService(t)

	for _, name := range []string{"Alice", "Bob", "Alice"} {
		_, err := svc.AddEmployee(ctx, domain.AddEmployeeInput{Name: name, Salary: "1000", DepartmentID: dept.ID})
		require.NoError(t, err)
	}

	t.Run("exact match", func(t *testing.T) {
		found, err := svc.EmployeesByName(ctx, strPtr("Alice"))
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		found, err := svc.EmployeesByName(ctx, strPtr("alice"))
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("absent name is a validation error", func(t *testing.T) {
		_, err := svc.EmployeesByName(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("gateway failure", func(t *testing.T) {
		broken := NewEmployeeService(brokenEmployees{}, nil, time.Minute)
		_, err := broken.EmployeesByName(ctx, strPtr("Alice"))
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestUpdateSalary(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces salary only", func(t *testing.T) {
		svc, store, dept := newTestService(t)
		created, err := svc.AddEmployee(ctx, domain.AddEmployeeInput{Name: "Alice", Salary: "5000", DepartmentID: dept.ID})
		require.NoError(t, err)

		updated, err := svc.UpdateSalary(ctx, domain.UpdateSalaryInput{EmployeeID: created.ID, Salary: "6500"})
		require.NoError(t, err)

		want := *created
		want.Salary = "6500"
		assert.Equal(t, &want, updated)

		stored, err := store.Employees().FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, &want, stored)
	})

	t.Run("unknown employee is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.UpdateSalary(ctx, domain.UpdateSalaryInput{EmployeeID: 42, Salary: "1"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("rejects a non numeric salary", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.UpdateSalary(ctx, domain.UpdateSalaryInput{EmployeeID: 1, Salary: "a lot"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("interleaved updates resolve as last write wins", func(t *testing.T) {
		svc, store, dept := newTestService(t)
		created, err := svc.AddEmployee(ctx, domain.AddEmployeeInput{Name: "Alice", Salary: "5000", DepartmentID: dept.ID})
		require.NoError(t, err)

		// a second writer reads the record before the first update lands
		stale, err := store.Employees().FindByID(ctx, created.ID)
		require.NoError(t, err)

		_, err = svc.UpdateSalary(ctx, domain.UpdateSalaryInput{EmployeeID: created.ID, Salary: "6000"})
		require.NoError(t, err)

		stale.Name = "Alice B."
		_, err = store.Employees().Save(ctx, stale)
		require.NoError(t, err)

		stored, err := store.Employees().FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "5000", stored.Salary, "the stale write overwrote the salary update")
	})
}

func TestAllDepartments(t *testing.T) {
	ctx := context.Background()
	svc, store, dept := newTestService(t)
	ops, err := store.Departments().Save(ctx, &domain.Department{Name: "Ops"})
	require.NoError(t, err)

	departments, err := svc.AllDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Department{*dept, *ops}, departments)
}
