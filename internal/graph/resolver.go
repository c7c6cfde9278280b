package graph

import (
	"context"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/loader"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/internal/metrics"
	"github.com/locvowork/employee_graphql_sample/internal/service"
)

// Resolver is the root of the schema: Query, Mutation and Subscription fields.
type Resolver struct {
	svc         *service.EmployeeService
	departments domain.DepartmentRepository
	batch       *loader.BatchLoader
	emitter     *service.Emitter
	metrics     *metrics.Metrics
}

func NewResolver(
	svc *service.EmployeeService,
	departments domain.DepartmentRepository,
	batch *loader.BatchLoader,
	emitter *service.Emitter,
	m *metrics.Metrics,
) *Resolver {
	return &Resolver{
		svc:         svc,
		departments: departments,
		batch:       batch,
		emitter:     emitter,
		metrics:     m,
	}
}

type addEmployeeInput struct {
	Name           string
	Salary         string
	DepartmentID   int32
	IdempotencyKey *string
}

type updateSalaryInput struct {
	EmployeeID int32
	Salary     string
}

// ==================== Query ====================

func (r *Resolver) AllDepartment(ctx context.Context) ([]*departmentResolver, error) {
	departments, err := r.svc.AllDepartments(ctx)
	if err = r.observe(ctx, "allDepartment", err); err != nil {
		return nil, err
	}

	// one batch serves the employees field of every department in the list
	batch := newDepartmentBatch(r.batch, departments)
	out := make([]*departmentResolver, len(departments))
	for i, d := range departments {
		out[i] = &departmentResolver{root: r, d: d, batch: batch}
	}
	return out, nil
}

func (r *Resolver) EmployeeByName(ctx context.Context, args struct{ EmployeeName *string }) ([]*employeeResolver, error) {
	employees, err := r.svc.EmployeesByName(ctx, args.EmployeeName)
	if err = r.observe(ctx, "employeeByName", err); err != nil {
		return nil, err
	}
	return r.employeeResolvers(employees), nil
}

// ==================== Mutation ====================

func (r *Resolver) AddEmployee(ctx context.Context, args struct{ Input addEmployeeInput }) (*employeeResolver, error) {
	in := domain.AddEmployeeInput{
		Name:         args.Input.Name,
		Salary:       args.Input.Salary,
		DepartmentID: int(args.Input.DepartmentID),
	}
	if args.Input.IdempotencyKey != nil {
		in.IdempotencyKey = *args.Input.IdempotencyKey
	}

	created, err := r.svc.AddEmployee(ctx, in)
	if err = r.observe(ctx, "addEmployee", err); err != nil {
		return nil, err
	}
	return &employeeResolver{root: r, e: *created}, nil
}

func (r *Resolver) UpdateSalary(ctx context.Context, args struct{ Input updateSalaryInput }) (*employeeResolver, error) {
	updated, err := r.svc.UpdateSalary(ctx, domain.UpdateSalaryInput{
		EmployeeID: int(args.Input.EmployeeID),
		Salary:     args.Input.Salary,
	})
	if err = r.observe(ctx, "updateSalary", err); err != nil {
		return nil, err
	}
	return &employeeResolver{root: r, e: *updated}, nil
}

// ==================== Subscription ====================

// AllEmployee streams a snapshot of all employees, paced by the emitter.
// The stream ends when the snapshot is exhausted or the subscriber goes away.
func (r *Resolver) AllEmployee(ctx context.Context) (<-chan *employeeResolver, error) {
	stream, err := r.emitter.Stream(ctx)
	if err = r.observe(ctx, "allEmployee", err); err != nil {
		return nil, err
	}

	out := make(chan *employeeResolver)
	go func() {
		defer close(out)
		for e := range stream {
			select {
			case <-ctx.Done():
				return
			case out <- &employeeResolver{root: r, e: e}:
				r.metrics.ObserveEmission()
			}
		}
	}()
	return out, nil
}

func (r *Resolver) employeeResolvers(employees []domain.Employee) []*employeeResolver {
	out := make([]*employeeResolver, len(employees))
	for i, e := range employees {
		out[i] = &employeeResolver{root: r, e: e}
	}
	return out
}

// observe records the outcome of a root field and classifies its error.
func (r *Resolver) observe(ctx context.Context, operation string, err error) error {
	r.metrics.ObserveOperation(operation, err)
	if err != nil {
		logger.ErrorLog(ctx, "%s failed: %v", operation, err)
	}
	return toGraphQLError(err)
}
