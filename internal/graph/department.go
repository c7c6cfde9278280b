package graph

import (
	"context"
	"sync"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/loader"
)

// departmentBatch loads the employees of a department list on first use, exactly once.
type departmentBatch struct {
	loader      *loader.BatchLoader
	departments []domain.Department

	once   sync.Once
	result *loader.Batch
	err    error
}

func newDepartmentBatch(l *loader.BatchLoader, departments []domain.Department) *departmentBatch {
	return &departmentBatch{loader: l, departments: departments}
}

func (b *departmentBatch) load(ctx context.Context) (*loader.Batch, error) {
	b.once.Do(func() {
		b.result, b.err = b.loader.Load(ctx, b.departments)
	})
	return b.result, b.err
}

type departmentResolver struct {
	root  *Resolver
	d     domain.Department
	batch *departmentBatch
}

func (d *departmentResolver) ID() (int32, error) {
	return toInt32(d.d.ID)
}

func (d *departmentResolver) Name() string {
	return d.d.Name
}

func (d *departmentResolver) Employees(ctx context.Context) ([]*employeeResolver, error) {
	batch, err := d.batch.load(ctx)
	if err != nil {
		return nil, toGraphQLError(err)
	}
	return d.root.employeeResolvers(batch.EmployeesOf(d.d.ID)), nil
}
