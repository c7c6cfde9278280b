package graph

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/loader"
)

type employeeResolver struct {
	root *Resolver
	e    domain.Employee
}

func (e *employeeResolver) ID() (int32, error) {
	return toInt32(e.e.ID)
}

func (e *employeeResolver) Name() string {
	return e.e.Name
}

func (e *employeeResolver) Salary() string {
	return e.e.Salary
}

func (e *employeeResolver) DepartmentID() (*int32, error) {
	if e.e.DepartmentID == nil {
		return nil, nil
	}
	id, err := toInt32(*e.e.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Department resolves through the request dataloader when one is installed.
func (e *employeeResolver) Department(ctx context.Context) (*departmentResolver, error) {
	if e.e.DepartmentID == nil {
		return nil, nil
	}
	id := *e.e.DepartmentID

	var dept *domain.Department
	var err error
	if loaders := loader.For(ctx); loaders != nil {
		dept, err = loaders.Departments.Load(ctx, id)
	} else {
		dept, err = e.root.departments.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			dept, err = nil, nil
		}
	}
	if err != nil {
		return nil, toGraphQLError(domain.WrapUpstream("load department", err))
	}
	if dept == nil {
		return nil, nil
	}

	single := newDepartmentBatch(e.root.batch, []domain.Department{*dept})
	return &departmentResolver{root: e.root, d: *dept, batch: single}, nil
}

// toInt32 narrows a gateway id to a GraphQL Int, rejecting ids it cannot hold.
func toInt32(id int) (int32, error) {
	if id < math.MinInt32 || id > math.MaxInt32 {
		return 0, &Error{err: fmt.Errorf("id %d does not fit a GraphQL Int", id), code: CodeInternal}
	}
	return int32(id), nil
}
