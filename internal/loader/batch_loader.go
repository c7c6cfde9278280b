package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/internal/metrics"
)

const defaultMaxConcurrency = 8

// Batch is the result of one load: employees grouped by department id.
// Every department id of the input has an entry, possibly empty.
type Batch struct {
	ByDepartment map[int][]domain.Employee
	// Unassigned holds employees the gateway returned whose department is not part of the batch.
	Unassigned []domain.Employee
}

// EmployeesOf returns the employees grouped under a department id.
func (b *Batch) EmployeesOf(departmentID int) []domain.Employee {
	if employees, ok := b.ByDepartment[departmentID]; ok {
		return employees
	}
	return []domain.Employee{}
}

// BatchLoader resolves the employees of a whole department list in one pass,
// issuing one gateway query per distinct department concurrently.
type BatchLoader struct {
	employees      domain.EmployeeRepository
	maxConcurrency int
	metrics        *metrics.Metrics
}

func NewBatchLoader(employees domain.EmployeeRepository, maxConcurrency int, m *metrics.Metrics) *BatchLoader {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &BatchLoader{employees: employees, maxConcurrency: maxConcurrency, metrics: m}
}

// Load groups employees under the first department of the input with a matching id.
// No employee is placed twice. Any gateway failure fails the whole load.
func (l *BatchLoader) Load(ctx context.Context, departments []domain.Department) (*Batch, error) {
	ids := distinctIDs(departments)
	slots := make([][]domain.Employee, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			employees, err := l.employees.FindByDepartmentID(gctx, id)
			if err != nil {
				return fmt.Errorf("find employees of department %d: %w", id, err)
			}
			slots[i] = employees
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.WrapUpstream("batch load employees", err)
	}

	batch := &Batch{
		ByDepartment: make(map[int][]domain.Employee, len(ids)),
		Unassigned:   []domain.Employee{},
	}
	for _, id := range ids {
		batch.ByDepartment[id] = []domain.Employee{}
	}

	placed := make(map[int]struct{})
	for _, employees := range slots {
		for _, e := range employees {
			if _, dup := placed[e.ID]; dup {
				continue
			}
			placed[e.ID] = struct{}{}

			if e.DepartmentID != nil {
				if group, ok := batch.ByDepartment[*e.DepartmentID]; ok {
					batch.ByDepartment[*e.DepartmentID] = append(group, e)
					continue
				}
			}
			batch.Unassigned = append(batch.Unassigned, e)
		}
	}

	if n := len(batch.Unassigned); n > 0 {
		logger.WarnLog(ctx, "batch load: %d employees matched no department of the batch", n)
	}
	l.metrics.ObserveBatch(len(ids), len(batch.Unassigned))
	return batch, nil
}

func distinctIDs(departments []domain.Department) []int {
	seen := make(map[int]struct{}, len(departments))
	ids := make([]int, 0, len(departments))
	for _, d := range departments {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		ids = append(ids, d.ID)
	}
	return ids
}
