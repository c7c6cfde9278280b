package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
)

// EmployeeIndex is a secondary name index kept next to the primary gateway.
type EmployeeIndex interface {
	IndexEmployee(ctx context.Context, e domain.Employee) error
	IndexEmployees(ctx context.Context, employees []domain.Employee) error
	SearchEmployeesByName(ctx context.Context, name string) ([]domain.Employee, error)
}

// IndexedEmployeeRepository mirrors every saved employee into an index and
// serves name lookups from it while the index is in sync with the primary.
type IndexedEmployeeRepository struct {
	domain.EmployeeRepository
	index EmployeeIndex

	// inSync is false until Reindex succeeds and again after any missed write.
	inSync atomic.Bool
}

// NewIndexedEmployeeRepository wraps primary with index. Name lookups go to the
// primary until Reindex has copied the primary's employees into the index.
func NewIndexedEmployeeRepository(primary domain.EmployeeRepository, index EmployeeIndex) *IndexedEmployeeRepository {
	return &IndexedEmployeeRepository{EmployeeRepository: primary, index: index}
}

// Reindex copies every employee of the primary into the index.
func (r *IndexedEmployeeRepository) Reindex(ctx context.Context) error {
	employees, err := r.EmployeeRepository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("reindex: list employees: %w", err)
	}
	if err := r.index.IndexEmployees(ctx, employees); err != nil {
		r.inSync.Store(false)
		return fmt.Errorf("reindex: %w", err)
	}
	r.inSync.Store(true)
	logger.InfoLog(ctx, "name index rebuilt with %d employees", len(employees))
	return nil
}

// InSync reports whether name lookups are served from the index.
func (r *IndexedEmployeeRepository) InSync() bool {
	return r.inSync.Load()
}

func (r *IndexedEmployeeRepository) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	saved, err := r.EmployeeRepository.Save(ctx, e)
	if err != nil {
		return nil, err
	}
	if err := r.index.IndexEmployee(ctx, *saved); err != nil {
		r.inSync.Store(false)
		logger.WarnLog(ctx, "employee %d saved but not indexed, name lookups use the primary until reindexed: %v", saved.ID, err)
	}
	return saved, nil
}

func (r *IndexedEmployeeRepository) FindByName(ctx context.Context, name string) ([]domain.Employee, error) {
	if !r.inSync.Load() {
		return r.EmployeeRepository.FindByName(ctx, name)
	}
	employees, err := r.index.SearchEmployeesByName(ctx, name)
	if err != nil {
		logger.WarnLog(ctx, "name index unavailable, falling back to primary: %v", err)
		return r.EmployeeRepository.FindByName(ctx, name)
	}
	return employees, nil
}
