package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

// MemoryStore keeps employees and departments in process memory.
// It backs the "memory" gateway and the package tests of the layers above.
type MemoryStore struct {
	mu             sync.RWMutex
	employees      map[int]domain.Employee
	departments    map[int]domain.Department
	nextEmployee   int
	nextDepartment int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees:   make(map[int]domain.Employee),
		departments: make(map[int]domain.Department),
	}
}

// Employees returns the employee gateway view of the store
func (s *MemoryStore) Employees() domain.EmployeeRepository {
	return memoryEmployees{s}
}

// Departments returns the department gateway view of the store
func (s *MemoryStore) Departments() domain.DepartmentRepository {
	return memoryDepartments{s}
}

type memoryEmployees struct{ s *MemoryStore }

func (m memoryEmployees) FindByID(ctx context.Context, id int) (*domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	e, ok := m.s.employees[id]
	if !ok {
		return nil, domain.NewNotFoundError("employee", id)
	}
	return copyEmployee(e), nil
}

func (m memoryEmployees) FindAll(ctx context.Context) ([]domain.Employee, error) {
	return m.filter(ctx, func(domain.Employee) bool { return true })
}

func (m memoryEmployees) FindByName(ctx context.Context, name string) ([]domain.Employee, error) {
	return m.filter(ctx, func(e domain.Employee) bool { return e.Name == name })
}

func (m memoryEmployees) FindByDepartmentID(ctx context.Context, departmentID int) ([]domain.Employee, error) {
	return m.filter(ctx, func(e domain.Employee) bool { return e.InDepartment(departmentID) })
}

func (m memoryEmployees) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	saved := *copyEmployee(*e)
	if saved.ID == 0 {
		m.s.nextEmployee++
		saved.ID = m.s.nextEmployee
	} else if _, ok := m.s.employees[saved.ID]; !ok {
		return nil, domain.NewNotFoundError("employee", saved.ID)
	}
	m.s.employees[saved.ID] = saved
	return copyEmployee(saved), nil
}

func (m memoryEmployees) filter(ctx context.Context, keep func(domain.Employee) bool) ([]domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []domain.Employee{}
	for _, e := range m.s.employees {
		if keep(e) {
			out = append(out, *copyEmployee(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryDepartments struct{ s *MemoryStore }

func (m memoryDepartments) FindByID(ctx context.Context, id int) (*domain.Department, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	d, ok := m.s.departments[id]
	if !ok {
		return nil, domain.NewNotFoundError("department", id)
	}
	return &d, nil
}

func (m memoryDepartments) FindAll(ctx context.Context) ([]domain.Department, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]domain.Department, 0, len(m.s.departments))
	for _, d := range m.s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memoryDepartments) FindByIDs(ctx context.Context, ids []int) ([]domain.Department, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []domain.Department{}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if d, ok := m.s.departments[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, d)
		}
	}
	return out, nil
}

func (m memoryDepartments) Save(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	saved := domain.Department{ID: d.ID, Name: d.Name}
	if saved.ID == 0 {
		m.s.nextDepartment++
		saved.ID = m.s.nextDepartment
	} else if _, ok := m.s.departments[saved.ID]; !ok {
		return nil, domain.NewNotFoundError("department", saved.ID)
	}
	m.s.departments[saved.ID] = saved
	return &saved, nil
}

func copyEmployee(e domain.Employee) *domain.Employee {
	if e.DepartmentID != nil {
		id := *e.DepartmentID
		e.DepartmentID = &id
	}
	return &e
}
