package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

const (
	employeeKind   = "Employee"
	departmentKind = "Department"
	sequenceKind   = "Sequence"
)

// ErrIDSpaceExhausted is returned once a kind has handed out every id a GraphQL Int can hold.
var ErrIDSpaceExhausted = errors.New("id space exhausted")

// sequenceEntity holds the last id handed out for one kind, keyed by the kind name.
// Datastore's own allocator scatters ids across 64 bits, which the API cannot expose.
type sequenceEntity struct {
	Last int64 `datastore:"Last,noindex"`
}

func (s *sequenceEntity) advance() (int64, error) {
	if s.Last >= math.MaxInt32 {
		return 0, ErrIDSpaceExhausted
	}
	s.Last++
	return s.Last, nil
}

// insert stores src under the next sequential id of kind in one transaction.
func insert(ctx context.Context, client *datastore.Client, kind string, src interface{}) (int, error) {
	seqKey := datastore.NameKey(sequenceKind, kind, nil)
	var id int64
	_, err := client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var seq sequenceEntity
		if err := tx.Get(seqKey, &seq); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}
		next, err := seq.advance()
		if err != nil {
			return err
		}
		if _, err := tx.Put(seqKey, &seq); err != nil {
			return err
		}
		if _, err := tx.Put(datastore.IDKey(kind, next, nil), src); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// employeeEntity is the Datastore shape of an employee; the id lives in the key.
// DepartmentID 0 means unassigned since Datastore never allocates id 0.
type employeeEntity struct {
	Name         string `datastore:"Name"`
	Salary       string `datastore:"Salary,noindex"`
	DepartmentID int64  `datastore:"DepartmentID"`
}

type departmentEntity struct {
	Name string `datastore:"Name"`
}

// DatastoreClient wraps the cloud datastore client as an alternate gateway
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to the project's Datastore
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// Close releases the underlying connection
func (dc *DatastoreClient) Close() error {
	return dc.client.Close()
}

// Employees returns the employee gateway backed by Datastore
func (dc *DatastoreClient) Employees() domain.EmployeeRepository {
	return datastoreEmployees{dc.client}
}

// Departments returns the department gateway backed by Datastore
func (dc *DatastoreClient) Departments() domain.DepartmentRepository {
	return datastoreDepartments{dc.client}
}

type datastoreEmployees struct {
	client *datastore.Client
}

func (r datastoreEmployees) FindByID(ctx context.Context, id int) (*domain.Employee, error) {
	var ent employeeEntity
	if err := r.client.Get(ctx, datastore.IDKey(employeeKind, int64(id), nil), &ent); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.NewNotFoundError("employee", id)
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	e := ent.toEmployee(id)
	return &e, nil
}

func (r datastoreEmployees) FindAll(ctx context.Context) ([]domain.Employee, error) {
	return r.query(ctx, datastore.NewQuery(employeeKind))
}

func (r datastoreEmployees) FindByName(ctx context.Context, name string) ([]domain.Employee, error) {
	return r.query(ctx, datastore.NewQuery(employeeKind).FilterField("Name", "=", name))
}

func (r datastoreEmployees) FindByDepartmentID(ctx context.Context, departmentID int) ([]domain.Employee, error) {
	return r.query(ctx, datastore.NewQuery(employeeKind).FilterField("DepartmentID", "=", int64(departmentID)))
}

func (r datastoreEmployees) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ent := newEmployeeEntity(*e)

	if e.ID == 0 {
		id, err := insert(ctx, r.client, employeeKind, &ent)
		if err != nil {
			return nil, fmt.Errorf("failed to create employee: %w", err)
		}
		saved := ent.toEmployee(id)
		return &saved, nil
	}

	key := datastore.IDKey(employeeKind, int64(e.ID), nil)
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var current employeeEntity
		if err := tx.Get(key, &current); err != nil {
			return err
		}
		_, err := tx.Put(key, &ent)
		return err
	})
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.NewNotFoundError("employee", e.ID)
		}
		return nil, fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	saved := ent.toEmployee(e.ID)
	return &saved, nil
}

func (r datastoreEmployees) query(ctx context.Context, q *datastore.Query) ([]domain.Employee, error) {
	var ents []employeeEntity
	keys, err := r.client.GetAll(ctx, q, &ents)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}

	employees := make([]domain.Employee, len(keys))
	for i, key := range keys {
		employees[i] = ents[i].toEmployee(int(key.ID))
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

type datastoreDepartments struct {
	client *datastore.Client
}

func (r datastoreDepartments) FindByID(ctx context.Context, id int) (*domain.Department, error) {
	var ent departmentEntity
	if err := r.client.Get(ctx, datastore.IDKey(departmentKind, int64(id), nil), &ent); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.NewNotFoundError("department", id)
		}
		return nil, fmt.Errorf("failed to get department %d: %w", id, err)
	}
	return &domain.Department{ID: id, Name: ent.Name}, nil
}

func (r datastoreDepartments) FindAll(ctx context.Context) ([]domain.Department, error) {
	var ents []departmentEntity
	keys, err := r.client.GetAll(ctx, datastore.NewQuery(departmentKind), &ents)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}

	departments := make([]domain.Department, len(keys))
	for i, key := range keys {
		departments[i] = domain.Department{ID: int(key.ID), Name: ents[i].Name}
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].ID < departments[j].ID })
	return departments, nil
}

func (r datastoreDepartments) FindByIDs(ctx context.Context, ids []int) ([]domain.Department, error) {
	if len(ids) == 0 {
		return []domain.Department{}, nil
	}

	keys := make([]*datastore.Key, len(ids))
	for i, id := range ids {
		keys[i] = datastore.IDKey(departmentKind, int64(id), nil)
	}
	ents := make([]departmentEntity, len(keys))

	err := r.client.GetMulti(ctx, keys, ents)
	var multi datastore.MultiError
	if err != nil && !errors.As(err, &multi) {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}

	departments := make([]domain.Department, 0, len(ids))
	for i, id := range ids {
		if multi != nil && multi[i] != nil {
			if errors.Is(multi[i], datastore.ErrNoSuchEntity) {
				continue
			}
			return nil, fmt.Errorf("failed to get department %d: %w", id, multi[i])
		}
		departments = append(departments, domain.Department{ID: id, Name: ents[i].Name})
	}
	return departments, nil
}

func (r datastoreDepartments) Save(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	ent := departmentEntity{Name: d.Name}

	if d.ID == 0 {
		id, err := insert(ctx, r.client, departmentKind, &ent)
		if err != nil {
			return nil, fmt.Errorf("failed to create department: %w", err)
		}
		return &domain.Department{ID: id, Name: d.Name}, nil
	}

	key := datastore.IDKey(departmentKind, int64(d.ID), nil)
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var current departmentEntity
		if err := tx.Get(key, &current); err != nil {
			return err
		}
		_, err := tx.Put(key, &ent)
		return err
	})
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.NewNotFoundError("department", d.ID)
		}
		return nil, fmt.Errorf("failed to update department %d: %w", d.ID, err)
	}
	return &domain.Department{ID: d.ID, Name: d.Name}, nil
}

func newEmployeeEntity(e domain.Employee) employeeEntity {
	ent := employeeEntity{Name: e.Name, Salary: e.Salary}
	if e.DepartmentID != nil {
		ent.DepartmentID = int64(*e.DepartmentID)
	}
	return ent
}

func (ent employeeEntity) toEmployee(id int) domain.Employee {
	e := domain.Employee{ID: id, Name: ent.Name, Salary: ent.Salary}
	if ent.DepartmentID != 0 {
		departmentID := int(ent.DepartmentID)
		e.DepartmentID = &departmentID
	}
	return e
}
