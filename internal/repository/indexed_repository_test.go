package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

// fakeIndex is an in-process EmployeeIndex.
type fakeIndex struct {
	docs      map[int]domain.Employee
	indexErr  error
	bulkErr   error
	searchErr error
}

func (f *fakeIndex) IndexEmployee(_ context.Context, e domain.Employee) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	if f.docs == nil {
		f.docs = make(map[int]domain.Employee)
	}
	f.docs[e.ID] = e
	return nil
}

func (f *fakeIndex) IndexEmployees(ctx context.Context, employees []domain.Employee) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for _, e := range employees {
		if err := f.IndexEmployee(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeIndex) SearchEmployeesByName(_ context.Context, name string) ([]domain.Employee, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	found := []domain.Employee{}
	for _, e := range f.docs {
		if e.Name == name {
			found = append(found, e)
		}
	}
	return found, nil
}

func TestIndexedEmployeeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves are mirrored and searched in the index", func(t *testing.T) {
		index := &fakeIndex{}
		repo := NewIndexedEmployeeRepository(NewMemoryStore().Employees(), index)
		require.NoError(t, repo.Reindex(ctx))

		saved, err := repo.Save(ctx, &domain.Employee{Name: "Alice", Salary: "5000"})
		require.NoError(t, err)
		assert.Contains(t, index.docs, saved.ID)

		found, err := repo.FindByName(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, []domain.Employee{*saved}, found)
	})

	t.Run("reindex backfills employees saved before the index existed", func(t *testing.T) {
		store := NewMemoryStore()
		existing, err := store.Employees().Save(ctx, &domain.Employee{Name: "Alice", Salary: "5000"})
		require.NoError(t, err)

		index := &fakeIndex{}
		repo := NewIndexedEmployeeRepository(store.Employees(), index)
		require.NoError(t, repo.Reindex(ctx))
		assert.True(t, repo.InSync())

		found, err := repo.FindByName(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, []domain.Employee{*existing}, found)
		assert.Contains(t, index.docs, existing.ID)
	})

	t.Run("lookups use the primary until reindexed", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Employees().Save(ctx, &domain.Employee{Name: "Alice", Salary: "5000"})
		require.NoError(t, err)

		repo := NewIndexedEmployeeRepository(store.Employees(), &fakeIndex{})
		assert.False(t, repo.InSync())

		found, err := repo.FindByName(ctx, "Alice")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("failed reindex keeps lookups on the primary", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Employees().Save(ctx, &domain.Employee{Name: "Alice", Salary: "5000"})
		require.NoError(t, err)

		repo := NewIndexedEmployeeRepository(store.Employees(), &fakeIndex{bulkErr: errors.New("cluster red")})
		require.Error(t, repo.Reindex(ctx))
		assert.False(t, repo.InSync())

		found, err := repo.FindByName(ctx, "Alice")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("index write failure keeps the primary write and its lookups", func(t *testing.T) {
		store := NewMemoryStore()
		index := &fakeIndex{}
		repo := NewIndexedEmployeeRepository(store.Employees(), index)
		require.NoError(t, repo.Reindex(ctx))

		index.indexErr = errors.New("index down")
		saved, err := repo.Save(ctx, &domain.Employee{Name: "Bob", Salary: "4000"})
		require.NoError(t, err)
		assert.False(t, repo.InSync())

		stored, err := store.Employees().FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", stored.Name)

		found, err := repo.FindByName(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, []domain.Employee{*saved}, found)
	})

	t.Run("search failure falls back to the primary", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Employees().Save(ctx, &domain.Employee{Name: "Carol", Salary: "1"})
		require.NoError(t, err)
		repo := NewIndexedEmployeeRepository(store.Employees(), &fakeIndex{searchErr: errors.New("timeout")})
		require.NoError(t, repo.Reindex(ctx))

		found, err := repo.FindByName(ctx, "Carol")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
