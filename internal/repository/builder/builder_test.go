package builder

import (
	"testing"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id", "name").From("department").Where("id = ?", 1).Build()
		expected := "SELECT id, name FROM department WHERE id = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != 1 {
			t.Errorf("expected args [1], got %v", args)
		}
	})

	t.Run("Insert returning id", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Insert("employee", "name", "salary", "department_id").
			Values("Alice", "5000", 2).
			Returning("id").
			Build()
		expected := "INSERT INTO employee (name, salary, department_id) VALUES ($1, $2, $3) RETURNING id"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 3 || args[0] != "Alice" || args[1] != "5000" || args[2] != 2 {
			t.Errorf("expected args [Alice 5000 2], got %v", args)
		}
	})

	t.Run("Update numbers where after set", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Update("employee").
			Set("name", "Bob").
			Set("salary", "6000").
			Where("id = ?", 7).
			Build()
		expected := "UPDATE employee SET name = $1, salary = $2 WHERE id = $3"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 3 || args[2] != 7 {
			t.Errorf("expected args [Bob 6000 7], got %v", args)
		}
	})

	t.Run("Multiple where joined with AND", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id").From("employee").
			Where("name = ?", "Alice").
			Where("department_id = ?", 3).
			OrderBy("id ASC").
			Build()
		expected := "SELECT id FROM employee WHERE name = $1 AND department_id = $2 ORDER BY id ASC"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 {
			t.Errorf("expected 2 args, got %v", args)
		}
	})

	t.Run("WhereIn", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id", "name").From("department").WhereIn("id", 1, 2, 3).Build()
		expected := "SELECT id, name FROM department WHERE id IN ($1, $2, $3)"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 3 {
			t.Errorf("expected 3 args, got %v", args)
		}
	})

	t.Run("WhereIn empty matches nothing", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id").From("department").WhereIn("id").Build()
		expected := "SELECT id FROM department WHERE 1 = 0"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 0 {
			t.Errorf("expected no args, got %v", args)
		}
	})

	t.Run("Build is repeatable", func(t *testing.T) {
		b := NewSQLBuilder().Select("id").From("employee").Where("id = ?", 1)
		q1, a1 := b.Build()
		q2, a2 := b.Build()
		if q1 != q2 || len(a1) != len(a2) {
			t.Errorf("expected identical builds, got %q/%v and %q/%v", q1, a1, q2, a2)
		}
	})
}
