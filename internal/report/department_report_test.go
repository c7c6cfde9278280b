package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

func TestWriteDepartments(t *testing.T) {
	one, two := 1, 2
	departments := []domain.Department{
		{ID: 1, Name: "Engineering", Employees: []domain.Employee{
			{ID: 10, Name: "Alice", Salary: "5000", DepartmentID: &one},
			{ID: 12, Name: "Carol", Salary: "6000", DepartmentID: &one},
		}},
		{ID: 2, Name: "Ops", Employees: []domain.Employee{
			{ID: 11, Name: "Bob", Salary: "4000", DepartmentID: &two},
		}},
	}
	unassigned := []domain.Employee{{ID: 13, Name: "Dave", Salary: "100"}}

	var buf bytes.Buffer
	require.NoError(t, WriteDepartments(&buf, departments, unassigned))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDepartments, SheetEmployees}, f.GetSheetList())

	deptRows, err := f.GetRows(SheetDepartments)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ID", "Department", "Headcount"},
		{"1", "Engineering", "2"},
		{"2", "Ops", "1"},
	}, deptRows)

	empRows, err := f.GetRows(SheetEmployees)
	require.NoError(t, err)
	require.Len(t, empRows, 5)
	assert.Equal(t, []string{"Department", "Employee ID", "Name", "Salary"}, empRows[0])
	assert.Equal(t, []string{"Engineering", "10", "Alice", "5000"}, empRows[1])
	assert.Equal(t, []string{UnassignedLabel, "13", "Dave", "100"}, empRows[4])
}

func TestWriteDepartmentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDepartments(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetEmployees)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
