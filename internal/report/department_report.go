package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

const (
	SheetDepartments = "Departments"
	SheetEmployees   = "Employees"

	// UnassignedLabel names the department column of employees outside every department.
	UnassignedLabel = "(unassigned)"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// column defines one column of a sheet.
type column struct {
	Header string
	Width  float64
}

var departmentColumns = []column{
	{Header: "ID", Width: 8},
	{Header: "Department", Width: 30},
	{Header: "Headcount", Width: 12},
}

var employeeColumns = []column{
	{Header: "Department", Width: 30},
	{Header: "Employee ID", Width: 12},
	{Header: "Name", Width: 30},
	{Header: "Salary", Width: 15},
}

// WriteDepartments renders departments, with their Employees already populated,
// as a two sheet workbook. Unassigned employees are listed last on the employee sheet.
func WriteDepartments(w io.Writer, departments []domain.Department, unassigned []domain.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDepartments); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetEmployees); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	deptRows := make([][]interface{}, 0, len(departments))
	var empRows [][]interface{}
	for _, d := range departments {
		deptRows = append(deptRows, []interface{}{d.ID, d.Name, len(d.Employees)})
		for _, e := range d.Employees {
			empRows = append(empRows, []interface{}{d.Name, e.ID, e.Name, e.Salary})
		}
	}
	for _, e := range unassigned {
		empRows = append(empRows, []interface{}{UnassignedLabel, e.ID, e.Name, e.Salary})
	}

	if err := streamSheet(f, SheetDepartments, headerStyle, departmentColumns, deptRows); err != nil {
		return err
	}
	if err := streamSheet(f, SheetEmployees, headerStyle, employeeColumns, empRows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// streamSheet writes a header row followed by rows using the excelize stream writer.
func streamSheet(f *excelize.File, sheet string, headerStyle int, columns []column, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer for %s: %w", sheet, err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		if err := sw.SetColWidth(i+1, i+1, c.Width); err != nil {
			return fmt.Errorf("set width on %s: %w", sheet, err)
		}
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return sw.Flush()
}
