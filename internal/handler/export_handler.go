package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/loader"
	"github.com/locvowork/employee_graphql_sample/internal/report"
	"github.com/locvowork/employee_graphql_sample/internal/service"
	"github.com/locvowork/employee_graphql_sample/internal/service/serviceutils"
)

type ExportHandler struct {
	svc   *service.EmployeeService
	batch *loader.BatchLoader
}

func NewExportHandler(svc *service.EmployeeService, batch *loader.BatchLoader) *ExportHandler {
	return &ExportHandler{svc: svc, batch: batch}
}

// DepartmentsHandler serves GET /export/departments as an xlsx workbook.
func (h *ExportHandler) DepartmentsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	departments, err := h.svc.AllDepartments(ctx)
	if err != nil {
		return serviceutils.ResponseError(c, statusForError(err), "Failed to list departments", err)
	}
	batch, err := h.batch.Load(ctx, departments)
	if err != nil {
		return serviceutils.ResponseError(c, statusForError(err), "Failed to load employees", err)
	}
	for i := range departments {
		departments[i].Employees = batch.EmployeesOf(departments[i].ID)
	}

	var buf bytes.Buffer
	if err := report.WriteDepartments(&buf, departments, batch.Unassigned); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="departments.xlsx"`)
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
