package graph

import (
	"errors"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

// Error codes reported under extensions.code.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_FAILED"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeInternal        = "INTERNAL"
)

// Error is a resolver error carrying a machine readable code.
type Error struct {
	err  error
	code string
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Extensions is picked up by the GraphQL executor.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// Code returns the extensions code of e.
func (e *Error) Code() string {
	return e.code
}

// toGraphQLError classifies err by its domain error kind.
func toGraphQLError(err error) error {
	if err == nil {
		return nil
	}
	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	code := CodeInternal
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, domain.ErrValidation):
		code = CodeValidation
	case errors.Is(err, domain.ErrUpstream):
		code = CodeUpstreamFailure
	}
	return &Error{err: err, code: code}
}
