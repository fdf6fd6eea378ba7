package data

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeesQuery   = errors.New("failed to fetch employees")
	ErrEmployeeRead     = errors.New("failed to fetch employee details")
	ErrEmployeeHistory  = errors.New("failed to fetch employee history")
	ErrEmployeeNames    = errors.New("failed to search employee names")
	ErrEmployeeRanges   = errors.New("failed to fetch employee ranges")
	ErrDepartments      = errors.New("failed to fetch departments")
)

// Error surfaces a generic failure category to callers while keeping
// the original cause reachable through errors.Is/errors.As.
type Error struct {
	Err   error
	Cause error
}

func NewError(err, cause error) error {
	return &Error{Err: err, Cause: cause}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Err, e.Cause}
}
