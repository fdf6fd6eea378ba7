package swagger

import "github.com/antonio-alexander/go-employee-query/internal/data"

// swagger:route GET /employees Employee QueryEmployees
// Filters, sorts and paginates employees. Numeric parameters that can't
// be parsed are ignored, as if they weren't provided.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesQueryResponseOk
//   500: ErrorResponse

// swagger:response EmployeesQueryResponseOk
type EmployeesQueryResponseOk struct {
	// in:body
	Page data.EmployeesPage
}

// swagger:parameters QueryEmployees
type EmployeesQueryParams struct {
	// in:query
	Page int `json:"page"`

	// in:query
	Limit int `json:"limit"`

	// one of empNo, name, department, lastSalary, firstName, lastName,
	// birthDate, hireDate or gender
	// in:query
	SortBy string `json:"sortBy"`

	// asc or desc
	// in:query
	SortOrder string `json:"sortOrder"`

	// matched (case insensitive) against the first or last name
	// in:query
	Name string `json:"name"`

	// "first last" names, repeated or comma separated
	// in:query
	Names []string `json:"names"`

	// department numbers, comma separated
	// in:query
	Departments []string `json:"departments"`

	// in:query
	MinSalary int64 `json:"minSalary"`

	// in:query
	MaxSalary int64 `json:"maxSalary"`

	// in:query
	MinAge int64 `json:"minAge"`

	// in:query
	MaxAge int64 `json:"maxAge"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
