package swagger

import "github.com/antonio-alexander/go-employee-query/internal/data"

// swagger:route GET /employees/search-names Employee SearchEmployeeNames
// Suggests distinct "first last" names containing q, terms shorter than
// two characters return no names.
//
// responses:
//   200: EmployeeNamesGetResponseOk
//   500: ErrorResponse

// swagger:response EmployeeNamesGetResponseOk
type EmployeeNamesGetResponseOk struct {
	// in:body
	Names []string
}

// swagger:parameters SearchEmployeeNames
type EmployeeNamesGetParams struct {
	// in:query
	Q string `json:"q"`

	// in:query
	Limit int `json:"limit"`
}

// swagger:route GET /employees/ranges Employee ReadEmployeeRanges
// Reads the salary and age bounds used to build filters.
//
// responses:
//   200: EmployeeRangesGetResponseOk
//   500: ErrorResponse

// swagger:response EmployeeRangesGetResponseOk
type EmployeeRangesGetResponseOk struct {
	// in:body
	Ranges data.EmployeeRanges
}

// swagger:route GET /departments Department ReadDepartments
// Reads all departments.
//
// responses:
//   200: DepartmentsGetResponseOk
//   500: ErrorResponse

// swagger:response DepartmentsGetResponseOk
type DepartmentsGetResponseOk struct {
	// in:body
	Departments []data.Department
}
