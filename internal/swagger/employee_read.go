package swagger

import "github.com/antonio-alexander/go-employee-query/internal/data"

// swagger:route GET /employees/{EmpNo} Employee ReadEmployee
// Reads an employee with its department, salary and title history.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeGetResponseOk
//   404: ErrorResponse
//   500: ErrorResponse

// swagger:response EmployeeGetResponseOk
type EmployeeGetResponseOk struct {
	// in:body
	Employee data.EmployeeDetail
}

// swagger:route GET /employees/{EmpNo}/salaries Employee ReadEmployeeSalaries
// Reads an employee's salaries, newest first.
//
// responses:
//   200: EmployeeSalariesGetResponseOk
//   500: ErrorResponse

// swagger:response EmployeeSalariesGetResponseOk
type EmployeeSalariesGetResponseOk struct {
	// in:body
	Salaries []data.Salary
}

// swagger:route GET /employees/{EmpNo}/titles Employee ReadEmployeeTitles
// Reads an employee's titles, newest first.
//
// responses:
//   200: EmployeeTitlesGetResponseOk
//   500: ErrorResponse

// swagger:response EmployeeTitlesGetResponseOk
type EmployeeTitlesGetResponseOk struct {
	// in:body
	Titles []data.Title
}

// swagger:parameters ReadEmployee ReadEmployeeSalaries ReadEmployeeTitles
type EmployeeGetParams struct {
	// in:path
	EmpNo int64 `json:"EmpNo"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
