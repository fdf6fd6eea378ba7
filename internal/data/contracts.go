package data

const (
	RouteEmployees            string = "/employees"
	RouteEmployeesSearchNames string = RouteEmployees + "/search-names"
	RouteEmployeesRanges      string = RouteEmployees + "/ranges"
	RouteEmployeesEmpNo       string = RouteEmployees + "/{" + PathEmpNo + ":[0-9]+}"
	RouteEmployeesEmpNof      string = RouteEmployees + "/%d"
	RouteEmployeesSalaries    string = RouteEmployeesEmpNo + "/salaries"
	RouteEmployeesSalariesf   string = RouteEmployeesEmpNof + "/salaries"
	RouteEmployeesTitles      string = RouteEmployeesEmpNo + "/titles"
	RouteEmployeesTitlesf     string = RouteEmployeesEmpNof + "/titles"
	RouteDepartments          string = "/departments"
	RouteCache                string = "/cache"
	RouteCacheCounters        string = RouteCache + "/counters"
	RouteTimers               string = "/timers"
	RouteMetrics              string = "/metrics"
)

const PathEmpNo string = "EmpNo"

const (
	ParameterSearchTerm  string = "q"
	ParameterSearchLimit string = "limit"
)

const HeaderCorrelationId string = "Correlation-Id"

// ErrorResponse is the body of any non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
