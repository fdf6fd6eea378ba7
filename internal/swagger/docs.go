// Package Swagger go-employee-query
//
// A read-only API to filter, sort and paginate employees and to read
// their history.
//
//   Schemes: http, https
//   Version: 1.0
//   Host: localhost:8080
//   BasePath:/
//
//   Consumes:
//   - application/json
//
//   Produces:
//   - application/json
//
// swagger:meta
package swagger

// swagger:response ErrorResponse
type ErrorResponse struct {
	// in:body
	Body struct {
		// the generic failure message, causes aren't exposed
		Error string `json:"error"`
	}
}
