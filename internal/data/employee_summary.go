package data

import (
	"encoding/json"
	"time"
)

type EmployeeSummary struct {
	EmpNo      int64     `json:"emp_no"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Name       string    `json:"name"`
	Gender     string    `json:"gender"`
	BirthDate  time.Time `json:"birth_date"`
	HireDate   time.Time `json:"hire_date"`
	Department string    `json:"department"`
	DeptNo     *string   `json:"dept_no"`
	Title      string    `json:"last_title"`
	Salary     int64     `json:"last_salary"`
	Age        int       `json:"age"`
}

type EmployeesPage struct {
	Data       []*EmployeeSummary `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int64              `json:"total_pages"`
}

func (e *EmployeesPage) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeesPage) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
