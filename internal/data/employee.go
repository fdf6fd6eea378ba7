package data

import (
	"encoding/json"
	"time"
)

const (
	DateFormat  string = "2006-01-02"
	DateOngoing string = "9999-01-01" //to_date of an assignment that hasn't ended
)

const (
	DepartmentNone string = "No Department"
	TitleNone      string = "No Title"
)

type Employee struct {
	EmpNo     int64     `json:"emp_no"` //this is actually an int32, but the types are compatible
	BirthDate time.Time `json:"birth_date"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    string    `json:"gender"` //this is actually an enum, but not worth the effort
	HireDate  time.Time `json:"hire_date"`
}

type Department struct {
	DeptNo   string `json:"dept_no"`
	DeptName string `json:"dept_name"`
}

type DeptEmp struct {
	EmpNo    int64     `json:"emp_no"`
	DeptNo   string    `json:"dept_no"`
	DeptName string    `json:"dept_name"`
	FromDate time.Time `json:"from_date"`
	ToDate   time.Time `json:"to_date"`
}

type Salary struct {
	EmpNo    int64     `json:"emp_no"`
	Salary   int64     `json:"salary"`
	FromDate time.Time `json:"from_date"`
	ToDate   time.Time `json:"to_date"`
}

type Title struct {
	EmpNo    int64     `json:"emp_no"`
	Title    string    `json:"title"`
	FromDate time.Time `json:"from_date"`
	ToDate   time.Time `json:"to_date"`
}

// EmployeeRecord is an employee joined with the latest row of each of
// its history tables; a nil field means the employee has no history
// in that table.
type EmployeeRecord struct {
	Employee
	Department *Department
	Salary     *int64
	Title      *string
}

// EmployeeDetail is the single employee lookup: the full history of
// each table, newest first.
type EmployeeDetail struct {
	Employee
	Name        string     `json:"name"`
	Age         int        `json:"age"`
	Departments []*DeptEmp `json:"dept_emp"`
	Salaries    []*Salary  `json:"salaries"`
	Titles      []*Title   `json:"titles"`
}

func (e *EmployeeDetail) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeDetail) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type EmployeeRanges struct {
	SalaryRange Range `json:"salary_range"`
	AgeRange    Range `json:"age_range"`
}
