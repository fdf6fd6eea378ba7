// Package fixtures loads deterministic rows into an (empty) employees
// schema, it's used by tests and by the scenario command when running
// against sqlite.
package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

const empNoStart int64 = 10001

var (
	firstNames = []string{"Anna", "Bob", "Carla", "Dmitri", "Elodie",
		"Farid", "Georgi", "Hana", "Ivan", "Jun", "Kyoichi", "Lillian"}
	lastNames = []string{"Lee", "Smith", "Ng", "Facello", "Simmel",
		"Peac", "Quinn", "Rossi", "Sato", "Tan", "Bamford", "Koblick", "Van der Berg"}
	titles = []string{"Engineer", "Senior Engineer", "Staff",
		"Senior Staff", "Technique Leader", "Assistant Engineer"}
)

// Employee is an employee with its complete history
type Employee struct {
	data.Employee
	DeptEmps []data.DeptEmp
	Salaries []data.Salary
	Titles   []data.Title
}

func Departments() []data.Department {
	return []data.Department{
		{DeptNo: "d001", DeptName: "Marketing"},
		{DeptNo: "d002", DeptName: "Finance"},
		{DeptNo: "d003", DeptName: "Human Resources"},
		{DeptNo: "d004", DeptName: "Production"},
		{DeptNo: "d005", DeptName: "Development"},
		{DeptNo: "d006", DeptName: "Quality Management"},
		{DeptNo: "d007", DeptName: "Sales"},
		{DeptNo: "d008", DeptName: "Research"},
		{DeptNo: "d009", DeptName: "Customer Service"},
	}
}

func date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ongoing() time.Time {
	t, _ := time.Parse(data.DateFormat, data.DateOngoing)
	return t
}

// Scenario returns two employees: Anna Lee (d001, 50000, 30 years old)
// and Bob Lee (d002, 90000, 45 years old); Bob moved from d001 and got
// a raise so only their current rows match
func Scenario(now time.Time) []Employee {
	now = date(now)
	return []Employee{
		{
			Employee: data.Employee{
				EmpNo:     1,
				FirstName: "Anna",
				LastName:  "Lee",
				Gender:    "F",
				BirthDate: now.AddDate(-30, 0, -10),
				HireDate:  now.AddDate(-5, 0, 0),
			},
			DeptEmps: []data.DeptEmp{
				{DeptNo: "d001", FromDate: now.AddDate(-5, 0, 0), ToDate: ongoing()},
			},
			Salaries: []data.Salary{
				{Salary: 50000, FromDate: now.AddDate(-5, 0, 0), ToDate: ongoing()},
			},
			Titles: []data.Title{
				{Title: "Engineer", FromDate: now.AddDate(-5, 0, 0), ToDate: ongoing()},
			},
		},
		{
			Employee: data.Employee{
				EmpNo:     2,
				FirstName: "Bob",
				LastName:  "Lee",
				Gender:    "M",
				BirthDate: now.AddDate(-45, 0, -10),
				HireDate:  now.AddDate(-20, 0, 0),
			},
			DeptEmps: []data.DeptEmp{
				{DeptNo: "d001", FromDate: now.AddDate(-20, 0, 0), ToDate: now.AddDate(-2, 0, 0)},
				{DeptNo: "d002", FromDate: now.AddDate(-2, 0, 0), ToDate: ongoing()},
			},
			Salaries: []data.Salary{
				{Salary: 40000, FromDate: now.AddDate(-20, 0, 0), ToDate: now.AddDate(-2, 0, 0)},
				{Salary: 90000, FromDate: now.AddDate(-2, 0, 0), ToDate: ongoing()},
			},
			Titles: []data.Title{
				{Title: "Staff", FromDate: now.AddDate(-20, 0, 0), ToDate: now.AddDate(-2, 0, 0)},
				{Title: "Senior Staff", FromDate: now.AddDate(-2, 0, 0), ToDate: ongoing()},
			},
		},
	}
}

// SameDayTransfers returns employees with more than one department
// starting on the same day: Carla Ng (d002 and d003, current d002) and
// Dmitri Tan (d001, then d005 and d008, current d005)
func SameDayTransfers(now time.Time) []Employee {
	now = date(now)
	transfer := now.AddDate(-3, 0, 0)
	return []Employee{
		{
			Employee: data.Employee{
				EmpNo:     3,
				FirstName: "Carla",
				LastName:  "Ng",
				Gender:    "F",
				BirthDate: now.AddDate(-35, 0, -10),
				HireDate:  transfer,
			},
			DeptEmps: []data.DeptEmp{
				{DeptNo: "d003", FromDate: transfer, ToDate: ongoing()},
				{DeptNo: "d002", FromDate: transfer, ToDate: ongoing()},
			},
			Salaries: []data.Salary{
				{Salary: 60000, FromDate: transfer, ToDate: ongoing()},
			},
			Titles: []data.Title{
				{Title: "Engineer", FromDate: transfer, ToDate: ongoing()},
			},
		},
		{
			Employee: data.Employee{
				EmpNo:     4,
				FirstName: "Dmitri",
				LastName:  "Tan",
				Gender:    "M",
				BirthDate: now.AddDate(-40, 0, -10),
				HireDate:  now.AddDate(-10, 0, 0),
			},
			DeptEmps: []data.DeptEmp{
				{DeptNo: "d001", FromDate: now.AddDate(-10, 0, 0), ToDate: transfer},
				{DeptNo: "d008", FromDate: transfer, ToDate: ongoing()},
				{DeptNo: "d005", FromDate: transfer, ToDate: ongoing()},
			},
			Salaries: []data.Salary{
				{Salary: 80000, FromDate: now.AddDate(-10, 0, 0), ToDate: ongoing()},
			},
			Titles: []data.Title{
				{Title: "Senior Engineer", FromDate: now.AddDate(-10, 0, 0), ToDate: ongoing()},
			},
		},
	}
}

// Generate returns n employees numbered from 10001; every attribute is
// a function of the index so the same n always yields the same rows.
// Every 97th employee has no history at all.
func Generate(now time.Time, n int) []Employee {
	now = date(now)
	departments := Departments()
	employees := make([]Employee, 0, n)
	for i := 0; i < n; i++ {
		hireDate := now.AddDate(-1-i%30, -(i % 12), 0)
		employee := Employee{
			Employee: data.Employee{
				EmpNo:     empNoStart + int64(i),
				FirstName: firstNames[i%len(firstNames)],
				LastName:  lastNames[(i/len(firstNames))%len(lastNames)],
				Gender:    []string{"M", "F"}[i%2],
				BirthDate: now.AddDate(-20-i%50, 0, -(i % 365)),
				HireDate:  hireDate,
			},
		}
		if i%97 == 96 {
			employees = append(employees, employee)
			continue
		}
		current := departments[i%len(departments)]
		if i%3 == 0 {
			previous := departments[(i+1)%len(departments)]
			employee.DeptEmps = append(employee.DeptEmps, data.DeptEmp{
				DeptNo:   previous.DeptNo,
				FromDate: hireDate,
				ToDate:   hireDate.AddDate(0, 6, 0),
			})
			hireDate = hireDate.AddDate(0, 6, 0)
		}
		employee.DeptEmps = append(employee.DeptEmps, data.DeptEmp{
			DeptNo:   current.DeptNo,
			FromDate: hireDate,
			ToDate:   ongoing(),
		})
		salary := 30000 + int64((i*7919)%120000)
		employee.Salaries = []data.Salary{
			{Salary: salary - 5000, FromDate: employee.HireDate, ToDate: hireDate},
			{Salary: salary, FromDate: hireDate.AddDate(0, 0, 1), ToDate: ongoing()},
		}
		employee.Titles = []data.Title{
			{Title: titles[i%len(titles)], FromDate: employee.HireDate, ToDate: ongoing()},
		}
		employees = append(employees, employee)
	}
	return employees
}

// Load inserts the departments (when missing) and employees within a
// single transaction
func Load(ctx context.Context, db *sql.DB, employees ...Employee) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, department := range Departments() {
		if _, err = tx.ExecContext(ctx, `INSERT INTO departments (dept_no, dept_name)
			SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM departments WHERE dept_no = ?);`,
			department.DeptNo, department.DeptName, department.DeptNo); err != nil {
			return err
		}
	}
	for _, employee := range employees {
		if _, err = tx.ExecContext(ctx, `INSERT INTO employees (emp_no, birth_date,
			first_name, last_name, gender, hire_date) VALUES (?, ?, ?, ?, ?, ?);`,
			employee.EmpNo, employee.BirthDate.Format(data.DateFormat),
			employee.FirstName, employee.LastName, employee.Gender,
			employee.HireDate.Format(data.DateFormat)); err != nil {
			return fmt.Errorf("employee %d: %w", employee.EmpNo, err)
		}
		for _, deptEmp := range employee.DeptEmps {
			if _, err = tx.ExecContext(ctx, `INSERT INTO dept_emp (emp_no, dept_no,
				from_date, to_date) VALUES (?, ?, ?, ?);`,
				employee.EmpNo, deptEmp.DeptNo, deptEmp.FromDate.Format(data.DateFormat),
				deptEmp.ToDate.Format(data.DateFormat)); err != nil {
				return fmt.Errorf("dept_emp %d: %w", employee.EmpNo, err)
			}
		}
		for _, salary := range employee.Salaries {
			if _, err = tx.ExecContext(ctx, `INSERT INTO salaries (emp_no, salary,
				from_date, to_date) VALUES (?, ?, ?, ?);`,
				employee.EmpNo, salary.Salary, salary.FromDate.Format(data.DateFormat),
				salary.ToDate.Format(data.DateFormat)); err != nil {
				return fmt.Errorf("salaries %d: %w", employee.EmpNo, err)
			}
		}
		for _, title := range employee.Titles {
			if _, err = tx.ExecContext(ctx, `INSERT INTO titles (emp_no, title,
				from_date, to_date) VALUES (?, ?, ?, ?);`,
				employee.EmpNo, title.Title, title.FromDate.Format(data.DateFormat),
				title.ToDate.Format(data.DateFormat)); err != nil {
				return fmt.Errorf("titles %d: %w", employee.EmpNo, err)
			}
		}
	}
	return tx.Commit()
}
