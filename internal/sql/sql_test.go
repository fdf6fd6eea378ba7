package sql_test

import (
	"context"
	stdsql "database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/sql"
	"github.com/antonio-alexander/go-employee-query/internal/sql/fixtures"

	"github.com/stretchr/testify/assert"
)

const nGenerated int = 300

var (
	envs = map[string]string{
		"DATABASE_QUERY_TIMEOUT":   "10",
		"DATABASE_CONNECT_TIMEOUT": "5",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	//fixtures are loaded into an in-memory database
	envs["DATABASE_DRIVER"] = sql.DriverSqlite
}

type sqlTest struct {
	sql interface {
		internal.Opener
		internal.Configurer
	}
	sql.Sql
	db  *stdsql.DB
	now time.Time
}

func newSqlTest(db *stdsql.DB) *sqlTest {
	sql := sql.NewMySql(db)
	return &sqlTest{
		sql: sql,
		Sql: sql,
		db:  db,
		now: time.Now().UTC(),
	}
}

func (s *sqlTest) TestEmployeeRead(t *testing.T) {
	ctx := context.TODO()

	// read employee
	employee, err := s.EmployeeRead(ctx, 1)
	assert.Nil(t, err)
	if assert.NotNil(t, employee) {
		assert.Equal(t, int64(1), employee.EmpNo)
		assert.Equal(t, "Anna", employee.FirstName)
		assert.Equal(t, "Lee", employee.LastName)
		assert.Equal(t, "F", employee.Gender)
		assert.Equal(t, s.now.AddDate(-30, 0, -10).Format(data.DateFormat),
			employee.BirthDate.Format(data.DateFormat))
	}

	// read employee that doesn't exist
	employee, err = s.EmployeeRead(ctx, 999999)
	assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	assert.Nil(t, employee)
}

func (s *sqlTest) TestEmployeeHistory(t *testing.T) {
	ctx := context.TODO()

	deptEmps, err := s.EmployeeDepartments(ctx, 2)
	assert.Nil(t, err)
	if assert.Len(t, deptEmps, 2) {
		assert.Equal(t, "d002", deptEmps[0].DeptNo)
		assert.Equal(t, "Finance", deptEmps[0].DeptName)
		assert.Equal(t, data.DateOngoing, deptEmps[0].ToDate.Format(data.DateFormat))
		assert.Equal(t, "d001", deptEmps[1].DeptNo)
	}
	salaries, err := s.EmployeeSalaries(ctx, 2)
	assert.Nil(t, err)
	if assert.Len(t, salaries, 2) {
		assert.Equal(t, int64(90000), salaries[0].Salary)
		assert.Equal(t, int64(40000), salaries[1].Salary)
	}
	titles, err := s.EmployeeTitles(ctx, 2)
	assert.Nil(t, err)
	if assert.Len(t, titles, 2) {
		assert.Equal(t, "Senior Staff", titles[0].Title)
	}

	// an employee without history
	deptEmps, err = s.EmployeeDepartments(ctx, 10097)
	assert.Nil(t, err)
	assert.Empty(t, deptEmps)
}

func (s *sqlTest) TestEmpNosByDepartments(t *testing.T) {
	ctx := context.TODO()

	empNos, err := s.EmpNosByDepartments(ctx, "d002")
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(2))
	assert.NotContains(t, empNos, int64(1))

	//bob's previous department doesn't count
	empNos, err = s.EmpNosByDepartments(ctx, "d001")
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(1))
	assert.NotContains(t, empNos, int64(2))

	empNos, err = s.EmpNosByDepartments(ctx, "d001", "d002")
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(1))
	assert.Contains(t, empNos, int64(2))
	assert.IsIncreasing(t, empNos)

	empNos, err = s.EmpNosByDepartments(ctx, "d999")
	assert.Nil(t, err)
	assert.Empty(t, empNos)

	//rows starting the same day, only the lowest dept_no is current
	empNos, err = s.EmpNosByDepartments(ctx, "d002")
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(3))
	empNos, err = s.EmpNosByDepartments(ctx, "d003", "d008")
	assert.Nil(t, err)
	assert.NotContains(t, empNos, int64(3))
	assert.NotContains(t, empNos, int64(4))
	empNos, err = s.EmpNosByDepartments(ctx, "d005")
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(4))
	records, err := s.EmployeesFetch(ctx, data.EmployeeCriteria{EmpNos: []int64{3, 4}},
		data.EmployeeOrder{SortBy: data.SortByEmpNo, SortOrder: data.SortOrderAsc}, 0, 0)
	assert.Nil(t, err)
	if assert.Len(t, records, 2) {
		if assert.NotNil(t, records[0].Department) {
			assert.Equal(t, "d002", records[0].Department.DeptNo)
		}
		if assert.NotNil(t, records[1].Department) {
			assert.Equal(t, "d005", records[1].Department.DeptNo)
		}
	}
}

func (s *sqlTest) TestEmpNosBySalaryRange(t *testing.T) {
	ctx := context.TODO()
	minSalary, maxSalary := int64(60000), int64(45000)

	empNos, err := s.EmpNosBySalaryRange(ctx, &minSalary, nil)
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(2))
	assert.NotContains(t, empNos, int64(1))

	//bob's previous salary (40000) doesn't count
	empNos, err = s.EmpNosBySalaryRange(ctx, nil, &maxSalary)
	assert.Nil(t, err)
	assert.NotContains(t, empNos, int64(1))
	assert.NotContains(t, empNos, int64(2))

	//employees without a salary never match
	empNos, err = s.EmpNosBySalaryRange(ctx, nil, nil)
	assert.Nil(t, err)
	assert.NotContains(t, empNos, int64(10097))
}

func (s *sqlTest) TestEmpNosByNamePairs(t *testing.T) {
	ctx := context.TODO()

	namePairs := []data.NamePair{
		{First: "Anna", Last: "Lee"},
		{First: "bob", Last: "lee"},
		{First: "Jun", Last: "Van der"},
		{First: "Kyoichi", Last: ""},
	}
	empNos, err := s.EmpNosByNamePairs(ctx, namePairs...)
	assert.Nil(t, err)
	assert.Contains(t, empNos, int64(1))
	assert.Contains(t, empNos, int64(2))
	assert.IsIncreasing(t, empNos)

	//the json path must agree with the inline (OR'd) criteria
	records, err := s.EmployeesFetch(ctx, data.EmployeeCriteria{NamePairs: namePairs},
		data.EmployeeOrder{SortBy: data.SortByEmpNo, SortOrder: data.SortOrderAsc}, 0, 0)
	assert.Nil(t, err)
	var expectedEmpNos []int64
	for _, record := range records {
		expectedEmpNos = append(expectedEmpNos, record.EmpNo)
	}
	assert.Equal(t, expectedEmpNos, empNos)

	empNos, err = s.EmpNosByNamePairs(ctx, data.NamePair{First: "Nobody", Last: "Here"})
	assert.Nil(t, err)
	assert.Empty(t, empNos)
}

func (s *sqlTest) TestEmployeesLiteralMatch(t *testing.T) {
	ctx := context.TODO()

	for _, name := range []string{
		"%",
		"_",
		"!",
		"%' OR '1'='1",
		"'; DROP TABLE employees; --",
	} {
		count, err := s.EmployeesCount(ctx, data.EmployeeCriteria{Name: name})
		assert.Nil(t, err)
		assert.Equal(t, int64(0), count, name)
		empNos, err := s.EmpNosByNamePairs(ctx, data.NamePair{First: name, Last: name})
		assert.Nil(t, err)
		assert.Empty(t, empNos, name)
	}
	count, err := s.EmployeesCount(ctx, data.EmployeeCriteria{})
	assert.Nil(t, err)
	assert.Equal(t, int64(nGenerated+4), count)
}

func (s *sqlTest) TestEmployeesFetch(t *testing.T) {
	ctx := context.TODO()

	records, err := s.EmployeesFetch(ctx, data.EmployeeCriteria{EmpNos: []int64{1, 2, 10097}},
		data.EmployeeOrder{SortBy: data.SortByEmpNo, SortOrder: data.SortOrderDesc}, 0, 0)
	assert.Nil(t, err)
	if assert.Len(t, records, 3) {
		assert.Equal(t, int64(10097), records[0].EmpNo)
		assert.Nil(t, records[0].Department)
		assert.Nil(t, records[0].Salary)
		assert.Nil(t, records[0].Title)
		assert.Equal(t, int64(2), records[1].EmpNo)
		if assert.NotNil(t, records[1].Department) {
			assert.Equal(t, "d002", records[1].Department.DeptNo)
			assert.Equal(t, "Finance", records[1].Department.DeptName)
		}
		if assert.NotNil(t, records[1].Salary) {
			assert.Equal(t, int64(90000), *records[1].Salary)
		}
		if assert.NotNil(t, records[1].Title) {
			assert.Equal(t, "Senior Staff", *records[1].Title)
		}
		assert.Equal(t, int64(1), records[2].EmpNo)
	}

	// windows concatenate to the unwindowed result
	order := data.EmployeeOrder{SortBy: data.SortByName, SortOrder: data.SortOrderAsc}
	all, err := s.EmployeesFetch(ctx, data.EmployeeCriteria{}, order, 0, 0)
	assert.Nil(t, err)
	assert.Len(t, all, nGenerated+4)
	var windowed []*data.EmployeeRecord
	for offset := 0; offset < len(all); offset += 25 {
		records, err := s.EmployeesFetch(ctx, data.EmployeeCriteria{}, order, offset, 25)
		assert.Nil(t, err)
		windowed = append(windowed, records...)
	}
	assert.Equal(t, all, windowed)

	// birth date bounds
	until := s.now.AddDate(-40, 0, 0)
	records, err = s.EmployeesFetch(ctx, data.EmployeeCriteria{
		EmpNos:         []int64{1, 2},
		BirthDateUntil: &until,
	}, order, 0, 0)
	assert.Nil(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, int64(2), records[0].EmpNo)
	}
	count, err := s.EmployeesCount(ctx, data.EmployeeCriteria{
		EmpNos:         []int64{1, 2},
		BirthDateAfter: &until,
	})
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)
}

func (s *sqlTest) TestEmployeeNames(t *testing.T) {
	ctx := context.TODO()

	names, err := s.EmployeeNames(ctx, "ann", 10)
	assert.Nil(t, err)
	assert.Contains(t, names, "Anna Lee")
	assert.LessOrEqual(t, len(names), 10)
	for _, name := range names {
		assert.Contains(t, strings.ToLower(name), "ann")
	}
}

func (s *sqlTest) TestRanges(t *testing.T) {
	ctx := context.TODO()

	minSalary, maxSalary, err := s.SalaryRange(ctx)
	assert.Nil(t, err)
	if assert.NotNil(t, minSalary) && assert.NotNil(t, maxSalary) {
		assert.Equal(t, int64(25000), *minSalary)
		assert.GreaterOrEqual(t, *maxSalary, int64(90000))
	}
	minBirthDate, maxBirthDate, err := s.BirthDateRange(ctx)
	assert.Nil(t, err)
	if assert.NotNil(t, minBirthDate) && assert.NotNil(t, maxBirthDate) {
		assert.True(t, minBirthDate.Before(*maxBirthDate))
	}
	departments, err := s.Departments(ctx)
	assert.Nil(t, err)
	if assert.Len(t, departments, len(fixtures.Departments())) {
		assert.Equal(t, &data.Department{DeptNo: "d001", DeptName: "Marketing"}, departments[0])
	}
}

func testSql(t *testing.T) {
	ctx := context.TODO()

	db, err := stdsql.Open(sql.DriverSqlite, ":memory:")
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open database")
	}
	db.SetMaxOpenConns(1)
	defer db.Close()
	c := newSqlTest(db)
	err = c.sql.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure sqlTest")
	}
	err = c.sql.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open sqlTest")
	}
	defer func() {
		_ = c.sql.Close(ctx)
	}()
	employees := append(fixtures.Scenario(c.now), fixtures.SameDayTransfers(c.now)...)
	employees = append(employees, fixtures.Generate(c.now, nGenerated)...)
	if err := fixtures.Load(ctx, db, employees...); !assert.Nil(t, err) {
		assert.FailNow(t, "unable to load fixtures")
	}
	t.Run("Employee Read", c.TestEmployeeRead)
	t.Run("Employee History", c.TestEmployeeHistory)
	t.Run("Departments", c.TestEmpNosByDepartments)
	t.Run("Salary Range", c.TestEmpNosBySalaryRange)
	t.Run("Name Pairs", c.TestEmpNosByNamePairs)
	t.Run("Literal Match", c.TestEmployeesLiteralMatch)
	t.Run("Employees Fetch", c.TestEmployeesFetch)
	t.Run("Employee Names", c.TestEmployeeNames)
	t.Run("Ranges", c.TestRanges)
}

func TestSql(t *testing.T) {
	testSql(t)
}
