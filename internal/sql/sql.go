package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3" //import for driver support
)

const (
	DriverMysql  string = "mysql"
	DriverSqlite string = "sqlite3"
)

const (
	tableEmployees   = "employees"
	tableDepartments = "departments"
	tableDeptEmp     = "dept_emp"
	tableSalaries    = "salaries"
	tableTitles      = "titles"
)

// Sql is read-only: every value is bound as a parameter, only
// whitelisted identifiers are ever formatted into a query
type Sql interface {
	EmployeeRead(ctx context.Context, empNo int64) (*data.Employee, error)
	EmployeeDepartments(ctx context.Context, empNo int64) ([]*data.DeptEmp, error)
	EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error)
	EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error)
	EmployeesFetch(ctx context.Context, criteria data.EmployeeCriteria, order data.EmployeeOrder, offset, limit int) ([]*data.EmployeeRecord, error)
	EmployeesCount(ctx context.Context, criteria data.EmployeeCriteria) (int64, error)
	EmpNosByDepartments(ctx context.Context, deptNos ...string) ([]int64, error)
	EmpNosBySalaryRange(ctx context.Context, minSalary, maxSalary *int64) ([]int64, error)
	EmpNosByNamePairs(ctx context.Context, namePairs ...data.NamePair) ([]int64, error)
	EmployeeNames(ctx context.Context, term string, limit int) ([]string, error)
	SalaryRange(ctx context.Context) (minSalary, maxSalary *int64, err error)
	BirthDateRange(ctx context.Context) (minBirthDate, maxBirthDate *time.Time, err error)
	Departments(ctx context.Context) ([]*data.Department, error)
}

type mySql struct {
	sync.RWMutex
	config struct {
		Driver          string        `json:"driver"`
		Hostname        string        `json:"hostname"`
		Port            string        `json:"port"`
		Username        string        `json:"username"`
		Password        string        `json:"password"`
		Database        string        `json:"database"`
		File            string        `json:"file"`
		ConnectTimeout  time.Duration `json:"connect_timeout"`
		QueryTimeout    time.Duration `json:"query_timeout"`
		ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
		MaxOpenConns    int           `json:"max_open_conns"`
		MaxIdleConns    int           `json:"max_idle_conns"`
	}
	*sql.DB
	utilities.Logger
	opened bool
	owned  bool
}

// NewMySql accepts a utilities.Logger and optionally an already open
// *sql.DB; when a *sql.DB is provided it's used as is and isn't closed
// by Close()
func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	m := &mySql{}
	m.config.Driver = DriverMysql
	m.config.ConnectTimeout = 10 * time.Second
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		case *sql.DB:
			m.DB = v
		}
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	if driver := envs["DATABASE_DRIVER"]; driver != "" {
		switch driver {
		default:
			return fmt.Errorf("unsupported database driver: %s", driver)
		case DriverMysql, DriverSqlite:
			s.config.Driver = driver
		}
	}
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if file := envs["DATABASE_FILE"]; file != "" {
		s.config.File = file
	}
	if _, ok := envs["DATABASE_CONNECT_TIMEOUT"]; ok {
		i, _ := strconv.ParseInt(envs["DATABASE_CONNECT_TIMEOUT"], 10, 64)
		if i > 0 {
			s.config.ConnectTimeout = time.Duration(i) * time.Second
		}
	}
	if _, ok := envs["DATABASE_QUERY_TIMEOUT"]; ok {
		i, _ := strconv.ParseInt(envs["DATABASE_QUERY_TIMEOUT"], 10, 64)
		s.config.QueryTimeout = time.Duration(i) * time.Second
	}
	if _, ok := envs["DATABASE_CONN_MAX_LIFETIME"]; ok {
		i, _ := strconv.ParseInt(envs["DATABASE_CONN_MAX_LIFETIME"], 10, 64)
		s.config.ConnMaxLifetime = time.Duration(i) * time.Second
	}
	if _, ok := envs["DATABASE_MAX_OPEN_CONNS"]; ok {
		s.config.MaxOpenConns, _ = strconv.Atoi(envs["DATABASE_MAX_OPEN_CONNS"])
	}
	if _, ok := envs["DATABASE_MAX_IDLE_CONNS"]; ok {
		s.config.MaxIdleConns, _ = strconv.Atoi(envs["DATABASE_MAX_IDLE_CONNS"])
	}
	return nil
}

func (s *mySql) dataSourceName() string {
	switch s.config.Driver {
	default:
		config := mysql.NewConfig()
		config.User = s.config.Username
		config.Passwd = s.config.Password
		config.Net = "tcp"
		config.Addr = net.JoinHostPort(s.config.Hostname, s.config.Port)
		config.DBName = s.config.Database
		config.ParseTime = true
		config.Timeout = s.config.ConnectTimeout
		return config.FormatDSN()
	case DriverSqlite:
		file := s.config.File
		if file == "" {
			file = ":memory:"
		}
		return file + "?_foreign_keys=on"
	}
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	if s.DB == nil {
		db, err := sql.Open(s.config.Driver, s.dataSourceName())
		if err != nil {
			return err
		}
		s.DB, s.owned = db, true
		if s.config.Driver == DriverSqlite && (s.config.File == "" || s.config.File == ":memory:") {
			//every connection to :memory: is a different database
			s.DB.SetMaxOpenConns(1)
		}
	}
	if s.config.MaxOpenConns > 0 {
		s.DB.SetMaxOpenConns(s.config.MaxOpenConns)
	}
	if s.config.MaxIdleConns > 0 {
		s.DB.SetMaxIdleConns(s.config.MaxIdleConns)
	}
	if s.config.ConnMaxLifetime > 0 {
		s.DB.SetConnMaxLifetime(s.config.ConnMaxLifetime)
	}
	if _, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.DB.PingContext(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.config.ConnectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.info(ctx, "unable to ping database (retrying in %v): %s", next, err)
		}),
	); err != nil {
		s.close()
		return err
	}
	if s.config.Driver == DriverSqlite {
		if _, err := s.ExecContext(ctx, schemaSqlite); err != nil {
			s.close()
			return err
		}
	}
	s.opened = true
	return nil
}

func (s *mySql) close() {
	if s.owned && s.DB != nil {
		_ = s.DB.Close()
		s.DB, s.owned = nil, false
	}
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if s.owned {
		if err := s.DB.Close(); err != nil {
			s.error(ctx, "error while closing sql: %s", err)
		}
		s.DB, s.owned = nil, false
	}
	s.opened = false
	return nil
}

func (s *mySql) EmployeeRead(ctx context.Context, empNo int64) (*data.Employee, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	query := fmt.Sprintf(`SELECT emp_no, birth_date, first_name, last_name,
		gender, hire_date FROM %s WHERE emp_no = ?;`, tableEmployees)
	row := s.QueryRowContext(ctx, query, empNo)
	employee, err := employeeScan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, data.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *mySql) EmployeeDepartments(ctx context.Context, empNo int64) ([]*data.DeptEmp, error) {
	var deptEmps []*data.DeptEmp

	query := fmt.Sprintf(`SELECT de.emp_no, de.dept_no, d.dept_name, de.from_date, de.to_date
		FROM %s de JOIN %s d ON d.dept_no = de.dept_no
		WHERE de.emp_no = ? ORDER BY de.from_date DESC, de.dept_no;`,
		tableDeptEmp, tableDepartments)
	if err := s.query(ctx, query, []any{empNo}, func(scanFx func(...any) error) error {
		deptEmp := new(data.DeptEmp)
		if err := scanFx(&deptEmp.EmpNo, &deptEmp.DeptNo, &deptEmp.DeptName,
			&deptEmp.FromDate, &deptEmp.ToDate); err != nil {
			return err
		}
		deptEmps = append(deptEmps, deptEmp)
		return nil
	}); err != nil {
		return nil, err
	}
	return deptEmps, nil
}

func (s *mySql) EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error) {
	var salaries []*data.Salary

	query := fmt.Sprintf(`SELECT emp_no, salary, from_date, to_date FROM %s
		WHERE emp_no = ? ORDER BY from_date DESC;`, tableSalaries)
	if err := s.query(ctx, query, []any{empNo}, func(scanFx func(...any) error) error {
		salary := new(data.Salary)
		if err := scanFx(&salary.EmpNo, &salary.Salary,
			&salary.FromDate, &salary.ToDate); err != nil {
			return err
		}
		salaries = append(salaries, salary)
		return nil
	}); err != nil {
		return nil, err
	}
	return salaries, nil
}

func (s *mySql) EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error) {
	var titles []*data.Title

	query := fmt.Sprintf(`SELECT emp_no, title, from_date, to_date FROM %s
		WHERE emp_no = ? ORDER BY from_date DESC, title;`, tableTitles)
	if err := s.query(ctx, query, []any{empNo}, func(scanFx func(...any) error) error {
		title := new(data.Title)
		if err := scanFx(&title.EmpNo, &title.Title,
			&title.FromDate, &title.ToDate); err != nil {
			return err
		}
		titles = append(titles, title)
		return nil
	}); err != nil {
		return nil, err
	}
	return titles, nil
}

// EmployeesFetch returns employees matching the criteria each with the
// latest row of its history tables; a limit <= 0 fetches everything
func (s *mySql) EmployeesFetch(ctx context.Context, criteria data.EmployeeCriteria, order data.EmployeeOrder, offset, limit int) ([]*data.EmployeeRecord, error) {
	var records []*data.EmployeeRecord

	where, args := employeeCriteria(criteria)
	query := fmt.Sprintf(queryEmployeeRecords, where, employeeOrder(order, s.config.Driver))
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	if err := s.query(ctx, query, args, func(scanFx func(...any) error) error {
		record, err := employeeRecordScan(scanFx)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	}); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *mySql) EmployeesCount(ctx context.Context, criteria data.EmployeeCriteria) (int64, error) {
	var count int64

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	where, args := employeeCriteria(criteria)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s e %s;", tableEmployees, where)
	if err := s.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

// EmpNosByDepartments returns the employees whose current department
// is one of deptNos; the current department is the one with the latest
// from_date, the lowest dept_no if more than one started that day
func (s *mySql) EmpNosByDepartments(ctx context.Context, deptNos ...string) ([]int64, error) {
	if len(deptNos) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(deptNos))
	for _, deptNo := range deptNos {
		args = append(args, deptNo)
	}
	query := fmt.Sprintf(queryEmpNosByDepartments, placeholders(len(deptNos)))
	return s.empNos(ctx, query, args)
}

// EmpNosBySalaryRange returns the employees whose current (latest
// from_date) salary is within [minSalary, maxSalary]
func (s *mySql) EmpNosBySalaryRange(ctx context.Context, minSalary, maxSalary *int64) ([]int64, error) {
	var conditions []string
	var args []any

	if minSalary != nil {
		conditions = append(conditions, "s.salary >= ?")
		args = append(args, *minSalary)
	}
	if maxSalary != nil {
		conditions = append(conditions, "s.salary <= ?")
		args = append(args, *maxSalary)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return s.empNos(ctx, fmt.Sprintf(queryEmpNosBySalaries, where), args)
}

// EmpNosByNamePairs evaluates any number of name pairs with a single
// bound (json) parameter
func (s *mySql) EmpNosByNamePairs(ctx context.Context, namePairs ...data.NamePair) ([]int64, error) {
	if len(namePairs) == 0 {
		return nil, nil
	}
	patterns := make([]data.NamePair, 0, len(namePairs))
	for _, namePair := range namePairs {
		patterns = append(patterns, data.NamePair{
			First: likeContains(namePair.First),
			Last:  likeContains(namePair.Last),
		})
	}
	bytes, err := json.Marshal(patterns)
	if err != nil {
		return nil, err
	}
	query := queryEmpNosByNamePairsMysql
	if s.config.Driver == DriverSqlite {
		query = queryEmpNosByNamePairsSqlite
	}
	return s.empNos(ctx, query, []any{string(bytes)})
}

func (s *mySql) EmployeeNames(ctx context.Context, term string, limit int) ([]string, error) {
	var names []string

	pattern := likeContains(term)
	query := fmt.Sprintf(`SELECT DISTINCT first_name, last_name FROM %s
		WHERE first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!'
		ORDER BY first_name, last_name LIMIT ?;`, tableEmployees)
	if err := s.query(ctx, query, []any{pattern, pattern, limit}, func(scanFx func(...any) error) error {
		var firstName, lastName string

		if err := scanFx(&firstName, &lastName); err != nil {
			return err
		}
		names = append(names, firstName+" "+lastName)
		return nil
	}); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *mySql) SalaryRange(ctx context.Context) (*int64, *int64, error) {
	var minSalary, maxSalary sql.NullInt64

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	query := fmt.Sprintf("SELECT MIN(salary), MAX(salary) FROM %s;", tableSalaries)
	if err := s.QueryRowContext(ctx, query).Scan(&minSalary, &maxSalary); err != nil {
		return nil, nil, err
	}
	return nullInt64(minSalary), nullInt64(maxSalary), nil
}

func (s *mySql) BirthDateRange(ctx context.Context) (*time.Time, *time.Time, error) {
	var minBirthDate, maxBirthDate any

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	query := fmt.Sprintf("SELECT MIN(birth_date), MAX(birth_date) FROM %s;", tableEmployees)
	if err := s.QueryRowContext(ctx, query).Scan(&minBirthDate, &maxBirthDate); err != nil {
		return nil, nil, err
	}
	return parseDate(minBirthDate), parseDate(maxBirthDate), nil
}

func (s *mySql) Departments(ctx context.Context) ([]*data.Department, error) {
	var departments []*data.Department

	query := fmt.Sprintf("SELECT dept_no, dept_name FROM %s ORDER BY dept_no;",
		tableDepartments)
	if err := s.query(ctx, query, nil, func(scanFx func(...any) error) error {
		department := new(data.Department)
		if err := scanFx(&department.DeptNo, &department.DeptName); err != nil {
			return err
		}
		departments = append(departments, department)
		return nil
	}); err != nil {
		return nil, err
	}
	return departments, nil
}
