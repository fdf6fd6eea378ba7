package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

const likeEscape string = "!"

// queryEmployeeRecords projects the latest row of each history table,
// ties on from_date resolve to the lowest dept_no/title
const queryEmployeeRecords string = `SELECT e.emp_no, e.birth_date, e.first_name, e.last_name, e.gender, e.hire_date,
	(SELECT de.dept_no FROM dept_emp de WHERE de.emp_no = e.emp_no
		ORDER BY de.from_date DESC, de.dept_no LIMIT 1) AS dept_no,
	(SELECT d.dept_name FROM dept_emp de JOIN departments d ON d.dept_no = de.dept_no
		WHERE de.emp_no = e.emp_no ORDER BY de.from_date DESC, de.dept_no LIMIT 1) AS dept_name,
	(SELECT s.salary FROM salaries s WHERE s.emp_no = e.emp_no
		ORDER BY s.from_date DESC LIMIT 1) AS salary,
	(SELECT t.title FROM titles t WHERE t.emp_no = e.emp_no
		ORDER BY t.from_date DESC, t.title LIMIT 1) AS title
	FROM employees e %s ORDER BY %s`

// queryEmpNosByDepartments resolves same day ties the way
// queryEmployeeRecords does, only the lowest dept_no is current
const queryEmpNosByDepartments string = `SELECT de.emp_no FROM dept_emp de
	JOIN (SELECT emp_no, MAX(from_date) AS from_date FROM dept_emp GROUP BY emp_no) latest
		ON latest.emp_no = de.emp_no AND latest.from_date = de.from_date
	GROUP BY de.emp_no HAVING MIN(de.dept_no) IN(%s) ORDER BY de.emp_no;`

const queryEmpNosBySalaries string = `SELECT DISTINCT s.emp_no FROM salaries s
	JOIN (SELECT emp_no, MAX(from_date) AS from_date FROM salaries GROUP BY emp_no) latest
		ON latest.emp_no = s.emp_no AND latest.from_date = s.from_date
	%s ORDER BY s.emp_no;`

// json_table output columns are binary collated, the explicit collation
// keeps name matching case insensitive
const queryEmpNosByNamePairsMysql string = `SELECT DISTINCT e.emp_no FROM employees e
	JOIN JSON_TABLE(?, '$[*]' COLUMNS(
		first_pattern VARCHAR(256) PATH '$.first',
		last_pattern VARCHAR(256) PATH '$.last')) AS n
	ON e.first_name LIKE n.first_pattern COLLATE utf8mb4_0900_ai_ci ESCAPE '!'
		AND e.last_name LIKE n.last_pattern COLLATE utf8mb4_0900_ai_ci ESCAPE '!'
	ORDER BY e.emp_no;`

const queryEmpNosByNamePairsSqlite string = `SELECT DISTINCT e.emp_no FROM employees e
	JOIN json_each(?) AS n
	ON e.first_name LIKE json_extract(n.value, '$.first') ESCAPE '!'
		AND e.last_name LIKE json_extract(n.value, '$.last') ESCAPE '!'
	ORDER BY e.emp_no;`

func (s *mySql) error(ctx context.Context, format string, v ...any) {
	if s.Logger != nil {
		s.Logger.Error(ctx, format, v...)
	}
}

func (s *mySql) info(ctx context.Context, format string, v ...any) {
	if s.Logger != nil {
		s.Logger.Info(ctx, format, v...)
	}
}

func (s *mySql) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.config.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *mySql) query(ctx context.Context, query string, args []any, rowFx func(scanFx func(...any) error) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := rowFx(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *mySql) empNos(ctx context.Context, query string, args []any) ([]int64, error) {
	empNos := []int64{}
	if err := s.query(ctx, query, args, func(scanFx func(...any) error) error {
		var empNo int64

		if err := scanFx(&empNo); err != nil {
			return err
		}
		empNos = append(empNos, empNo)
		return nil
	}); err != nil {
		return nil, err
	}
	return empNos, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// likeContains escapes the LIKE wildcards within s (using ESCAPE '!')
// and wraps it for a contains match
func likeContains(s string) string {
	s = strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
	return "%" + s + "%"
}

func employeeCriteria(search data.EmployeeCriteria) (string, []any) {
	var args []any
	var criteria []string

	if name := search.Name; name != "" {
		pattern := likeContains(name)
		criteria = append(criteria, "(e.first_name LIKE ? ESCAPE '!' OR e.last_name LIKE ? ESCAPE '!')")
		args = append(args, pattern, pattern)
	}
	if namePairs := search.NamePairs; len(namePairs) > 0 {
		var parameters []string

		for _, namePair := range namePairs {
			parameters = append(parameters, "(e.first_name LIKE ? ESCAPE '!' AND e.last_name LIKE ? ESCAPE '!')")
			args = append(args, likeContains(namePair.First), likeContains(namePair.Last))
		}
		criteria = append(criteria, "("+strings.Join(parameters, " OR ")+")")
	}
	if search.BirthDateAfter != nil {
		criteria = append(criteria, "e.birth_date > ?")
		args = append(args, search.BirthDateAfter.Format(data.DateFormat))
	}
	if search.BirthDateUntil != nil {
		criteria = append(criteria, "e.birth_date <= ?")
		args = append(args, search.BirthDateUntil.Format(data.DateFormat))
	}
	if empNos := search.EmpNos; len(empNos) > 0 {
		for _, empNo := range empNos {
			args = append(args, empNo)
		}
		criteria = append(criteria, fmt.Sprintf("e.emp_no IN(%s)", placeholders(len(empNos))))
	}
	if len(criteria) <= 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(criteria, " AND "), args
}

// employeeOrder only ever returns whitelisted columns; employee number
// is always the final (ascending) tie-break so pages are deterministic.
// Text columns are ordered by their bytes so the order doesn't depend on
// the column's collation.
func employeeOrder(order data.EmployeeOrder, driver string) string {
	direction := "ASC"
	if order.SortOrder == data.SortOrderDesc {
		direction = "DESC"
	}
	text := func(column string) string {
		if driver == DriverSqlite {
			return column + " COLLATE BINARY"
		}
		return "CAST(" + column + " AS BINARY)"
	}
	switch order.SortBy {
	default:
		return "e.emp_no ASC"
	case data.SortByEmpNo:
		return "e.emp_no " + direction
	case data.SortByName:
		return fmt.Sprintf("%[1]s %[3]s, %[2]s %[3]s, e.emp_no ASC",
			text("e.first_name"), text("e.last_name"), direction)
	case data.SortByFirstName:
		return fmt.Sprintf("%s %s, e.emp_no ASC", text("e.first_name"), direction)
	case data.SortByLastName:
		return fmt.Sprintf("%s %s, e.emp_no ASC", text("e.last_name"), direction)
	case data.SortByBirthDate:
		return fmt.Sprintf("e.birth_date %s, e.emp_no ASC", direction)
	case data.SortByHireDate:
		return fmt.Sprintf("e.hire_date %s, e.emp_no ASC", direction)
	case data.SortByGender:
		return fmt.Sprintf("%s %s, e.emp_no ASC", text("e.gender"), direction)
	}
}

func employeeScan(scanFx func(...any) error) (*data.Employee, error) {
	employee := new(data.Employee)
	if err := scanFx(
		&employee.EmpNo,
		&employee.BirthDate,
		&employee.FirstName,
		&employee.LastName,
		&employee.Gender,
		&employee.HireDate,
	); err != nil {
		return nil, err
	}
	return employee, nil
}

func employeeRecordScan(scanFx func(...any) error) (*data.EmployeeRecord, error) {
	var deptNo, deptName, title sql.NullString
	var salary sql.NullInt64

	record := new(data.EmployeeRecord)
	if err := scanFx(
		&record.EmpNo,
		&record.BirthDate,
		&record.FirstName,
		&record.LastName,
		&record.Gender,
		&record.HireDate,
		&deptNo,
		&deptName,
		&salary,
		&title,
	); err != nil {
		return nil, err
	}
	if deptNo.Valid {
		record.Department = &data.Department{
			DeptNo:   deptNo.String,
			DeptName: deptName.String,
		}
	}
	record.Salary = nullInt64(salary)
	if title.Valid {
		record.Title = &title.String
	}
	return record, nil
}

func nullInt64(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	return &i.Int64
}

// parseDate handles aggregated date columns, the mysql driver returns
// them as time.Time but sqlite returns text
func parseDate(v any) *time.Time {
	var s string

	switch v := v.(type) {
	default:
		return nil
	case time.Time:
		return &v
	case string:
		s = v
	case []byte:
		s = string(v)
	}
	if len(s) > len(data.DateFormat) {
		s = s[:len(data.DateFormat)]
	}
	t, err := time.ParseInLocation(data.DateFormat, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
