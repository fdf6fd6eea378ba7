package sql

// schemaSqlite mirrors the subset of the mysql employees schema that's
// read, it's applied on Open() when using the sqlite3 driver
const schemaSqlite string = `
	CREATE TABLE IF NOT EXISTS employees (
		emp_no      INTEGER PRIMARY KEY,
		birth_date  DATE NOT NULL,
		first_name  VARCHAR(14) NOT NULL,
		last_name   VARCHAR(16) NOT NULL,
		gender      VARCHAR(1) NOT NULL,
		hire_date   DATE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_first_name ON employees(first_name);
	CREATE INDEX IF NOT EXISTS idx_employees_last_name ON employees(last_name);
	CREATE INDEX IF NOT EXISTS idx_employees_birth_date ON employees(birth_date);

	CREATE TABLE IF NOT EXISTS departments (
		dept_no     CHAR(4) PRIMARY KEY,
		dept_name   VARCHAR(40) NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS dept_emp (
		emp_no      INTEGER NOT NULL REFERENCES employees(emp_no) ON DELETE CASCADE,
		dept_no     CHAR(4) NOT NULL REFERENCES departments(dept_no) ON DELETE CASCADE,
		from_date   DATE NOT NULL,
		to_date     DATE NOT NULL,
		PRIMARY KEY (emp_no, dept_no)
	);

	CREATE INDEX IF NOT EXISTS idx_dept_emp_dept_no ON dept_emp(dept_no);

	CREATE TABLE IF NOT EXISTS salaries (
		emp_no      INTEGER NOT NULL REFERENCES employees(emp_no) ON DELETE CASCADE,
		salary      INTEGER NOT NULL,
		from_date   DATE NOT NULL,
		to_date     DATE NOT NULL,
		PRIMARY KEY (emp_no, from_date)
	);

	CREATE TABLE IF NOT EXISTS titles (
		emp_no      INTEGER NOT NULL REFERENCES employees(emp_no) ON DELETE CASCADE,
		title       VARCHAR(50) NOT NULL,
		from_date   DATE NOT NULL,
		to_date     DATE,
		PRIMARY KEY (emp_no, title, from_date)
	);
`
