package logic

import (
	"cmp"
	"slices"

	"github.com/antonio-alexander/go-employee-query/internal/data"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Strategy string

const (
	// StrategyPushdown orders and paginates within the fetch query
	StrategyPushdown Strategy = "pushdown"

	// StrategyMaterialize fetches the complete filtered set and orders
	// it in memory
	StrategyMaterialize Strategy = "materialize"
)

// SelectStrategy is decided once per request: keys derived from the
// latest row of a history table, the collated full name and deferred
// identifier sets (which can't be embedded in a single query) are
// materialized
func SelectStrategy(sortBy data.SortBy, constraint Constraint) Strategy {
	if sortBy.Native() && constraint.Kind != DeferredIds {
		return StrategyPushdown
	}
	return StrategyMaterialize
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.Loose)
}

func departmentName(record *data.EmployeeRecord) string {
	if record.Department == nil {
		return data.DepartmentNone
	}
	return record.Department.DeptName
}

func salary(record *data.EmployeeRecord) int64 {
	if record.Salary == nil {
		return 0
	}
	return *record.Salary
}

// comparator orders stored text columns by their bytes (as the store
// does when the sort is pushed down), the full name and department name
// are compared with the collator
func comparator(sortBy data.SortBy, collator *collate.Collator) func(a, b *data.EmployeeRecord) int {
	switch sortBy {
	default:
		return func(a, b *data.EmployeeRecord) int {
			return cmp.Compare(a.EmpNo, b.EmpNo)
		}
	case data.SortBySalary:
		return func(a, b *data.EmployeeRecord) int {
			return cmp.Compare(salary(a), salary(b))
		}
	case data.SortByDepartment:
		return func(a, b *data.EmployeeRecord) int {
			return collator.CompareString(departmentName(a), departmentName(b))
		}
	case data.SortByName:
		return func(a, b *data.EmployeeRecord) int {
			if c := collator.CompareString(a.FirstName, b.FirstName); c != 0 {
				return c
			}
			return collator.CompareString(a.LastName, b.LastName)
		}
	case data.SortByFirstName:
		return func(a, b *data.EmployeeRecord) int {
			return cmp.Compare(a.FirstName, b.FirstName)
		}
	case data.SortByLastName:
		return func(a, b *data.EmployeeRecord) int {
			return cmp.Compare(a.LastName, b.LastName)
		}
	case data.SortByBirthDate:
		return func(a, b *data.EmployeeRecord) int {
			return a.BirthDate.Compare(b.BirthDate)
		}
	case data.SortByHireDate:
		return func(a, b *data.EmployeeRecord) int {
			return a.HireDate.Compare(b.HireDate)
		}
	case data.SortByGender:
		return func(a, b *data.EmployeeRecord) int {
			return cmp.Compare(a.Gender, b.Gender)
		}
	}
}

// SortRecords is a stable sort: records that compare equal keep the
// order in which they were materialized, regardless of direction
func SortRecords(records []*data.EmployeeRecord, sortBy data.SortBy, sortOrder data.SortOrder) {
	compareFx := comparator(sortBy, newCollator())
	if sortOrder == data.SortOrderDesc {
		slices.SortStableFunc(records, func(a, b *data.EmployeeRecord) int {
			return -compareFx(a, b)
		})
		return
	}
	slices.SortStableFunc(records, compareFx)
}
