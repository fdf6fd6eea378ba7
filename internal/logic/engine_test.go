package logic_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/logic"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(i int64) *int64 {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestSplitName(t *testing.T) {
	for _, c := range []struct {
		name     string
		expected data.NamePair
		ok       bool
	}{
		{name: "Anna Lee", expected: data.NamePair{First: "Anna", Last: "Lee"}, ok: true},
		{name: "  Jun   Van der Berg ", expected: data.NamePair{First: "Jun", Last: "Van der Berg"}, ok: true},
		{name: "Anna", expected: data.NamePair{First: "Anna"}, ok: true},
		{name: "   ", ok: false},
	} {
		namePair, ok := logic.SplitName(c.name)
		assert.Equal(t, c.ok, ok, c.name)
		assert.Equal(t, c.expected, namePair, c.name)
	}
}

func TestCompileFilters(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)

	//names are split and de-duplicated
	filters := logic.CompileFilters(data.EmployeeQuery{
		Names: []string{"Anna Lee", "Anna  Lee", "Bob"},
	}, now)
	assert.Equal(t, []data.NamePair{{First: "Anna", Last: "Lee"}, {First: "Bob"}}, filters.NamePairs)
	assert.False(t, filters.BulkNames())
	assert.Equal(t, filters.NamePairs, filters.Criteria().NamePairs)

	//bulk names aren't part of the fetch criteria
	var names []string
	for i := 0; i < 1000; i++ {
		names = append(names, fmt.Sprintf("First%d Last%d", i, i))
	}
	filters = logic.CompileFilters(data.EmployeeQuery{Names: names}, now)
	assert.True(t, filters.BulkNames())
	assert.Empty(t, filters.Criteria().NamePairs)

	//age bounds
	filters = logic.CompileFilters(data.EmployeeQuery{
		MinAge: int64Ptr(30),
		MaxAge: int64Ptr(40),
	}, now)
	if assert.NotNil(t, filters.BirthDateUntil) && assert.NotNil(t, filters.BirthDateAfter) {
		assert.True(t, filters.BirthDateAfter.Before(*filters.BirthDateUntil))
		assert.Equal(t, 0, filters.BirthDateUntil.Hour())
	}

	//absurd ages don't overflow
	filters = logic.CompileFilters(data.EmployeeQuery{
		MinAge: int64Ptr(math.MaxInt64),
		MaxAge: int64Ptr(math.MinInt64),
	}, now)
	if assert.NotNil(t, filters.BirthDateUntil) && assert.NotNil(t, filters.BirthDateAfter) {
		assert.True(t, filters.BirthDateUntil.Before(now))
		assert.Equal(t, now.Format(data.DateFormat), filters.BirthDateAfter.Format(data.DateFormat))
	}
}

// every birth date around the bounds is selected if and only if the age
// reported for it is within the range
func TestAgeBoundsConsistency(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	} {
		for _, ages := range [][2]int64{{30, 30}, {20, 45}, {0, 1}} {
			minAge, maxAge := ages[0], ages[1]
			filters := logic.CompileFilters(data.EmployeeQuery{
				MinAge: &minAge,
				MaxAge: &maxAge,
			}, now)
			start := time.Date(now.Year()-int(maxAge)-2, 1, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(now.Year()-int(minAge)+1, 12, 31, 0, 0, 0, 0, time.UTC)
			for birthDate := start; !birthDate.After(end); birthDate = birthDate.AddDate(0, 0, 1) {
				selected := !birthDate.After(*filters.BirthDateUntil) &&
					birthDate.After(*filters.BirthDateAfter)
				age := int64(logic.Age(birthDate, now))
				if !assert.Equal(t, age >= minAge && age <= maxAge, selected,
					"now: %s, birth date: %s, age: %d", now, birthDate.Format(data.DateFormat), age) {
					return
				}
			}
		}
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, logic.Age(now, now))
	assert.Equal(t, 30, logic.Age(now.AddDate(-30, 0, -10), now))
	assert.Equal(t, 29, logic.Age(now.AddDate(-30, 0, 10), now))
	assert.Equal(t, -1, logic.Age(now.AddDate(0, 0, 1), now))
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []int64{2, 5}, logic.Intersect([]int64{1, 2, 3, 5, 8}, []int64{2, 4, 5, 9}))
	assert.Empty(t, logic.Intersect([]int64{1, 3}, []int64{2, 4}))
	assert.Empty(t, logic.Intersect(nil, []int64{2, 4}))
}

func TestBatches(t *testing.T) {
	var empNos []int64
	for i := int64(0); i < 25; i++ {
		empNos = append(empNos, i)
	}
	batches := logic.Batches(empNos, 10)
	if assert.Len(t, batches, 3) {
		assert.Len(t, batches[0], 10)
		assert.Len(t, batches[1], 10)
		assert.Equal(t, []int64{20, 21, 22, 23, 24}, batches[2])
	}
	assert.Len(t, logic.Batches(empNos[:20], 10), 2)
	assert.Empty(t, logic.Batches(nil, 10))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, logic.Paginate(items, 1, 3))
	assert.Equal(t, []int{4, 5, 6}, logic.Paginate(items, 2, 3))
	assert.Equal(t, []int{7}, logic.Paginate(items, 3, 3))
	assert.Empty(t, logic.Paginate(items, 4, 3))
	assert.Empty(t, logic.Paginate(items, math.MaxInt, 3))
	assert.Equal(t, items, logic.Paginate(items, 1, math.MaxInt))
	assert.Equal(t, 0, logic.Offset(0, 50))
	assert.Equal(t, 100, logic.Offset(3, 50))
	assert.Equal(t, math.MaxInt, logic.Offset(math.MaxInt, 50))
	assert.Equal(t, int64(0), logic.TotalPages(0, 50))
	assert.Equal(t, int64(1), logic.TotalPages(50, 50))
	assert.Equal(t, int64(2), logic.TotalPages(51, 50))
}

func TestSelectStrategy(t *testing.T) {
	inline := logic.Constraint{Kind: logic.InlineIds, EmpNos: []int64{1}}
	deferred := logic.Constraint{Kind: logic.DeferredIds, EmpNos: []int64{1}}
	none := logic.Constraint{Kind: logic.NoConstraint}

	for _, sortBy := range []data.SortBy{data.SortByEmpNo,
		data.SortByFirstName, data.SortByLastName, data.SortByBirthDate,
		data.SortByHireDate, data.SortByGender} {
		assert.Equal(t, logic.StrategyPushdown, logic.SelectStrategy(sortBy, none))
		assert.Equal(t, logic.StrategyPushdown, logic.SelectStrategy(sortBy, inline))
		assert.Equal(t, logic.StrategyMaterialize, logic.SelectStrategy(sortBy, deferred))
	}
	for _, sortBy := range []data.SortBy{data.SortByDepartment, data.SortBySalary, data.SortByName} {
		assert.Equal(t, logic.StrategyMaterialize, logic.SelectStrategy(sortBy, none))
		assert.Equal(t, logic.StrategyMaterialize, logic.SelectStrategy(sortBy, inline))
	}
}

func TestSortRecords(t *testing.T) {
	newRecords := func() []*data.EmployeeRecord {
		return []*data.EmployeeRecord{
			{Employee: data.Employee{EmpNo: 1, FirstName: "émile", LastName: "Zola"},
				Department: &data.Department{DeptNo: "d002", DeptName: "Finance"}, Salary: int64Ptr(50000)},
			{Employee: data.Employee{EmpNo: 2, FirstName: "Bob", LastName: "Lee"},
				Salary: int64Ptr(90000)},
			{Employee: data.Employee{EmpNo: 3, FirstName: "anna", LastName: "Lee"},
				Department: &data.Department{DeptNo: "d001", DeptName: "Marketing"}},
			{Employee: data.Employee{EmpNo: 4, FirstName: "Eric", LastName: "Adams"},
				Department: &data.Department{DeptNo: "d002", DeptName: "Finance"}, Salary: int64Ptr(50000)},
		}
	}
	empNos := func(records []*data.EmployeeRecord) []int64 {
		var empNos []int64
		for _, record := range records {
			empNos = append(empNos, record.EmpNo)
		}
		return empNos
	}

	//absent salary sorts as 0, ties keep their order in both directions
	records := newRecords()
	logic.SortRecords(records, data.SortBySalary, data.SortOrderAsc)
	assert.Equal(t, []int64{3, 1, 4, 2}, empNos(records))
	records = newRecords()
	logic.SortRecords(records, data.SortBySalary, data.SortOrderDesc)
	assert.Equal(t, []int64{2, 1, 4, 3}, empNos(records))

	//absent department sorts as "No Department"
	records = newRecords()
	logic.SortRecords(records, data.SortByDepartment, data.SortOrderAsc)
	assert.Equal(t, []int64{1, 4, 3, 2}, empNos(records))

	//names are compared ignoring case and accents
	records = newRecords()
	logic.SortRecords(records, data.SortByName, data.SortOrderAsc)
	assert.Equal(t, []int64{3, 2, 1, 4}, empNos(records))
	records = newRecords()
	logic.SortRecords(records, data.SortByName, data.SortOrderDesc)
	assert.Equal(t, []int64{4, 1, 2, 3}, empNos(records))

	//stored text columns are compared by their bytes
	records = newRecords()
	logic.SortRecords(records, data.SortByFirstName, data.SortOrderAsc)
	assert.Equal(t, []int64{2, 4, 3, 1}, empNos(records))
	records = newRecords()
	logic.SortRecords(records, data.SortByLastName, data.SortOrderDesc)
	assert.Equal(t, []int64{1, 2, 3, 4}, empNos(records))
}

func TestProject(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	birthDate := now.AddDate(-45, 0, -10)

	summary := logic.Project(&data.EmployeeRecord{
		Employee: data.Employee{EmpNo: 2, FirstName: "Bob", LastName: "Lee",
			Gender: "M", BirthDate: birthDate},
	}, now)
	assert.Equal(t, "Bob Lee", summary.Name)
	assert.Equal(t, data.DepartmentNone, summary.Department)
	assert.Nil(t, summary.DeptNo)
	assert.Equal(t, data.TitleNone, summary.Title)
	assert.Equal(t, int64(0), summary.Salary)
	assert.Equal(t, 45, summary.Age)

	summary = logic.Project(&data.EmployeeRecord{
		Employee:   data.Employee{EmpNo: 2, FirstName: "Bob", LastName: "Lee", BirthDate: birthDate},
		Department: &data.Department{DeptNo: "d002", DeptName: "Finance"},
		Salary:     int64Ptr(90000),
		Title:      stringPtr("Senior Staff"),
	}, now)
	assert.Equal(t, "Finance", summary.Department)
	assert.Equal(t, stringPtr("d002"), summary.DeptNo)
	assert.Equal(t, "Senior Staff", summary.Title)
	assert.Equal(t, int64(90000), summary.Salary)
}
