package logic

import (
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

// Age is the number of whole 365.25 day years between birthDate and now
func Age(birthDate, now time.Time) int {
	d := now.Sub(birthDate)
	age := d / year
	if d < 0 && d%year != 0 {
		age--
	}
	return int(age)
}

func Project(record *data.EmployeeRecord, now time.Time) *data.EmployeeSummary {
	summary := &data.EmployeeSummary{
		EmpNo:      record.EmpNo,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Name:       record.FirstName + " " + record.LastName,
		Gender:     record.Gender,
		BirthDate:  record.BirthDate,
		HireDate:   record.HireDate,
		Department: departmentName(record),
		Title:      data.TitleNone,
		Salary:     salary(record),
		Age:        Age(record.BirthDate, now),
	}
	if record.Department != nil {
		deptNo := record.Department.DeptNo
		summary.DeptNo = &deptNo
	}
	if record.Title != nil {
		summary.Title = *record.Title
	}
	return summary
}

func projectAll(records []*data.EmployeeRecord, now time.Time) []*data.EmployeeSummary {
	summaries := make([]*data.EmployeeSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, Project(record, now))
	}
	return summaries
}
