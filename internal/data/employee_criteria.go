package data

import "time"

// NamePair is one entry of a bulk name list: the first token must be
// contained in the first name and the remainder in the last name.
type NamePair struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// EmployeeCriteria holds the predicates that can be expressed directly
// against the employees table; zero values mean no restriction.
type EmployeeCriteria struct {
	Name           string
	NamePairs      []NamePair
	BirthDateAfter *time.Time //exclusive
	BirthDateUntil *time.Time //inclusive
	EmpNos         []int64
}

type EmployeeOrder struct {
	SortBy    SortBy
	SortOrder SortOrder
}
