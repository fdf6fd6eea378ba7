package data

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	PageDefault  int = 1
	LimitDefault int = 50
)

const (
	ParameterPage        string = "page"
	ParameterLimit       string = "limit"
	ParameterSortBy      string = "sortBy"
	ParameterSortOrder   string = "sortOrder"
	ParameterName        string = "name"
	ParameterNames       string = "names"
	ParameterDepartments string = "departments"
	ParameterMinSalary   string = "minSalary"
	ParameterMaxSalary   string = "maxSalary"
	ParameterMinAge      string = "minAge"
	ParameterMaxAge      string = "maxAge"
)

type SortBy string

const (
	SortByEmpNo      SortBy = "empNo"
	SortByName       SortBy = "name"
	SortByDepartment SortBy = "department"
	SortBySalary     SortBy = "lastSalary"
	SortByFirstName  SortBy = "firstName"
	SortByLastName   SortBy = "lastName"
	SortByBirthDate  SortBy = "birthDate"
	SortByHireDate   SortBy = "hireDate"
	SortByGender     SortBy = "gender"
)

// AtoSortBy maps a raw sortBy parameter to a sort key, unknown values
// fall back to the employee number.
func AtoSortBy(s string) SortBy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	default:
		return SortByEmpNo
	case "name":
		return SortByName
	case "department":
		return SortByDepartment
	case "lastsalary", "salary":
		return SortBySalary
	case "firstname":
		return SortByFirstName
	case "lastname":
		return SortByLastName
	case "birthdate":
		return SortByBirthDate
	case "hiredate":
		return SortByHireDate
	case "gender":
		return SortByGender
	}
}

// Native reports whether the key is a column stored on the employees
// table (and can be ordered by the database). The full name is compared
// with a locale aware collator so it's ordered in memory along with the
// keys derived from history tables.
func (s SortBy) Native() bool {
	switch s {
	case SortByDepartment, SortBySalary, SortByName:
		return false
	}
	return true
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func AtoSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortOrderDesc)) {
		return SortOrderDesc
	}
	return SortOrderAsc
}

// EmployeeQuery is a filter/sort/paginate request; nil and empty fields
// match all employees.
type EmployeeQuery struct {
	Page        int       `json:"page"`
	Limit       int       `json:"limit"`
	SortBy      SortBy    `json:"sort_by"`
	SortOrder   SortOrder `json:"sort_order"`
	Name        string    `json:"name,omitempty"`
	Names       []string  `json:"names,omitempty"`
	Departments []string  `json:"departments,omitempty"`
	MinSalary   *int64    `json:"min_salary,omitempty"`
	MaxSalary   *int64    `json:"max_salary,omitempty"`
	MinAge      *int64    `json:"min_age,omitempty"`
	MaxAge      *int64    `json:"max_age,omitempty"`
}

// Normalize applies the documented defaults, it's safe to call more
// than once.
func (e *EmployeeQuery) Normalize() {
	if e.Page <= 0 {
		e.Page = PageDefault
	}
	if e.Limit <= 0 {
		e.Limit = LimitDefault
	}
	e.SortBy = AtoSortBy(string(e.SortBy))
	e.SortOrder = AtoSortOrder(string(e.SortOrder))
	e.Name = strings.TrimSpace(e.Name)
	e.Names = uniqueValues(e.Names)
	e.Departments = uniqueValues(e.Departments)
}

// ParseLenient converts an optional numeric parameter; an empty or
// unparsable value is treated as if the filter wasn't provided at all
// rather than rejecting the request.
func ParseLenient(s string) *int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

// FromParams owns all of the coercion for query parameters, the boundary
// is expected to forward them unmodified.
func (e *EmployeeQuery) FromParams(params url.Values) {
	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		switch strings.TrimSuffix(key, "[]") {
		case ParameterPage:
			e.Page, _ = strconv.Atoi(strings.TrimSpace(value))
		case ParameterLimit:
			e.Limit, _ = strconv.Atoi(strings.TrimSpace(value))
		case ParameterSortBy:
			e.SortBy = AtoSortBy(value)
		case ParameterSortOrder:
			e.SortOrder = AtoSortOrder(value)
		case ParameterName:
			e.Name = value
		case ParameterNames:
			e.Names = append(e.Names, splitValues(values)...)
		case ParameterDepartments:
			e.Departments = append(e.Departments, splitValues(values)...)
		case ParameterMinSalary:
			e.MinSalary = ParseLenient(value)
		case ParameterMaxSalary:
			e.MaxSalary = ParseLenient(value)
		case ParameterMinAge:
			e.MinAge = ParseLenient(value)
		case ParameterMaxAge:
			e.MaxAge = ParseLenient(value)
		}
	}
	e.Normalize()
}

func (e *EmployeeQuery) ToParams() url.Values {
	params := make(url.Values)
	if e.Page > 0 {
		params.Set(ParameterPage, strconv.Itoa(e.Page))
	}
	if e.Limit > 0 {
		params.Set(ParameterLimit, strconv.Itoa(e.Limit))
	}
	if e.SortBy != "" {
		params.Set(ParameterSortBy, string(e.SortBy))
	}
	if e.SortOrder != "" {
		params.Set(ParameterSortOrder, string(e.SortOrder))
	}
	if e.Name != "" {
		params.Set(ParameterName, e.Name)
	}
	for _, name := range e.Names {
		params.Add(ParameterNames, name)
	}
	if len(e.Departments) > 0 {
		params.Set(ParameterDepartments, strings.Join(e.Departments, ","))
	}
	for key, value := range map[string]*int64{
		ParameterMinSalary: e.MinSalary,
		ParameterMaxSalary: e.MaxSalary,
		ParameterMinAge:    e.MinAge,
		ParameterMaxAge:    e.MaxAge,
	} {
		if value != nil {
			params.Set(key, strconv.FormatInt(*value, 10))
		}
	}
	return params
}

// ToKey returns a stable key for the normalized query; list filters
// are order independent so they're sorted first.
func (e EmployeeQuery) ToKey() (string, error) {
	e.Normalize()
	e.Names = append([]string(nil), e.Names...)
	e.Departments = append([]string(nil), e.Departments...)
	sort.Strings(e.Names)
	sort.Strings(e.Departments)
	bytes, err := json.Marshal(&e)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// "names=Anna Lee,Bob Lee" and "names=Anna Lee&names=Bob Lee" are
// equivalent
func splitValues(values []string) []string {
	var items []string
	for _, value := range values {
		for _, v := range strings.Split(value, ",") {
			items = append(items, v)
		}
	}
	return items
}

func uniqueValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}
