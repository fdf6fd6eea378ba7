package logic

import (
	"strings"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

const (
	// bulkNameThreshold is the number of distinct name pairs at which
	// names are resolved into a candidate set rather than OR'd inline
	bulkNameThreshold int = 1000

	// year is 365.25 days, it's used both to select by age and to
	// report it
	year time.Duration = 8766 * time.Hour

	// ages are clamped so the birth date bounds can't overflow
	maxAgeYears int64 = 250
)

// Filters is the per-dimension form of a query, nothing is evaluated
// until it's handed to the candidate resolver
type Filters struct {
	Name           string
	NamePairs      []data.NamePair
	Departments    []string
	MinSalary      *int64
	MaxSalary      *int64
	BirthDateAfter *time.Time //exclusive
	BirthDateUntil *time.Time //inclusive
}

// CompileFilters converts a normalized query into filters, now must be
// the same instant used to project ages
func CompileFilters(query data.EmployeeQuery, now time.Time) Filters {
	filters := Filters{
		Name:        query.Name,
		Departments: query.Departments,
		MinSalary:   query.MinSalary,
		MaxSalary:   query.MaxSalary,
	}
	seen := make(map[data.NamePair]struct{}, len(query.Names))
	for _, name := range query.Names {
		namePair, ok := SplitName(name)
		if !ok {
			continue
		}
		if _, found := seen[namePair]; found {
			continue
		}
		seen[namePair] = struct{}{}
		filters.NamePairs = append(filters.NamePairs, namePair)
	}
	if query.MinAge != nil {
		minAge := clamp(*query.MinAge, 0, maxAgeYears)
		until := yearsBefore(now, minAge)
		filters.BirthDateUntil = &until
	}
	if query.MaxAge != nil {
		maxAge := clamp(*query.MaxAge, -1, maxAgeYears)
		after := yearsBefore(now, maxAge+1)
		filters.BirthDateAfter = &after
	}
	return filters
}

// SplitName splits a full name into its first token and the remaining
// tokens, the remainder may be empty
func SplitName(name string) (data.NamePair, bool) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return data.NamePair{}, false
	}
	return data.NamePair{
		First: fields[0],
		Last:  strings.Join(fields[1:], " "),
	}, true
}

// BulkNames reports whether names are resolved into a candidate set
func (f Filters) BulkNames() bool {
	return len(f.NamePairs) >= bulkNameThreshold
}

// Criteria returns the predicates applied directly to the fetch query
func (f Filters) Criteria() data.EmployeeCriteria {
	criteria := data.EmployeeCriteria{
		Name:           f.Name,
		BirthDateAfter: f.BirthDateAfter,
		BirthDateUntil: f.BirthDateUntil,
	}
	if !f.BulkNames() {
		criteria.NamePairs = f.NamePairs
	}
	return criteria
}

// yearsBefore returns the date (at midnight UTC) on which someone must
// have been born to be exactly years old at now
func yearsBefore(now time.Time, years int64) time.Time {
	t := now.UTC().Add(-time.Duration(years) * year)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(i, lower, upper int64) int64 {
	switch {
	case i < lower:
		return lower
	case i > upper:
		return upper
	}
	return i
}
