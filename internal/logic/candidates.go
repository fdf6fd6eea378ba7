package logic

import (
	"context"
	"errors"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"

	"golang.org/x/sync/errgroup"
)

// deferredThreshold is the largest identifier set that's embedded in a
// fetch query, larger sets are handed to the batch fetcher
const deferredThreshold int = 10000

const (
	dimensionDepartments string = "departments"
	dimensionSalary      string = "salary"
	dimensionNames       string = "names"
)

var errEmptyCandidates = errors.New("empty candidate set")

// ConstraintKind tags how (and whether) candidates restrict the fetch
type ConstraintKind int

const (
	// NoConstraint means no dimension needed resolving
	NoConstraint ConstraintKind = iota

	// InlineIds are few enough to embed in the fetch query
	InlineIds

	// DeferredIds are handed to the batch fetcher
	DeferredIds

	// Empty means no employee can match, the fetch is skipped
	Empty
)

func (c ConstraintKind) String() string {
	switch c {
	default:
		return "no_constraint"
	case InlineIds:
		return "inline_ids"
	case DeferredIds:
		return "deferred_ids"
	case Empty:
		return "empty"
	}
}

// Constraint is the outcome of candidate resolution, EmpNos is sorted
// ascending and only set for InlineIds and DeferredIds
type Constraint struct {
	Kind   ConstraintKind
	EmpNos []int64
}

func newConstraint(empNos []int64) Constraint {
	switch {
	case len(empNos) == 0:
		return Constraint{Kind: Empty}
	case len(empNos) > deferredThreshold:
		return Constraint{Kind: DeferredIds, EmpNos: empNos}
	}
	return Constraint{Kind: InlineIds, EmpNos: empNos}
}

type dimension struct {
	name    string
	resolve func(ctx context.Context) ([]int64, error)
}

func (l *logic) dimensions(filters Filters) []dimension {
	var dimensions []dimension

	if len(filters.Departments) > 0 {
		dimensions = append(dimensions, dimension{
			name: dimensionDepartments,
			resolve: func(ctx context.Context) ([]int64, error) {
				return l.sql.EmpNosByDepartments(ctx, filters.Departments...)
			},
		})
	}
	if filters.MinSalary != nil || filters.MaxSalary != nil {
		dimensions = append(dimensions, dimension{
			name: dimensionSalary,
			resolve: func(ctx context.Context) ([]int64, error) {
				return l.sql.EmpNosBySalaryRange(ctx, filters.MinSalary, filters.MaxSalary)
			},
		})
	}
	if filters.BulkNames() {
		dimensions = append(dimensions, dimension{
			name: dimensionNames,
			resolve: func(ctx context.Context) ([]int64, error) {
				return l.sql.EmpNosByNamePairs(ctx, filters.NamePairs...)
			},
		})
	}
	return dimensions
}

func (l *logic) resolveDimension(ctx context.Context, d dimension) ([]int64, error) {
	tStart := time.Now()
	empNos, err := d.resolve(ctx)
	if err != nil {
		return nil, err
	}
	l.observeStage("candidates_"+d.name, time.Since(tStart))
	if l.metrics != nil {
		l.metrics.ObserveCandidates(d.name, len(empNos))
	}
	l.trace(ctx, "resolved %d candidates for %s", len(empNos), d.name)
	if len(empNos) == 0 {
		return nil, errEmptyCandidates
	}
	return empNos, nil
}

// resolveCandidates resolves the dimensions that need the latest row of
// a history table (and bulk names) into a single intersected set. The
// first dimension, in order, that fails or comes back empty decides the
// outcome whether or not they're resolved concurrently.
func (l *logic) resolveCandidates(ctx context.Context, filters Filters) (Constraint, error) {
	dimensions := l.dimensions(filters)
	if len(dimensions) == 0 {
		return Constraint{Kind: NoConstraint}, nil
	}
	sets := make([][]int64, len(dimensions))
	errs := make([]error, len(dimensions))
	if l.config.concurrentResolution && len(dimensions) > 1 {
		// no shared context, a failing dimension doesn't cancel the
		// others so every outcome is recorded in errs
		var g errgroup.Group

		for i, d := range dimensions {
			g.Go(func() error {
				sets[i], errs[i] = l.resolveDimension(ctx, d)
				return errs[i]
			})
		}
		_ = g.Wait()
	} else {
		for i, d := range dimensions {
			if sets[i], errs[i] = l.resolveDimension(ctx, d); errs[i] != nil {
				break
			}
		}
	}
	for _, err := range errs {
		switch {
		case errors.Is(err, errEmptyCandidates):
			return Constraint{Kind: Empty}, nil
		case err != nil:
			return Constraint{}, err
		}
	}
	empNos := sets[0]
	for _, set := range sets[1:] {
		if empNos = Intersect(empNos, set); len(empNos) == 0 {
			break
		}
	}
	return newConstraint(empNos), nil
}

// Intersect returns the values common to two ascending lists
func Intersect(a, b []int64) []int64 {
	intersection := make([]int64, 0, min(len(a), len(b)))
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			intersection = append(intersection, a[i])
			i++
			j++
		}
	}
	return intersection
}

// criteriaFor applies an inline constraint to the fetch criteria
func criteriaFor(filters Filters, constraint Constraint) data.EmployeeCriteria {
	criteria := filters.Criteria()
	if constraint.Kind == InlineIds {
		criteria.EmpNos = constraint.EmpNos
	}
	return criteria
}
