package logic_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/logic"
	"github.com/antonio-alexander/go-employee-query/internal/sql"

	"github.com/stretchr/testify/assert"
)

var errStoreUnavailable = errors.New("store unavailable")

type dimensionResult struct {
	delay  time.Duration
	empNos []int64
	err    error
}

func (d dimensionResult) resolve() ([]int64, error) {
	time.Sleep(d.delay)
	return d.empNos, d.err
}

// dimensionSql only resolves the department and salary dimensions,
// anything else panics on the nil sql.Sql
type dimensionSql struct {
	sql.Sql
	departments dimensionResult
	salaries    dimensionResult
}

func (d *dimensionSql) EmpNosByDepartments(_ context.Context, _ ...string) ([]int64, error) {
	return d.departments.resolve()
}

func (d *dimensionSql) EmpNosBySalaryRange(_ context.Context, _, _ *int64) ([]int64, error) {
	return d.salaries.resolve()
}

// the first dimension (departments, then salary) that fails or is empty
// decides the outcome regardless of which finishes first
func TestResolveCandidatesOutcome(t *testing.T) {
	const slow = 50 * time.Millisecond

	query := data.EmployeeQuery{
		Departments: []string{"d001"},
		MinSalary:   int64Ptr(1),
	}
	for _, concurrent := range []string{"true", "false"} {
		for name, c := range map[string]struct {
			store *dimensionSql
			err   error
		}{
			"empty before failure": {
				store: &dimensionSql{
					departments: dimensionResult{delay: slow},
					salaries:    dimensionResult{err: errStoreUnavailable},
				},
			},
			"failure before empty": {
				store: &dimensionSql{
					departments: dimensionResult{delay: slow, err: errStoreUnavailable},
					salaries:    dimensionResult{},
				},
				err: errStoreUnavailable,
			},
		} {
			t.Run(name+" concurrent="+concurrent, func(t *testing.T) {
				l := logic.NewLogic(c.store)
				err := l.Configure(map[string]string{
					"LOGIC_CONCURRENT_RESOLUTION": concurrent,
				})
				assert.Nil(t, err)
				page, err := l.EmployeesQuery(context.TODO(), query)
				if c.err != nil {
					assert.ErrorIs(t, err, c.err)
					assert.ErrorIs(t, err, data.ErrEmployeesQuery)
					assert.Nil(t, page)
					return
				}
				assert.Nil(t, err)
				if assert.NotNil(t, page) {
					assert.Empty(t, page.Data)
					assert.Equal(t, int64(0), page.Total)
				}
			})
		}
	}
}
