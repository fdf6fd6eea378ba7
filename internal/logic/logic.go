package logic

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/sql"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"golang.org/x/sync/errgroup"
)

const (
	counterEmployeesQuery string = "employees_query"
	counterEmployeeRead   string = "employee_read"
)

const (
	namesSearchMinLength int = 2
	namesSearchMaxLimit  int = 1000
)

var (
	defaultSalaryRange = data.Range{Min: 30000, Max: 150000}
	defaultAgeRange    = data.Range{Min: 20, Max: 70}
)

// Clock provides the instant ages are computed against
type Clock func() time.Time

type Logic interface {
	EmployeesQuery(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error)
	EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error)
	EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error)
	EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error)
	EmployeeNamesSearch(ctx context.Context, term string, limit int) ([]string, error)
	EmployeeRanges(ctx context.Context) (*data.EmployeeRanges, error)
	Departments(ctx context.Context) ([]*data.Department, error)
}

type logic struct {
	sync.RWMutex
	sql     sql.Sql
	cache   cache.Cache
	logger  utilities.Logger
	counter utilities.Counter
	metrics utilities.Metrics
	clock   Clock
	config  struct {
		cacheEnabled         bool
		concurrentResolution bool
	}
}

// NewLogic accepts a sql.Sql (required) and optionally a cache.Cache,
// utilities.Logger, utilities.Counter, utilities.Metrics and Clock
func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{clock: time.Now}
	l.config.concurrentResolution = true
	for _, parameter := range parameters {
		//the sql and cache implementations also satisfy utilities.Logger
		switch v := parameter.(type) {
		case sql.Sql:
			l.sql = v
		case cache.Cache:
			l.cache = v
		case utilities.Metrics:
			l.metrics = v
		case utilities.Counter:
			l.counter = v
		case Clock:
			l.clock = v
		case func() time.Time:
			l.clock = v
		case utilities.Logger:
			l.logger = v
		}
	}
	return l
}

func (l *logic) error(ctx context.Context, format string, v ...any) {
	if l.logger != nil {
		l.logger.Error(ctx, format, v...)
	}
}

func (l *logic) info(ctx context.Context, format string, v ...any) {
	if l.logger != nil {
		l.logger.Info(ctx, format, v...)
	}
}

func (l *logic) debug(ctx context.Context, format string, v ...any) {
	if l.logger != nil {
		l.logger.Debug(ctx, format, v...)
	}
}

func (l *logic) trace(ctx context.Context, format string, v ...any) {
	if l.logger != nil {
		l.logger.Trace(ctx, format, v...)
	}
}

func (l *logic) observeStage(stage string, elapsed time.Duration) {
	if l.metrics != nil {
		l.metrics.ObserveStage(stage, elapsed)
	}
}

func (l *logic) cacheHit(key string, hit bool) {
	if l.counter == nil {
		return
	}
	l.counter.Record(key, hit)
}

func (l *logic) cacheEnabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.cacheEnabled && l.cache != nil
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if cacheEnabled, ok := envs["LOGIC_CACHE_ENABLED"]; ok {
		l.config.cacheEnabled, _ = strconv.ParseBool(cacheEnabled)
	}
	if concurrentResolution, ok := envs["LOGIC_CONCURRENT_RESOLUTION"]; ok {
		if b, err := strconv.ParseBool(concurrentResolution); err == nil {
			l.config.concurrentResolution = b
		}
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.RLock()
	defer l.RUnlock()

	switch {
	case l.config.cacheEnabled && l.cache == nil:
		l.info(ctx, "cache enabled, but no cache configured; cache disabled")
	case l.config.cacheEnabled:
		l.info(ctx, "cache enabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) EmployeesQuery(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	query.Normalize()
	if l.cacheEnabled() {
		page, err := l.cache.EmployeesPageRead(ctx, query)
		l.cacheHit(counterEmployeesQuery, err == nil)
		if err == nil {
			return page, nil
		}
		l.debug(ctx, "error while reading employees page from cache: %s", err)
	}
	page, err := l.employeesQuery(ctx, query)
	if err != nil {
		l.error(ctx, "error while querying employees: %s", err)
		return nil, data.NewError(data.ErrEmployeesQuery, err)
	}
	if l.cacheEnabled() {
		if err := l.cache.EmployeesPageWrite(ctx, query, page); err != nil {
			l.error(ctx, "error while writing employees page to cache: %s", err)
		}
	}
	return page, nil
}

// employeesQuery runs the pipeline for a normalized query: filters are
// compiled, candidates resolved, then ordered and paginated either by
// the store or in memory
func (l *logic) employeesQuery(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	var records []*data.EmployeeRecord
	var total int64
	var err error

	now := l.clock().UTC()
	page := &data.EmployeesPage{
		Data:  []*data.EmployeeSummary{},
		Page:  query.Page,
		Limit: query.Limit,
	}
	filters := CompileFilters(query, now)
	constraint, err := l.resolveCandidates(ctx, filters)
	if err != nil {
		return nil, err
	}
	if constraint.Kind == Empty {
		l.debug(ctx, "empty candidate set, skipping fetch")
		return page, nil
	}
	strategy := SelectStrategy(query.SortBy, constraint)
	if l.metrics != nil {
		l.metrics.ObserveStrategy(string(strategy))
	}
	l.debug(ctx, "employees query: strategy=%s, constraint=%s (%d)",
		strategy, constraint.Kind, len(constraint.EmpNos))
	tStart := time.Now()
	switch strategy {
	case StrategyPushdown:
		criteria := criteriaFor(filters, constraint)
		order := data.EmployeeOrder{SortBy: query.SortBy, SortOrder: query.SortOrder}
		if total, err = l.sql.EmployeesCount(ctx, criteria); err != nil {
			return nil, err
		}
		offset := Offset(query.Page, query.Limit)
		if int64(offset) < total {
			if records, err = l.sql.EmployeesFetch(ctx, criteria, order,
				offset, query.Limit); err != nil {
				return nil, err
			}
		}
	case StrategyMaterialize:
		if records, err = l.materialize(ctx, filters, constraint); err != nil {
			return nil, err
		}
		tSort := time.Now()
		SortRecords(records, query.SortBy, query.SortOrder)
		l.observeStage("sort", time.Since(tSort))
		total = int64(len(records))
		records = Paginate(records, query.Page, query.Limit)
	}
	l.observeStage("fetch_"+string(strategy), time.Since(tStart))
	page.Data = projectAll(records, now)
	page.Total = total
	page.TotalPages = TotalPages(total, query.Limit)
	return page, nil
}

func (l *logic) EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	if l.cacheEnabled() {
		employee, err := l.cache.EmployeeRead(ctx, empNo)
		l.cacheHit(counterEmployeeRead, err == nil)
		if err == nil {
			return employee, nil
		}
		l.debug(ctx, "error while reading employee (%d) from cache: %s", empNo, err)
	}
	employee, err := l.employeeRead(ctx, empNo)
	if err != nil {
		l.error(ctx, "error while reading employee (%d): %s", empNo, err)
		return nil, data.NewError(data.ErrEmployeeRead, err)
	}
	if l.cacheEnabled() {
		if err := l.cache.EmployeeWrite(ctx, employee); err != nil {
			l.error(ctx, "error while writing employee (%d) to cache: %s", empNo, err)
		}
	}
	return employee, nil
}

func (l *logic) employeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	employee, err := l.sql.EmployeeRead(ctx, empNo)
	if err != nil {
		return nil, err
	}
	detail := &data.EmployeeDetail{
		Employee:    *employee,
		Name:        employee.FirstName + " " + employee.LastName,
		Age:         Age(employee.BirthDate, l.clock().UTC()),
		Departments: []*data.DeptEmp{},
		Salaries:    []*data.Salary{},
		Titles:      []*data.Title{},
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deptEmps, err := l.sql.EmployeeDepartments(gCtx, empNo)
		if err == nil && len(deptEmps) > 0 {
			detail.Departments = deptEmps
		}
		return err
	})
	g.Go(func() error {
		salaries, err := l.sql.EmployeeSalaries(gCtx, empNo)
		if err == nil && len(salaries) > 0 {
			detail.Salaries = salaries
		}
		return err
	})
	g.Go(func() error {
		titles, err := l.sql.EmployeeTitles(gCtx, empNo)
		if err == nil && len(titles) > 0 {
			detail.Titles = titles
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (l *logic) EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error) {
	salaries, err := l.sql.EmployeeSalaries(ctx, empNo)
	if err != nil {
		l.error(ctx, "error while reading salaries (%d): %s", empNo, err)
		return nil, data.NewError(data.ErrEmployeeHistory, err)
	}
	if salaries == nil {
		salaries = []*data.Salary{}
	}
	return salaries, nil
}

func (l *logic) EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error) {
	titles, err := l.sql.EmployeeTitles(ctx, empNo)
	if err != nil {
		l.error(ctx, "error while reading titles (%d): %s", empNo, err)
		return nil, data.NewError(data.ErrEmployeeHistory, err)
	}
	if titles == nil {
		titles = []*data.Title{}
	}
	return titles, nil
}

// EmployeeNamesSearch returns distinct "first last" names where either
// name contains term, ordered the same way names are sorted in memory
func (l *logic) EmployeeNamesSearch(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < namesSearchMinLength {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = data.LimitDefault
	}
	limit = min(limit, namesSearchMaxLimit)
	candidates, err := l.sql.EmployeeNames(ctx, term, 2*limit)
	if err != nil {
		l.error(ctx, "error while searching names (%s): %s", term, err)
		return nil, data.NewError(data.ErrEmployeeNames, err)
	}
	names := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	collator := newCollator()
	slices.SortStableFunc(names, collator.CompareString)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// EmployeeRanges reports the bounds for the salary and age filters,
// defaults are used when the store is empty
func (l *logic) EmployeeRanges(ctx context.Context) (*data.EmployeeRanges, error) {
	ranges := &data.EmployeeRanges{
		SalaryRange: defaultSalaryRange,
		AgeRange:    defaultAgeRange,
	}
	minSalary, maxSalary, err := l.sql.SalaryRange(ctx)
	if err != nil {
		l.error(ctx, "error while reading salary range: %s", err)
		return nil, data.NewError(data.ErrEmployeeRanges, err)
	}
	if minSalary != nil && maxSalary != nil {
		ranges.SalaryRange = data.Range{Min: *minSalary, Max: *maxSalary}
	}
	minBirthDate, maxBirthDate, err := l.sql.BirthDateRange(ctx)
	if err != nil {
		l.error(ctx, "error while reading birth date range: %s", err)
		return nil, data.NewError(data.ErrEmployeeRanges, err)
	}
	if minBirthDate != nil && maxBirthDate != nil {
		now := l.clock().UTC()
		ranges.AgeRange = data.Range{
			Min: int64(Age(*maxBirthDate, now)),
			Max: int64(Age(*minBirthDate, now)),
		}
	}
	return ranges, nil
}

func (l *logic) Departments(ctx context.Context) ([]*data.Department, error) {
	departments, err := l.sql.Departments(ctx)
	if err != nil {
		l.error(ctx, "error while reading departments: %s", err)
		return nil, data.NewError(data.ErrDepartments, err)
	}
	if departments == nil {
		departments = []*data.Department{}
	}
	return departments, nil
}
