package service_test

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/logic"
	"github.com/antonio-alexander/go-employee-query/internal/service"
	"github.com/antonio-alexander/go-employee-query/internal/sql"
	"github.com/antonio-alexander/go-employee-query/internal/sql/fixtures"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	envs = map[string]string{
		//sql
		"DATABASE_QUERY_TIMEOUT": "10",

		//cache
		"CACHE_TTL": "60",

		//logic
		"LOGIC_CACHE_ENABLED": "true",

		//service
		"SERVICE_SHUTDOWN_TIMEOUT": "5",
		"SERVICE_TIMERS_ENABLED":   "true",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	envs["DATABASE_DRIVER"] = sql.DriverSqlite
}

type serviceTest struct {
	server  *httptest.Server
	client  *http.Client
	counter utilities.Counter
	timers  utilities.Timers
}

func newServiceTest(t *testing.T) *serviceTest {
	ctx := context.TODO()

	db, err := stdsql.Open(sql.DriverSqlite, ":memory:")
	require.Nil(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	s := sql.NewMySql(db)
	c := cache.NewMemory()
	counter, timers := utilities.NewCounter(), utilities.NewTimers()
	metrics := utilities.NewMetrics()
	l := logic.NewLogic(s, c, counter, metrics)
	svc := service.NewService(l, c, counter, timers, metrics)
	for _, configurer := range []internal.Configurer{s, c, l, svc, metrics} {
		require.Nil(t, configurer.Configure(envs))
	}
	for _, opener := range []internal.Opener{s, c, l} {
		require.Nil(t, opener.Open(ctx))
		t.Cleanup(func() {
			_ = opener.Close(ctx)
		})
	}
	require.Nil(t, fixtures.Load(ctx, db, fixtures.Scenario(time.Now())...))
	server := httptest.NewServer(svc)
	t.Cleanup(server.Close)
	return &serviceTest{
		server:  server,
		client:  server.Client(),
		counter: counter,
		timers:  timers,
	}
}

// get issues a GET for uri and decodes the (json) body into item when
// it's not nil
func (s *serviceTest) get(t *testing.T, uri string, item any) *http.Response {
	request, err := http.NewRequest(http.MethodGet, s.server.URL+uri, nil)
	require.Nil(t, err)
	request.Header.Set(data.HeaderCorrelationId, "service_test")
	return s.do(t, request, item)
}

func (s *serviceTest) do(t *testing.T, request *http.Request, item any) *http.Response {
	response, err := s.client.Do(request)
	require.Nil(t, err)
	defer response.Body.Close()
	bytes, err := io.ReadAll(response.Body)
	require.Nil(t, err)
	if item != nil && len(bytes) > 0 {
		assert.Nil(t, json.Unmarshal(bytes, item), string(bytes))
	}
	return response
}

func (s *serviceTest) TestEmployeesQuery(t *testing.T) {
	var page data.EmployeesPage

	response := s.get(t, data.RouteEmployees+"?departments=d002", &page)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "service_test", response.Header.Get(data.HeaderCorrelationId))
	assert.Equal(t, int64(1), page.Total)
	if assert.Len(t, page.Data, 1) {
		assert.Equal(t, int64(2), page.Data[0].EmpNo)
		assert.Equal(t, "Finance", page.Data[0].Department)
	}

	//unparsable numbers are ignored rather than rejected
	page = data.EmployeesPage{}
	response = s.get(t, data.RouteEmployees+"?minSalary=abc&limit=-1&sortBy=lastSalary&sortOrder=DESC", &page)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, data.LimitDefault, page.Limit)
	if assert.Len(t, page.Data, 2) {
		assert.Equal(t, int64(2), page.Data[0].EmpNo)
	}

	//names may be repeated or comma separated
	page = data.EmployeesPage{}
	s.get(t, data.RouteEmployees+"?names=Anna%20Lee,Bob%20Lee&names=Nobody", &page)
	assert.Equal(t, int64(2), page.Total)

	//empty results aren't an error
	page = data.EmployeesPage{}
	response = s.get(t, data.RouteEmployees+"?minAge=100", &page)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.TotalPages)
}

func (s *serviceTest) TestEmployeeRead(t *testing.T) {
	var employee data.EmployeeDetail
	var salaries []*data.Salary
	var titles []*data.Title
	var e data.ErrorResponse

	response := s.get(t, fmt.Sprintf(data.RouteEmployeesEmpNof, 2), &employee)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "Bob Lee", employee.Name)
	assert.Len(t, employee.Departments, 2)

	response = s.get(t, fmt.Sprintf(data.RouteEmployeesEmpNof, 999999), &e)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, data.ErrEmployeeRead.Error(), e.Error)

	response = s.get(t, data.RouteEmployees+"/99999999999999999999", &e)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	response = s.get(t, fmt.Sprintf(data.RouteEmployeesSalariesf, 2), &salaries)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	if assert.Len(t, salaries, 2) {
		assert.Equal(t, int64(90000), salaries[0].Salary)
	}

	response = s.get(t, fmt.Sprintf(data.RouteEmployeesTitlesf, 999999), &titles)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}

func (s *serviceTest) TestReferenceData(t *testing.T) {
	var names []string
	var ranges data.EmployeeRanges
	var departments []*data.Department

	response := s.get(t, data.RouteEmployeesSearchNames+"?q=ann&limit=5", &names)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, []string{"Anna Lee"}, names)

	response = s.get(t, data.RouteEmployeesRanges, &ranges)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, data.Range{Min: 40000, Max: 90000}, ranges.SalaryRange)
	assert.Equal(t, data.Range{Min: 30, Max: 45}, ranges.AgeRange)

	response = s.get(t, data.RouteDepartments, &departments)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Len(t, departments, len(fixtures.Departments()))
}

func (s *serviceTest) TestOperations(t *testing.T) {
	var counters data.CacheCounters
	var timers data.Timers

	//counters
	request, err := http.NewRequest(http.MethodDelete, s.server.URL+data.RouteCacheCounters, nil)
	require.Nil(t, err)
	response := s.do(t, request, nil)
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	s.get(t, data.RouteEmployees+"?sortBy=name", nil)
	s.get(t, data.RouteEmployees+"?sortBy=name&page=1", nil)
	response = s.get(t, data.RouteCacheCounters, &counters)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, 1, counters.CounterHits["employees_query"])
	assert.Equal(t, 1, counters.CounterMisses["employees_query"])
	assert.Equal(t, 0.5, counters.HitRatios["employees_query"])

	//cache
	request, err = http.NewRequest(http.MethodDelete, s.server.URL+data.RouteCache, nil)
	require.Nil(t, err)
	response = s.do(t, request, nil)
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	s.get(t, data.RouteEmployees+"?sortBy=name", nil)
	counters = data.CacheCounters{}
	s.get(t, data.RouteCacheCounters, &counters)
	assert.Equal(t, 2, counters.CounterMisses["employees_query"])

	//timers
	response = s.get(t, data.RouteTimers, &timers)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, timers.Totals, "employees_query")
	request, err = http.NewRequest(http.MethodDelete, s.server.URL+data.RouteTimers, nil)
	require.Nil(t, err)
	response = s.do(t, request, nil)
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	timers = data.Timers{}
	s.get(t, data.RouteTimers, &timers)
	assert.Empty(t, timers.Totals)

	//metrics
	response, err = s.client.Get(s.server.URL + data.RouteMetrics)
	require.Nil(t, err)
	bytes, err := io.ReadAll(response.Body)
	response.Body.Close()
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(bytes), "employees_query_total")

	//mutations aren't supported
	request, err = http.NewRequest(http.MethodPut, s.server.URL+data.RouteEmployees, nil)
	require.Nil(t, err)
	response = s.do(t, request, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)
}

func TestService(t *testing.T) {
	s := newServiceTest(t)
	t.Run("Employees Query", s.TestEmployeesQuery)
	t.Run("Employee Read", s.TestEmployeeRead)
	t.Run("Reference Data", s.TestReferenceData)
	t.Run("Operations", s.TestOperations)
}

func TestServiceOpenClose(t *testing.T) {
	ctx := context.TODO()

	svc := service.NewService()
	err := svc.Configure(map[string]string{
		"SERVICE_ADDRESS":       "localhost",
		"SERVICE_PORT":          "0",
		"SERVICE_CORS_DISABLED": "true",
	})
	assert.Nil(t, err)
	err = svc.Open(ctx)
	assert.Nil(t, err)
	err = svc.Close(ctx)
	assert.Nil(t, err)
}
