package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/pkg/errors"
)

type Client interface {
	EmployeesQuery(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error)
	EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error)
	EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error)
	EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error)
	EmployeeNamesSearch(ctx context.Context, term string, limit int) ([]string, error)
	EmployeeRanges(ctx context.Context) (*data.EmployeeRanges, error)
	Departments(ctx context.Context) ([]*data.Department, error)
	CacheClear(ctx context.Context) error
	CacheCountersRead(ctx context.Context) (*data.CacheCounters, error)
	CacheCountersClear(ctx context.Context) error
	TimersRead(ctx context.Context) (*data.Timers, error)
	TimersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol      string
		address       string
		port          string
		timeout       int64
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	logger  utilities.Logger
	*http.Client
}

// NewClient optionally accepts a cache.Cache (client side read-through)
// and a utilities.Logger
func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{Client: &http.Client{}}
	c.config.protocol = "http"
	c.config.address = "localhost"
	c.config.port = "8080"
	c.config.timeout = 10
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.logger = p
		}
	}
	return c
}

func (c *client) error(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Error(ctx, format, v...)
	}
}

func (c *client) info(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Info(ctx, format, v...)
	}
}

func (c *client) cacheEnabled() bool {
	return !c.config.cacheDisabled && c.cache != nil
}

func (c *client) doRequest(ctx context.Context, uri, method string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		uri = uri + "?" + params.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return nil, err
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Add(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return nil, err
	}
	bytes, err := io.ReadAll(response.Body)
	defer response.Body.Close()
	if err != nil {
		return nil, err
	}
	switch response.StatusCode {
	default:
		var e data.ErrorResponse

		if err := json.Unmarshal(bytes, &e); err != nil || e.Error == "" {
			return nil, errors.Errorf("status code: %d; %s",
				response.StatusCode, string(bytes))
		}
		if response.StatusCode == http.StatusNotFound {
			return nil, errors.Wrap(data.ErrEmployeeNotFound, e.Error)
		}
		return nil, errors.Errorf("status code: %d; %s", response.StatusCode, e.Error)
	case http.StatusOK, http.StatusNoContent:
		return bytes, nil
	}
}

// get issues a GET and decodes the body into item
func (c *client) get(ctx context.Context, uri string, params url.Values, item any) error {
	bytes, err := c.doRequest(ctx, c.address+uri, http.MethodGet, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bytes, item); err != nil {
		return errors.Wrapf(err, "unable to decode response from %s", uri)
	}
	return nil
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok {
		c.config.port = port
	}
	if protocol, ok := envs["CLIENT_PROTOCOL"]; ok {
		c.config.protocol = protocol
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "CLIENT_TIMEOUT")
		}
		c.config.timeout = i
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CLIENT_CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	if !c.cacheEnabled() {
		c.info(ctx, "client: cache disabled")
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesQuery(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	page := &data.EmployeesPage{}

	query.Normalize()
	if c.cacheEnabled() {
		page, err := c.cache.EmployeesPageRead(ctx, query)
		if err == nil {
			return page, nil
		}
		c.error(ctx, "error while reading employees page from cache: %s", err)
	}
	if err := c.get(ctx, data.RouteEmployees, query.ToParams(), page); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cache.EmployeesPageWrite(ctx, query, page); err != nil {
			c.error(ctx, "error while writing employees page to cache: %s", err)
		}
	}
	return page, nil
}

func (c *client) EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	employee := &data.EmployeeDetail{}

	if c.cacheEnabled() {
		employee, err := c.cache.EmployeeRead(ctx, empNo)
		if err == nil {
			return employee, nil
		}
		c.error(ctx, "error while reading employee (%d) from cache: %s", empNo, err)
	}
	if err := c.get(ctx, fmt.Sprintf(data.RouteEmployeesEmpNof, empNo), nil, employee); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cache.EmployeeWrite(ctx, employee); err != nil {
			c.error(ctx, "error while writing employee (%d) to cache: %s", empNo, err)
		}
	}
	return employee, nil
}

func (c *client) EmployeeSalaries(ctx context.Context, empNo int64) ([]*data.Salary, error) {
	var salaries []*data.Salary

	if err := c.get(ctx, fmt.Sprintf(data.RouteEmployeesSalariesf, empNo), nil, &salaries); err != nil {
		return nil, err
	}
	return salaries, nil
}

func (c *client) EmployeeTitles(ctx context.Context, empNo int64) ([]*data.Title, error) {
	var titles []*data.Title

	if err := c.get(ctx, fmt.Sprintf(data.RouteEmployeesTitlesf, empNo), nil, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (c *client) EmployeeNamesSearch(ctx context.Context, term string, limit int) ([]string, error) {
	var names []string

	params := url.Values{data.ParameterSearchTerm: []string{term}}
	if limit > 0 {
		params.Set(data.ParameterSearchLimit, strconv.Itoa(limit))
	}
	if err := c.get(ctx, data.RouteEmployeesSearchNames, params, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *client) EmployeeRanges(ctx context.Context) (*data.EmployeeRanges, error) {
	ranges := &data.EmployeeRanges{}
	if err := c.get(ctx, data.RouteEmployeesRanges, nil, ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}

func (c *client) Departments(ctx context.Context) ([]*data.Department, error) {
	var departments []*data.Department

	if err := c.get(ctx, data.RouteDepartments, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

func (c *client) CacheClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteCache, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) CacheCountersRead(ctx context.Context) (*data.CacheCounters, error) {
	counters := &data.CacheCounters{}
	if err := c.get(ctx, data.RouteCacheCounters, nil, counters); err != nil {
		return nil, err
	}
	return counters, nil
}

func (c *client) CacheCountersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteCacheCounters, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) TimersRead(ctx context.Context) (*data.Timers, error) {
	timers := &data.Timers{}
	if err := c.get(ctx, data.RouteTimers, nil, timers); err != nil {
		return nil, err
	}
	return timers, nil
}

func (c *client) TimersClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, c.address+data.RouteTimers, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}
