package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/logic"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const defaultShutdownTimeout time.Duration = 10 * time.Second

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
	}
	ctx    context.Context
	cancel context.CancelFunc
	*mux.Router
	*http.Server
	cache   internal.Clearer
	logger  utilities.Logger
	metrics utilities.Metrics
	utilities.Counter
	utilities.Timers
	logic.Logic
}

// NewService builds the routes immediately so the returned value can be
// served directly (e.g. with httptest) without calling Open
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	router := mux.NewRouter()
	s := &service{
		Router: router,
		Server: &http.Server{
			Handler: router,
		},
	}
	s.config.shutdownTimeout = defaultShutdownTimeout
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.Logic = p
		case interface {
			cache.Cache
			internal.Clearer
		}:
			s.cache = p
		case utilities.Metrics:
			s.metrics = p
		case utilities.Counter:
			s.Counter = p
		case utilities.Timers:
			s.Timers = p
		case utilities.Logger:
			s.logger = p
		}
	}
	s.buildRoutes()
	return s
}

func (s *service) error(ctx context.Context, format string, v ...any) {
	if s.logger != nil {
		s.logger.Error(ctx, format, v...)
	}
}

func (s *service) info(ctx context.Context, format string, v ...any) {
	if s.logger != nil {
		s.logger.Info(ctx, format, v...)
	}
}

func (s *service) trace(ctx context.Context, format string, v ...any) {
	if s.logger != nil {
		s.logger.Trace(ctx, format, v...)
	}
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		if !s.config.corsDisabled {
			s.Server.Handler = cors.New(cors.Options{
				AllowedOrigins:   s.config.allowedOrigins,
				AllowCredentials: s.config.allowCredentials,
				AllowedMethods:   s.config.allowedMethods,
				AllowedHeaders:   s.config.allowedHeaders,
				Debug:            s.config.corsDebug,
			}).Handler(s.Router)
		}
		close(started)
		if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: a server that fails within a second of starting (e.g. the
		// port is already in use) is reported as a failure to open
		return err
	case <-time.After(time.Second):
		address := net.JoinHostPort(s.config.address, s.config.port)
		s.info(s.ctx, "started server: %s", address)
		return nil
	}
}

// requestContext attaches the request's correlation id (generating one
// if needed) and echoes it in the response
func (s *service) requestContext(writer http.ResponseWriter, request *http.Request) context.Context {
	correlationId := internal.CorrelationIdFromRequest(request, data.HeaderCorrelationId)
	writer.Header().Set(data.HeaderCorrelationId, correlationId)
	return internal.CtxWithCorrelationId(request.Context(), correlationId)
}

// startTimer returns the function that stops it, it's a no-op when
// timers are disabled
func (s *service) startTimer(ctx context.Context, group string) func() {
	if !s.config.timersEnabled || s.Timers == nil {
		return func() {}
	}
	index := s.Timers.Start(group)
	return func() {
		elapsed := s.Timers.Stop(group, index)
		s.trace(ctx, "%s took %v", group, elapsed)
	}
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-employee-query\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

func (s *service) endpointEmployeesQuery(writer http.ResponseWriter, request *http.Request) {
	var query data.EmployeeQuery

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employees_query")()
	query.FromParams(request.URL.Query())
	page, err := s.EmployeesQuery(ctx, query)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, page)
	s.trace(ctx, "executed employees_query: %d of %d", len(page.Data), page.Total)
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_read")()
	empNo, err := empNoFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	employee, err := s.EmployeeRead(ctx, empNo)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, employee)
	s.trace(ctx, "executed employee_read: %d", employee.EmpNo)
}

func (s *service) endpointEmployeeSalaries(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_salaries")()
	empNo, err := empNoFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	salaries, err := s.EmployeeSalaries(ctx, empNo)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, salaries)
}

func (s *service) endpointEmployeeTitles(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_titles")()
	empNo, err := empNoFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err)
		return
	}
	titles, err := s.EmployeeTitles(ctx, empNo)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, titles)
}

func (s *service) endpointEmployeeNamesSearch(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_names_search")()
	params := request.URL.Query()
	limit, _ := strconv.Atoi(params.Get(data.ParameterSearchLimit))
	names, err := s.EmployeeNamesSearch(ctx, params.Get(data.ParameterSearchTerm), limit)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, names)
}

func (s *service) endpointEmployeeRanges(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_ranges")()
	ranges, err := s.EmployeeRanges(ctx)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, ranges)
}

func (s *service) endpointDepartments(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "departments")()
	departments, err := s.Departments(ctx)
	if err != nil {
		handleResponse(writer, err)
		return
	}
	handleResponse(writer, nil, departments)
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.error(ctx, "error while clearing cache: %s", err)
			handleResponse(writer, err)
			return
		}
		s.trace(ctx, "executed cache_clear")
	}
	handleResponse(writer, nil)
}

func (s *service) endpointCacheCountersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.Counter == nil {
		handleResponse(writer, nil, &data.CacheCounters{})
		return
	}
	handleResponse(writer, nil, s.Counter.ReadAll())
}

func (s *service) endpointCacheCountersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	if s.Counter != nil {
		s.Counter.Reset()
	}
	handleResponse(writer, nil)
	s.trace(ctx, "executed cache_counters_clear")
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.Timers == nil {
		handleResponse(writer, nil, &data.Timers{})
		return
	}
	handleResponse(writer, nil, s.Timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	if s.Timers != nil {
		s.Timers.Clear()
	}
	handleResponse(writer, nil)
	s.trace(ctx, "executed timers_clear")
}

func (s *service) buildRoutes() {
	s.Router.HandleFunc("/", s.endpointDefault())
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeesQuery).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesSearchNames, s.endpointEmployeeNamesSearch).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesRanges, s.endpointEmployeeRanges).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesEmpNo, s.endpointEmployeeRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesSalaries, s.endpointEmployeeSalaries).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesTitles, s.endpointEmployeeTitles).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteDepartments, s.endpointDepartments).Methods(http.MethodGet)
	if s.metrics != nil {
		s.Router.Handle(data.RouteMetrics, s.metrics.Handler()).Methods(http.MethodGet)
	}
	s.Router.HandleFunc(data.RouteCache, s.endpointCacheClear).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteCacheCounters, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointCacheCountersRead(w, r)
		case http.MethodDelete:
			s.endpointCacheCountersClear(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteTimers, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointTimersRead(w, r)
		case http.MethodDelete:
			s.endpointTimersClear(w, r)
		}
	})
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins, ok := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; ok && allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods, ok := envs["SERVICE_CORS_ALLOWED_METHODS"]; ok && allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders, ok := envs["SERVICE_CORS_ALLOWED_HEADERS"]; ok && allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	return s.launchServer()
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.cancel == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.error(ctx, "error while shutting down the server: %s", err)
	}
	s.cancel()
	s.Wait()
	s.cancel = nil
	return nil
}
