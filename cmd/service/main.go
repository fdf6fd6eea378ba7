package main

import (
	"context"
	stdsql "database/sql"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/logic"
	"github.com/antonio-alexander/go-employee-query/internal/service"
	"github.com/antonio-alexander/go-employee-query/internal/sql"
	"github.com/antonio-alexander/go-employee-query/internal/sql/fixtures"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/pkg/errors"
)

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

func main() {
	pwd, _ := os.Getwd()
	args := os.Args[1:]
	envs := internal.Envs(".env")
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(pwd, args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

// openSeeded opens a sqlite database and loads n generated employees
// (plus the two scenario employees) once the schema exists; it's used
// to run the service without a mysql server (DATABASE_SEED)
func openSeeded(ctx context.Context, envs map[string]string, logger utilities.Logger, n int) (interface {
	internal.Configurer
	internal.Opener
	sql.Sql
}, error) {
	file := envs["DATABASE_FILE"]
	if file == "" {
		file = ":memory:"
	}
	db, err := stdsql.Open(sql.DriverSqlite, file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := sql.NewMySql(db, logger)
	if err := s.Configure(envs); err != nil {
		return nil, err
	}
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	employees := append(fixtures.Scenario(now), fixtures.Generate(now, n)...)
	if err := fixtures.Load(ctx, db, employees...); err != nil {
		return nil, errors.Wrap(err, "unable to seed database")
	}
	logger.Info(ctx, "seeded database with %d employees", len(employees))
	return s, nil
}

func Main(pwd string, args []string, envs map[string]string, osSignal chan os.Signal) error {
	var s interface {
		internal.Configurer
		internal.Opener
		sql.Sql
	}
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create utilities
	logger := utilities.NewLogger()
	_ = logger.Configure(envs)
	timers := utilities.NewTimers()
	counter := utilities.NewCounter()
	metrics := utilities.NewMetrics()
	if err := metrics.Configure(envs); err != nil {
		return err
	}

	//print version info
	logger.Info(ctx, "server: go-employee-query v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create sql, configure and open
	switch seed, _ := strconv.Atoi(envs["DATABASE_SEED"]); {
	case seed > 0 && envs["DATABASE_DRIVER"] == sql.DriverSqlite:
		seeded, err := openSeeded(ctx, envs, logger, seed)
		if err != nil {
			return err
		}
		s = seeded
	default:
		s = sql.NewMySql(logger)
		if err := s.Configure(envs); err != nil {
			return err
		}
		if err := s.Open(ctx); err != nil {
			return err
		}
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing sql: %s", err)
		}
	}()

	// create cache
	cache := cache.NewFromType(envs["CACHE_TYPE"], envs, logger)
	if cache != nil {
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				logger.Error(context.Background(), "error while closing cache: %s", err)
			}
		}()
	}

	//create logic, configure and open
	parameters := []any{s, counter, metrics, logger}
	if cache != nil {
		parameters = append(parameters, cache)
	}
	logic := logic.NewLogic(parameters...)
	if err := logic.Configure(envs); err != nil {
		return err
	}
	if err := logic.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := logic.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing logic: %s", err)
		}
	}()

	//create service, configure and open
	parameters = []any{logic, counter, timers, metrics, logger}
	if cache != nil {
		parameters = append(parameters, cache)
	}
	service := service.NewService(parameters...)
	if err := service.Configure(envs); err != nil {
		return err
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	wg.Wait()
	return service.Close(context.Background())
}
