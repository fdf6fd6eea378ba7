package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/cache"
	"github.com/antonio-alexander/go-employee-query/internal/client"
	"github.com/antonio-alexander/go-employee-query/internal/data"
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
	args := os.Args[1:]
	envs := internal.Envs(".env")
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func queryFromEnvs(envs map[string]string) (data.EmployeeQuery, error) {
	var query data.EmployeeQuery

	params, err := url.ParseQuery(envs["SCENARIO_QUERY"])
	if err != nil {
		return data.EmployeeQuery{}, errors.Wrap(err, "invalid SCENARIO_QUERY")
	}
	query.FromParams(params)
	return query, nil
}

func seconds(envs map[string]string, key string, defaultValue time.Duration) time.Duration {
	if i, err := strconv.Atoi(envs[key]); err == nil && i > 0 {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}

// scenarioStampedingHerd has every client but the first run the same
// query concurrently while the first periodically clears the service's
// cache, the hit/miss ratio shows how many requests reached the store
func scenarioStampedingHerd(ctx context.Context, envs map[string]string, logger utilities.Logger,
	clients ...client.Client) error {
	const correlationId string = "scenario_stampeding_herd"
	const minClients int = 2

	var wg sync.WaitGroup

	readInterval := seconds(envs, "SCENARIO_READ_INTERVAL", time.Second)
	clearInterval := seconds(envs, "SCENARIO_CLEAR_INTERVAL", 2*time.Second)
	scenarioDuration := seconds(envs, "SCENARIO_DURATION", 10*time.Second)
	if len(clients) < minClients {
		return errors.New("not enough clients provided")
	}
	query, err := queryFromEnvs(envs)
	if err != nil {
		return err
	}
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)

	//generate start/stop channels
	start, stop := make(chan struct{}), make(chan struct{})

	//create cache clearing go routine
	wg.Add(1)
	go func(ctx context.Context, client client.Client) {
		defer wg.Done()

		tClear := time.NewTicker(clearInterval)
		defer tClear.Stop()
		<-start
		for {
			select {
			case <-stop:
				return
			case <-tClear.C:
				if err := client.CacheClear(ctx); err != nil {
					logger.Error(ctx, "error while clearing cache: %s", err)
				}
			}
		}
	}(ctx, clients[0])

	//create query go routines
	for i := 1; i < len(clients); i++ {
		wg.Add(1)
		go func(ctx context.Context, clientNumber int, client client.Client) {
			defer wg.Done()

			ctx = internal.CtxWithCorrelationId(ctx,
				fmt.Sprintf("%s_%d", correlationId, clientNumber))
			tRead := time.NewTicker(readInterval)
			defer tRead.Stop()
			<-start
			for {
				select {
				case <-stop:
					return
				case <-tRead.C:
					if _, err := client.EmployeesQuery(ctx, query); err != nil {
						logger.Error(ctx, "error while querying employees: %s", err)
					}
				}
			}
		}(ctx, i, clients[i])
	}

	//clear cache counters and start the go routines
	if err := clients[0].CacheClear(ctx); err != nil {
		return err
	}
	if err := clients[0].CacheCountersClear(ctx); err != nil {
		return err
	}
	close(start)
	select {
	case <-ctx.Done():
	case <-time.After(scenarioDuration):
	}
	close(stop)
	wg.Wait()

	//use initial client to get hit/miss ratios from server
	cacheCounters, err := clients[0].CacheCountersRead(ctx)
	if err != nil {
		return err
	}
	if ratio, ok := cacheCounters.HitRatios["employees_query"]; ok {
		hit := cacheCounters.CounterHits["employees_query"]
		miss := cacheCounters.CounterMisses["employees_query"]
		logger.Info(ctx, "cache hit miss ratio (%d/%d): %0.2f%%",
			hit, hit+miss, ratio*100)
	}
	return nil
}

// scenarioPagination walks every page of the query and verifies that
// the pages don't overlap and add up to the reported total
func scenarioPagination(ctx context.Context, envs map[string]string, logger utilities.Logger,
	clients ...client.Client) error {
	const correlationId string = "scenario_pagination"

	if len(clients) == 0 {
		return errors.New("not enough clients provided")
	}
	query, err := queryFromEnvs(envs)
	if err != nil {
		return err
	}
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)
	seen := make(map[int64]int)
	tStart := time.Now()
	query.Page = 1
	page, err := clients[0].EmployeesQuery(ctx, query)
	if err != nil {
		return err
	}
	for {
		for _, summary := range page.Data {
			if previous, ok := seen[summary.EmpNo]; ok {
				return errors.Errorf("employee %d on page %d and %d",
					summary.EmpNo, previous, page.Page)
			}
			seen[summary.EmpNo] = page.Page
		}
		if int64(query.Page) >= page.TotalPages {
			break
		}
		query.Page++
		next, err := clients[0].EmployeesQuery(ctx, query)
		if err != nil {
			return err
		}
		if next.Total != page.Total {
			return errors.Errorf("total changed from %d to %d on page %d",
				page.Total, next.Total, query.Page)
		}
		page = next
	}
	if int64(len(seen)) != page.Total {
		return errors.Errorf("walked %d employees, expected %d", len(seen), page.Total)
	}
	logger.Info(ctx, "walked %d pages (%d employees) in %v",
		page.TotalPages, page.Total, time.Since(tStart))
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	var clients []client.Client
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create logger
	logger := utilities.NewLogger()
	_ = logger.Configure(envs)

	//print version info
	logger.Info(ctx, "scenarios: go-employee-query v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	nClients, _ := strconv.Atoi(envs["N_CLIENTS"])
	for range max(nClients, 1) {
		//create cache
		parameters := []any{logger}
		if cache := cache.NewFromType(envs["CACHE_TYPE"], envs, logger); cache != nil {
			if err := cache.Configure(envs); err != nil {
				return err
			}
			if err := cache.Open(ctx); err != nil {
				return err
			}
			defer func() {
				if err := cache.Close(context.Background()); err != nil {
					logger.Error(ctx, "error while closing cache: %s", err)
				}
			}()
			parameters = append(parameters, cache)
		}

		//create client
		client := client.NewClient(parameters...)
		if err := client.Configure(envs); err != nil {
			return err
		}
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing client: %s", err)
			}
		}()
		clients = append(clients, client)
	}

	// execute scenario
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		return errors.Errorf("unsupported scenario: %s", scenario)
	case "stampeding_herd":
		logger.Info(ctx, "executing %s scenario", scenario)
		if err := scenarioStampedingHerd(ctx, envs, logger, clients...); err != nil {
			logger.Error(ctx, "error while executing %s scenario: %s", scenario, err)
		}
	case "pagination":
		logger.Info(ctx, "executing %s scenario", scenario)
		if err := scenarioPagination(ctx, envs, logger, clients...); err != nil {
			logger.Error(ctx, "error while executing %s scenario: %s", scenario, err)
		}
	}
	cancel()
	wg.Wait()
	return nil
}
