package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

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
	if err := Main(args, envs); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

// execute runs COMMAND; QUERY holds a raw query string for
// employees_query (e.g. "departments=d002&sortBy=lastSalary")
func execute(ctx context.Context, c client.Client, envs map[string]string) (any, error) {
	empNo, _ := strconv.ParseInt(envs["EMP_NO"], 10, 64)
	switch command := envs["COMMAND"]; command {
	default:
		return nil, errors.Errorf("unsupported command: %s", command)
	case "employees_query":
		var query data.EmployeeQuery

		params, err := url.ParseQuery(envs["QUERY"])
		if err != nil {
			return nil, errors.Wrap(err, "invalid QUERY")
		}
		query.FromParams(params)
		return c.EmployeesQuery(ctx, query)
	case "employee_read":
		return c.EmployeeRead(ctx, empNo)
	case "employee_salaries":
		return c.EmployeeSalaries(ctx, empNo)
	case "employee_titles":
		return c.EmployeeTitles(ctx, empNo)
	case "employee_names_search":
		limit, _ := strconv.Atoi(envs["LIMIT"])
		return c.EmployeeNamesSearch(ctx, envs["TERM"], limit)
	case "employee_ranges":
		return c.EmployeeRanges(ctx)
	case "departments":
		return c.Departments(ctx)
	case "cache_clear":
		return nil, c.CacheClear(ctx)
	case "cache_counters_read":
		return c.CacheCountersRead(ctx)
	case "cache_counters_clear":
		return nil, c.CacheCountersClear(ctx)
	case "timers_read":
		return c.TimersRead(ctx)
	case "timers_clear":
		return nil, c.TimersClear(ctx)
	}
}

func Main(args []string, envs map[string]string) error {
	ctx := internal.CtxWithCorrelationId(context.Background(), internal.GenerateId())
	fmt.Printf("client: go-employee-query v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	logger := utilities.NewLogger()
	_ = logger.Configure(envs)

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
			if err := cache.Close(ctx); err != nil {
				fmt.Printf("error while closing cache: %s\n", err)
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
		if err := client.Close(ctx); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// execute command
	item, err := execute(ctx, client, envs)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	return printJson(item)
}
