package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

const (
	keyPrefixEmployee      string = "employee:"
	keyPrefixEmployeesPage string = "employees_page:"
)

const (
	defaultTTL           = time.Minute
	defaultPruneInterval = 10 * time.Second
)

var (
	ErrEmployeeNotCached      = errors.New("employee not cached")
	ErrEmployeesPageNotCached = errors.New("employees page not cached")
)

// Cache holds read-only results; since nothing in the engine mutates
// employees, entries are only ever removed by expiration or Clear()
type Cache interface {
	EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error)
	EmployeeWrite(ctx context.Context, employee *data.EmployeeDetail) error
	EmployeesPageRead(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error)
	EmployeesPageWrite(ctx context.Context, query data.EmployeeQuery, page *data.EmployeesPage) error
}

func employeeKey(empNo int64) string {
	return keyPrefixEmployee + strconv.FormatInt(empNo, 10)
}

func employeesPageKey(query data.EmployeeQuery) (string, error) {
	key, err := query.ToKey()
	if err != nil {
		return "", fmt.Errorf("error while creating query key: %w", err)
	}
	return keyPrefixEmployeesPage + key, nil
}

func configureTTL(envs map[string]string, ttl, pruneInterval *time.Duration) {
	if s, ok := envs["CACHE_TTL"]; ok {
		i, _ := strconv.Atoi(s)
		*ttl = time.Second * time.Duration(i)
	}
	if *ttl <= 0 {
		*ttl = defaultTTL
	}
	if pruneInterval == nil {
		return
	}
	if s, ok := envs["CACHE_PRUNE_INTERVAL"]; ok {
		i, _ := strconv.Atoi(s)
		*pruneInterval = time.Second * time.Duration(i)
	}
	if *pruneInterval <= 0 {
		*pruneInterval = defaultPruneInterval
	}
}
