package cache

import (
	"context"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

// stashCache delegates storage (and expiration) to a go-stash
// implementation (memory or redis)
type stashCache struct {
	logger utilities.Logger
	stash  interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Error(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Error(ctx, format, v...)
	}
}

func (c *stashCache) Trace(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Trace(ctx, format, v...)
	}
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Initialize()
	}
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	employee := &data.EmployeeDetail{}
	if err := c.Stasher.Read(employeeKey(empNo), employee); err != nil {
		c.Trace(ctx, "cache miss for employee (%d): %s", empNo, err)
		return nil, ErrEmployeeNotCached
	}
	c.Trace(ctx, "cache hit for employee: %d", empNo)
	return employee, nil
}

func (c *stashCache) EmployeeWrite(ctx context.Context, employee *data.EmployeeDetail) error {
	if _, err := c.Stasher.Write(employeeKey(employee.EmpNo), employee); err != nil {
		c.Error(ctx, "error while writing employee (%d): %s", employee.EmpNo, err)
		return err
	}
	c.Trace(ctx, "cached employee: %d", employee.EmpNo)
	return nil
}

func (c *stashCache) EmployeesPageRead(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	key, err := employeesPageKey(query)
	if err != nil {
		return nil, err
	}
	page := &data.EmployeesPage{}
	if err := c.Stasher.Read(key, page); err != nil {
		c.Trace(ctx, "cache miss for employees page (%s): %s", key, err)
		return nil, ErrEmployeesPageNotCached
	}
	c.Trace(ctx, "cache hit for employees page: %s", key)
	return page, nil
}

func (c *stashCache) EmployeesPageWrite(ctx context.Context, query data.EmployeeQuery, page *data.EmployeesPage) error {
	key, err := employeesPageKey(query)
	if err != nil {
		c.Error(ctx, "error while creating query key: %s", err)
		return err
	}
	if _, err := c.Stasher.Write(key, page); err != nil {
		c.Error(ctx, "error while writing employees page: %s", err)
		return err
	}
	c.Trace(ctx, "cached employees page: %s", key)
	return nil
}
