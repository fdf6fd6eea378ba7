package cache

import (
	"context"
	"encoding"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"
)

type memoryItem struct {
	bytes   []byte
	expires time.Time
}

// memoryCache stores the encoded value so readers never share memory
// with what was written
type memoryCache struct {
	sync.RWMutex
	sync.WaitGroup
	items  map[string]memoryItem
	config struct {
		ttl           time.Duration
		pruneInterval time.Duration
	}
	ctx       context.Context
	ctxCancel context.CancelFunc
	opened    bool
	utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{}
	c.config.ttl = defaultTTL
	c.config.pruneInterval = defaultPruneInterval
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *memoryCache) trace(ctx context.Context, format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Trace(ctx, format, v...)
	}
}

func (c *memoryCache) launchPrune() {
	started := make(chan struct{})
	c.Add(1)
	go func() {
		defer c.Done()

		pruneFx := func() {
			c.Lock()
			defer c.Unlock()

			tNow := time.Now()
			for key, item := range c.items {
				if tNow.After(item.expires) {
					delete(c.items, key)
				}
			}
		}
		tPrune := time.NewTicker(c.config.pruneInterval)
		defer tPrune.Stop()
		close(started)
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-tPrune.C:
				pruneFx()
			}
		}
	}()
	<-started
}

func (c *memoryCache) Configure(envs map[string]string) error {
	configureTTL(envs, &c.config.ttl, &c.config.pruneInterval)
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if c.opened {
		return nil
	}
	c.items = make(map[string]memoryItem)
	c.ctx, c.ctxCancel = context.WithCancel(context.Background())
	c.launchPrune()
	c.opened = true
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	c.Lock()
	if !c.opened {
		c.Unlock()
		return nil
	}
	c.ctxCancel()
	c.opened = false
	c.Unlock()
	c.Wait()
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.items = make(map[string]memoryItem)
	return nil
}

func (c *memoryCache) read(key string, v encoding.BinaryUnmarshaler) (bool, error) {
	c.RLock()
	defer c.RUnlock()

	item, ok := c.items[key]
	if !ok || time.Now().After(item.expires) {
		return false, nil
	}
	return true, v.UnmarshalBinary(item.bytes)
}

func (c *memoryCache) write(key string, v encoding.BinaryMarshaler) error {
	bytes, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()

	if c.items == nil {
		c.items = make(map[string]memoryItem)
	}
	c.items[key] = memoryItem{
		bytes:   bytes,
		expires: time.Now().Add(c.config.ttl),
	}
	return nil
}

func (c *memoryCache) EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	employee := &data.EmployeeDetail{}
	found, err := c.read(employeeKey(empNo), employee)
	if err != nil {
		return nil, err
	}
	if !found {
		c.trace(ctx, "cache miss for employee: %d", empNo)
		return nil, ErrEmployeeNotCached
	}
	c.trace(ctx, "cache hit for employee: %d", empNo)
	return employee, nil
}

func (c *memoryCache) EmployeeWrite(ctx context.Context, employee *data.EmployeeDetail) error {
	return c.write(employeeKey(employee.EmpNo), employee)
}

func (c *memoryCache) EmployeesPageRead(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	key, err := employeesPageKey(query)
	if err != nil {
		return nil, err
	}
	page := &data.EmployeesPage{}
	found, err := c.read(key, page)
	if err != nil {
		return nil, err
	}
	if !found {
		c.trace(ctx, "cache miss for employees page: %s", key)
		return nil, ErrEmployeesPageNotCached
	}
	c.trace(ctx, "cache hit for employees page: %s", key)
	return page, nil
}

func (c *memoryCache) EmployeesPageWrite(ctx context.Context, query data.EmployeeQuery, page *data.EmployeesPage) error {
	key, err := employeesPageKey(query)
	if err != nil {
		return err
	}
	return c.write(key, page)
}
