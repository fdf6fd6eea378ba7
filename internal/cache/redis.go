package cache

import (
	"context"
	"encoding"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal"
	"github.com/antonio-alexander/go-employee-query/internal/data"
	"github.com/antonio-alexander/go-employee-query/internal/utilities"

	"github.com/redis/go-redis/v9"
)

const redisScanCount int64 = 100

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address  string
		port     string
		password string
		database int
		timeout  time.Duration
		ttl      time.Duration
	}
	utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &redisCache{}
	c.config.address = "localhost"
	c.config.port = "6379"
	c.config.timeout = 10 * time.Second
	c.config.ttl = defaultTTL
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *redisCache) trace(ctx context.Context, format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Trace(ctx, format, v...)
	}
}

func (c *redisCache) error(ctx context.Context, format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Error(ctx, format, v...)
	}
}

func (c *redisCache) Configure(envs map[string]string) error {
	configureTTL(envs, &c.config.ttl, nil)
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort, ok := envs["REDIS_PORT"]; ok {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase, ok := envs["REDIS_DATABASE"]; ok {
		i, _ := strconv.ParseInt(redisDatabase, 10, 64)
		c.config.database = int(i)
	}
	if redisTimeout, ok := envs["REDIS_TIMEOUT"]; ok {
		i, _ := strconv.ParseInt(redisTimeout, 10, 64)
		if i > 0 {
			c.config.timeout = time.Duration(i) * time.Second
		}
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return err
	}
	c.redisClient = redisClient
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.error(ctx, "error while shutting down redis client: %s", err)
	}
	c.redisClient = nil
	return nil
}

// Clear only removes the keys owned by this cache
func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	for _, prefix := range []string{keyPrefixEmployee, keyPrefixEmployeesPage} {
		var keys []string

		iter := c.redisClient.Scan(ctx, 0, prefix+"*", redisScanCount).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *redisCache) read(ctx context.Context, key string, v encoding.BinaryUnmarshaler) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	bytes, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, v.UnmarshalBinary(bytes)
}

func (c *redisCache) write(ctx context.Context, key string, v encoding.BinaryMarshaler) error {
	bytes, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	return c.redisClient.Set(ctx, key, bytes, c.config.ttl).Err()
}

func (c *redisCache) EmployeeRead(ctx context.Context, empNo int64) (*data.EmployeeDetail, error) {
	employee := &data.EmployeeDetail{}
	found, err := c.read(ctx, employeeKey(empNo), employee)
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

func (c *redisCache) EmployeeWrite(ctx context.Context, employee *data.EmployeeDetail) error {
	return c.write(ctx, employeeKey(employee.EmpNo), employee)
}

func (c *redisCache) EmployeesPageRead(ctx context.Context, query data.EmployeeQuery) (*data.EmployeesPage, error) {
	key, err := employeesPageKey(query)
	if err != nil {
		return nil, err
	}
	page := &data.EmployeesPage{}
	found, err := c.read(ctx, key, page)
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

func (c *redisCache) EmployeesPageWrite(ctx context.Context, query data.EmployeeQuery, page *data.EmployeesPage) error {
	key, err := employeesPageKey(query)
	if err != nil {
		return err
	}
	return c.write(ctx, key, page)
}
