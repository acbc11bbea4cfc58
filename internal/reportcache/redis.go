package reportcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/types"
)

type RedisOptions struct {
	Addr   string
	DB     int
	TTL    time.Duration
	Prefix string
}

// Redis stores reports as JSON values that expire after TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ interfaces.ReportStore = (*Redis)(nil)

// NewRedis connects and pings the server. The password comes from REDIS_PASSWORD.
func NewRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "guardian"
	}
	return &Redis{client: client, ttl: opts.TTL, prefix: prefix}, nil
}

func (c *Redis) wrapKey(symbol, day string) string {
	return c.prefix + ":report:" + key(symbol, day)
}

func (c *Redis) Get(ctx context.Context, symbol, day string) (*types.Report, error) {
	data, err := c.client.Get(ctx, c.wrapKey(symbol, day)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var r types.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &r, nil
}

func (c *Redis) Put(ctx context.Context, report *types.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.wrapKey(report.Symbol, report.Date), data, c.ttl).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}
