package reportcache

import (
	"errors"
	"fmt"
	"strings"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/store"
)

// ErrNotFound is returned by Get when no report exists for the (symbol, day) pair.
var ErrNotFound = errors.New("report not found")

func key(symbol, day string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "|" + day
}

// New opens the backend selected by cfg.Cache.Backend.
func New(cfg *store.Config) (interfaces.ReportStore, error) {
	switch cfg.Cache.Backend {
	case "MEMORY":
		return NewMemory(), nil
	case "SQLITE":
		return NewSQLite(cfg.Cache.SQLitePath)
	case "REDIS":
		return NewRedis(RedisOptions{
			Addr:   cfg.Cache.RedisAddr,
			DB:     cfg.Cache.RedisDB,
			TTL:    cfg.Cache.RedisTTL,
			Prefix: cfg.Cache.Prefix,
		})
	case "BADGER":
		return NewBadger(cfg.Cache.BadgerDir)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}
