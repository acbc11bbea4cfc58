package feed

import (
	"fmt"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/store"
)

// NewFromConfig builds the configured market-data feed. The returned cache is
// the feed's raw response cache, nil when none is configured.
func NewFromConfig(cfg *store.Config) (interfaces.MarketDataFeed, *Cache, error) {
	switch cfg.Feed.Provider {
	case "MOCK":
		return NewMock(), nil, nil
	case "YAHOO":
		var cache *Cache
		if cfg.Feed.CacheDir != "" {
			c, err := NewCache(cfg.Feed.CacheDir, cfg.Feed.CacheTTL)
			if err != nil {
				return nil, nil, err
			}
			cache = c
		}
		return NewYahoo(YahooOptions{
			BaseURL:           cfg.Feed.BaseURL,
			Timeout:           cfg.Feed.Timeout,
			RequestsPerSecond: cfg.Feed.RequestsPerSecond,
			Burst:             cfg.Feed.Burst,
			MaxRetries:        cfg.Feed.MaxRetries,
			Crumb:             cfg.Feed.Crumb,
			Cache:             cache,
		}), cache, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
	}
}
