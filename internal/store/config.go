package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Timezone string `yaml:"timezone" default:"Asia/Seoul"`

	Feed struct {
		Provider          string        `yaml:"provider" default:"YAHOO" validate:"oneof=YAHOO MOCK"`
		BaseURL           string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		Timeout           time.Duration `yaml:"timeout" default:"20s"`
		FetchTimeout      time.Duration `yaml:"fetch_timeout" default:"30s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"4" validate:"gt=0"`
		Burst             int           `yaml:"burst" default:"4" validate:"gte=1"`
		MaxRetries        int           `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
		CacheDir          string        `yaml:"cache_dir"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"6h"`
		Crumb             string        `yaml:"crumb"`
	} `yaml:"feed"`

	Report struct {
		Enabled bool `yaml:"enabled" default:"true"`
	} `yaml:"report"`

	Cache struct {
		Backend    string        `yaml:"backend" default:"SQLITE" validate:"oneof=MEMORY SQLITE REDIS BADGER"`
		SQLitePath string        `yaml:"sqlite_path" default:"data/reports.db"`
		BadgerDir  string        `yaml:"badger_dir" default:"data/badger"`
		RedisAddr  string        `yaml:"redis_addr" default:"localhost:6379"`
		RedisDB    int           `yaml:"redis_db"`
		RedisTTL   time.Duration `yaml:"redis_ttl" default:"48h"`
		Prefix     string        `yaml:"prefix" default:"guardian"`
	} `yaml:"cache"`

	LLM struct {
		Provider    string  `yaml:"provider" default:"NOOP" validate:"oneof=CLAUDE OPENAI NOOP"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens" default:"2048" validate:"gt=0"`
		Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
		System      string  `yaml:"system"`
		Endpoint    string  `yaml:"endpoint"`
	} `yaml:"llm"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	AnalysisLog struct {
		Dir           string `yaml:"dir" default:"logs"`
		RetentionDays int    `yaml:"retention_days" default:"30"`
	} `yaml:"analysis_log"`

	Watch struct {
		Schedule string   `yaml:"schedule" default:"0 40 15 * * 1-5"`
		Symbols  []string `yaml:"symbols"`
	} `yaml:"watch"`
}

// Location resolves the configured timezone used for report cache days.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: '%v' fails '%s=%s'", strings.ToLower(fe.Namespace()), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	if c.LLM.Provider != "NOOP" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required for provider '%s'", c.LLM.Provider)
	}
	if c.Cache.Backend == "REDIS" && c.Cache.RedisAddr == "" {
		return errors.New("cache.redis_addr cannot be empty for REDIS backend")
	}
	if c.Feed.Provider == "YAHOO" && c.Feed.BaseURL == "" {
		return errors.New("feed.base_url cannot be empty for YAHOO provider")
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	for i, s := range c.Watch.Symbols {
		c.Watch.Symbols[i] = strings.TrimSpace(s)
	}
	c.Feed.Provider = strings.ToUpper(c.Feed.Provider)
	c.Cache.Backend = strings.ToUpper(c.Cache.Backend)
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
