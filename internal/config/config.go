package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// Environment variables that override the file.
const (
	EnvTwelveDataAPIKey = "TWELVE_DATA_API_KEY"
	EnvPolygonAPIKey    = "POLYGON_API_KEY"
	EnvProvider         = "ARGO_CHART_PROVIDER"
	EnvDataPath         = "ARGO_CHART_DATA_PATH"
	EnvListen           = "ARGO_CHART_LISTEN"
	EnvLogLevel         = "ARGO_CHART_LOG_LEVEL"
)

// Config is the application configuration.
type Config struct {
	Provider        provider.ProviderType `yaml:"provider" json:"provider" validate:"required,oneof=twelvedata polygon" jsonschema:"title=Provider,description=Market data provider,enum=twelvedata,enum=polygon,default=twelvedata"`
	APIKey          string                `yaml:"api_key" json:"api_key,omitempty" jsonschema:"title=API Key,description=Twelve Data API key; TWELVE_DATA_API_KEY takes precedence"`
	PolygonAPIKey   string                `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" validate:"required_if=Provider polygon" jsonschema:"title=Polygon API Key,description=Required when provider is polygon"`
	BaseURL         string                `yaml:"base_url" json:"base_url,omitempty" validate:"omitempty,url" jsonschema:"title=Base URL,description=Override of the Twelve Data endpoint"`
	FetchTimeout    time.Duration         `yaml:"fetch_timeout" json:"fetch_timeout,omitempty" validate:"gte=0" jsonschema:"title=Fetch Timeout,description=Upper bound of one upstream fetch in nanoseconds (YAML accepts 30s)"`
	MaxOutputSize   int                   `yaml:"max_output_size" json:"max_output_size" validate:"gte=0" jsonschema:"title=Max Output Size,description=Largest bar count a request may ask for,minimum=0,default=5000"`
	Listen          string                `yaml:"listen" json:"listen" validate:"required" jsonschema:"title=Listen Address,default=:8080"`
	DataPath        string                `yaml:"data_path" json:"data_path" validate:"required" jsonschema:"title=Data Path,description=Directory for exports,default=./data"`
	WatchlistDB     string                `yaml:"watchlist_db" json:"watchlist_db,omitempty" jsonschema:"title=Watchlist Database,description=DuckDB file holding the watchlist; empty means <data_path>/watchlist.duckdb and :memory: keeps it in memory"`
	RefreshCron     string                `yaml:"refresh_cron" json:"refresh_cron,omitempty" jsonschema:"title=Refresh Schedule,description=Six-field cron spec for refreshing watchlist history; empty disables"`
	DefaultInterval string                `yaml:"default_interval" json:"default_interval" jsonschema:"title=Default Interval,enum=daily,enum=weekly,enum=monthly,default=daily"`
	DefaultRange    string                `yaml:"default_range" json:"default_range" jsonschema:"title=Default Range,enum=1M,enum=3M,enum=1Y,enum=5Y,enum=Max,default=1Y"`
	LogLevel        string                `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Provider:        provider.ProviderTwelveData,
		FetchTimeout:    30 * time.Second,
		MaxOutputSize:   5000,
		Listen:          ":8080",
		DataPath:        "./data",
		DefaultInterval: string(types.IntervalDaily),
		DefaultRange:    types.DefaultRange.Label,
		LogLevel:        "info",
	}
}

// Load reads path (optional) over the defaults, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	config.applyEnv(lookup)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvTwelveDataAPIKey, &c.APIKey},
		{EnvPolygonAPIKey, &c.PolygonAPIKey},
		{EnvDataPath, &c.DataPath},
		{EnvListen, &c.Listen},
		{EnvLogLevel, &c.LogLevel},
	}

	for _, o := range overrides {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.target = v
		}
	}

	if v, ok := lookup(EnvProvider); ok && v != "" {
		c.Provider = provider.ProviderType(v)
	}
}

// Validate checks field constraints and the interval/range presets.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := types.ParseInterval(c.DefaultInterval); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid default_interval", err)
	}

	if _, err := types.ParseRange(c.DefaultRange); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid default_range", err)
	}

	return nil
}

// Interval is the parsed default interval. Validate guarantees it parses.
func (c *Config) Interval() types.Interval {
	interval, err := types.ParseInterval(c.DefaultInterval)
	if err != nil {
		return types.IntervalDaily
	}

	return interval
}

// Range is the parsed default range.
func (c *Config) Range() types.Range {
	r, err := types.ParseRange(c.DefaultRange)
	if err != nil {
		return types.DefaultRange
	}

	return r
}

// ProviderConfig selects the upstream fetcher.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		APIKey:   c.PolygonAPIKey,
		Timeout:  c.FetchTimeout,
	}
}

// CacheAPIKey is the credential the history cache checks before fetching.
func (c *Config) CacheAPIKey() string {
	if c.Provider == provider.ProviderPolygon {
		return c.PolygonAPIKey
	}

	return c.APIKey
}

// InMemoryWatchlist selects a watchlist that is not persisted.
const InMemoryWatchlist = ":memory:"

// WatchlistPath resolves where the watchlist is stored. An empty result means in memory.
func (c *Config) WatchlistPath() string {
	switch c.WatchlistDB {
	case InMemoryWatchlist:
		return ""
	case "":
		return filepath.Join(c.DataPath, "watchlist.duckdb")
	default:
		return c.WatchlistDB
	}
}

// Redacted is safe to log.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***"
	}

	if c.PolygonAPIKey != "" {
		c.PolygonAPIKey = "***"
	}

	return c
}

func (c Config) String() string {
	r := c.Redacted()

	return fmt.Sprintf("provider=%s listen=%s data_path=%s refresh_cron=%q", r.Provider, r.Listen, r.DataPath, r.RefreshCron)
}
