package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"ParamSweep/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			FlushInterval  time.Duration `yaml:"flush_interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Candles struct {
		Provider           string        `yaml:"provider" default:"hyperliquid"`
		BaseURL            string        `yaml:"base_url"`
		QuoteAsset         string        `yaml:"quote_asset" default:"USDT"`
		MinRequestInterval time.Duration `yaml:"min_request_interval" default:"500ms"`
		Timeout            time.Duration `yaml:"timeout" default:"10s"`
		Retries            int           `yaml:"retries" default:"2"`
		RetryBackoff       time.Duration `yaml:"retry_backoff" default:"1s"`
		Archive            bool          `yaml:"archive"`
	} `yaml:"candles"`
	Backtest struct {
		Coins           []string                  `yaml:"coins"`
		PositionSizeUSD float64                   `yaml:"position_size_usd" default:"100"`
		TimeRanges      map[string]int            `yaml:"time_ranges"`
		Workers         int                       `yaml:"workers"`
		ResultsDir      string                    `yaml:"results_dir" default:"backtest_results"`
		Strategies      map[string]StrategyConfig `yaml:"strategies"`
	} `yaml:"backtest"`
	ParamStore struct {
		Backend  string        `yaml:"backend" default:"file"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"5m"`
	} `yaml:"param_store"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"paramsweep"`
	} `yaml:"redis"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			Results       string `yaml:"results" default:"paramsweep.results"`
			Signals       string `yaml:"signals" default:"paramsweep.signals"`
			Logs          string `yaml:"logs" default:"paramsweep.logs"`
			SweepRequests string `yaml:"sweep_requests" default:"paramsweep.sweep_requests"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"paramsweep"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"16"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Live struct {
		Enabled      bool          `yaml:"enabled"`
		Coins        []string      `yaml:"coins"`
		Strategies   []string      `yaml:"strategies"`
		PollInterval time.Duration `yaml:"poll_interval" default:"1m"`
	} `yaml:"live"`
}

// StrategyConfig overrides the built-in tuning of a strategy id.
type StrategyConfig struct {
	Family   string               `yaml:"family"`
	Interval string               `yaml:"interval"`
	Ranges   map[string][]float64 `yaml:"ranges"`
	Defaults map[string]float64   `yaml:"defaults"`
}

// DefaultTimeRanges maps time-range labels to minutes of history.
var DefaultTimeRanges = map[string]int{
	"24 Hours": 1440,
	"72 Hours": 4320,
	"7 Days":   10080,
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.fillTimeRanges()
	return &c
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	c.applyDefaults()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.fillTimeRanges()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("COINS"); v != "" {
		c.Backtest.Coins = util.SplitList(v)
	}
	if v := os.Getenv("CANDLE_PROVIDER"); v != "" {
		c.Candles.Provider = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("PARAM_STORE"); v != "" {
		c.ParamStore.Backend = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// applyDefaults runs before decoding so explicit zero values in YAML win.
func (c *Config) applyDefaults() {
	// defaults.Set only fails on non-pointer input or malformed tags
	_ = defaults.Set(c)
}

func (c *Config) fillTimeRanges() {
	if len(c.Backtest.TimeRanges) == 0 {
		c.Backtest.TimeRanges = make(map[string]int, len(DefaultTimeRanges))
		for k, v := range DefaultTimeRanges {
			c.Backtest.TimeRanges[k] = v
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Candles.Provider {
	case "hyperliquid", "binance":
	default:
		return fmt.Errorf("candles.provider must be 'hyperliquid' or 'binance', got '%s'", c.Candles.Provider)
	}
	if c.Candles.Retries < 0 {
		return fmt.Errorf("candles.retries must be >= 0")
	}
	if c.Candles.Retries > 0 && c.Candles.RetryBackoff < c.Candles.MinRequestInterval {
		return fmt.Errorf("candles.retry_backoff must not be shorter than candles.min_request_interval")
	}
	if c.Candles.MinRequestInterval < 0 {
		return fmt.Errorf("candles.min_request_interval cannot be negative")
	}
	if c.Backtest.PositionSizeUSD <= 0 {
		return fmt.Errorf("backtest.position_size_usd must be > 0, got %v", c.Backtest.PositionSizeUSD)
	}
	if c.Backtest.Workers < 0 {
		return fmt.Errorf("backtest.workers cannot be negative")
	}
	for label, minutes := range c.Backtest.TimeRanges {
		if minutes <= 0 {
			return fmt.Errorf("backtest.time_ranges[%q] must be > 0", label)
		}
	}
	switch c.ParamStore.Backend {
	case "file":
		if c.Backtest.ResultsDir == "" {
			return fmt.Errorf("backtest.results_dir is required for the file param store")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse param store")
		}
	default:
		return fmt.Errorf("param_store.backend must be 'file' or 'clickhouse', got '%s'", c.ParamStore.Backend)
	}
	if c.Candles.Archive && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when candles.archive is enabled")
	}
	if c.Kafka.Consumer.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when the consumer is enabled")
	}
	if c.Live.Enabled && (len(c.Live.Coins) == 0 || len(c.Live.Strategies) == 0) {
		return fmt.Errorf("live.coins and live.strategies are required when live is enabled")
	}
	return nil
}

// TimeRange returns the history length of a time-range label.
func (c *Config) TimeRange(label string) (time.Duration, error) {
	minutes, ok := c.Backtest.TimeRanges[label]
	if !ok {
		return 0, fmt.Errorf("unknown time range %q", label)
	}
	return util.Minutes(minutes), nil
}
