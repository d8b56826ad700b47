package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"TWScreener/internal/collector"
	"TWScreener/internal/model"
	"TWScreener/internal/screener"
	"TWScreener/internal/strategy"
)

// Data source providers.
const (
	ProviderFinMind = "finmind"
	ProviderYahoo   = "yahoo"
	ProviderMock    = "mock"
)

// DotEnvPath is the optional env file loaded before the environment is read.
var DotEnvPath = ".env"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider     string `yaml:"provider"`
		Token        string `yaml:"token"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Engine   strategy.Params `yaml:"engine"`
	Screener struct {
		Criteria  screener.Criteria `yaml:"criteria"`
		Workers   int               `yaml:"workers"`
		Watchlist []model.Candidate `yaml:"watchlist"`
	} `yaml:"screener"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DotEnvPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load %s: %v", DotEnvPath, err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("FINMIND_API_TOKEN"); v != "" {
		cfg.DataSource.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCREENER_WORKERS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Screener.Workers = n
		}
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderFinMind
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = collector.DefaultLookbackDays
	}
	cfg.Engine = cfg.Engine.WithDefaults()
	cfg.Screener.Criteria = cfg.Screener.Criteria.WithDefaults()
	if cfg.Screener.Workers == 0 {
		cfg.Screener.Workers = screener.DefaultWorkers
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 30 14 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/twscreener.db"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	return cfg, nil
}

// cronParser matches the scheduler's seconds-first cron format.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderFinMind, ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not one of finmind, yahoo, mock", c.DataSource.Provider)
	}
	if c.DataSource.LookbackDays <= 0 {
		return fmt.Errorf("data_source.lookback_days must be positive")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Screener.Workers < 0 {
		return fmt.Errorf("screener.workers must not be negative")
	}
	for i, cand := range c.Screener.Watchlist {
		if cand.Symbol == "" {
			return fmt.Errorf("screener.watchlist[%d]: symbol is required", i)
		}
	}
	if _, err := cronParser.Parse(c.Schedule.ScanCron); err != nil {
		return fmt.Errorf("schedule.scan_cron: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether notifications and bot commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}
