package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RocSentinel/internal/model"
)

// Data source kinds.
const (
	SourceCSV   = "csv"
	SourceYahoo = "yahoo"
)

// Config holds all application configuration.
type Config struct {
	Backtest struct {
		Period        *int     `yaml:"period"`
		StartingValue *float64 `yaml:"starting_value"`
		Threshold     *float64 `yaml:"threshold"`
		MarkToMarket  *bool    `yaml:"mark_to_market"`
		SkipAfterSell bool     `yaml:"skip_after_sell"`
	} `yaml:"backtest"`
	DataSource struct {
		Kind    string `yaml:"kind"`
		CSVPath string `yaml:"csv_path"`
		Symbol  string `yaml:"symbol"`
		Days    int    `yaml:"days"`
	} `yaml:"data_source"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// LoadEnvFiles loads the dotenv files that exist. Variables already set in the
// environment win.
func LoadEnvFiles(filenames ...string) error {
	for _, name := range filenames {
		if s, err := os.Stat(name); err != nil || s.IsDir() {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ROC_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ROC_PERIOD: %w", err)
		}
		c.Backtest.Period = &n
	}
	if v := os.Getenv("ROC_STARTING_VALUE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse ROC_STARTING_VALUE: %w", err)
		}
		c.Backtest.StartingValue = &f
	}
	if v := os.Getenv("ROC_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse ROC_THRESHOLD: %w", err)
		}
		c.Backtest.Threshold = &f
	}
	if v := os.Getenv("ROC_MARK_TO_MARKET"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse ROC_MARK_TO_MARKET: %w", err)
		}
		c.Backtest.MarkToMarket = &b
	}
	if v := os.Getenv("ROC_SKIP_AFTER_SELL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse ROC_SKIP_AFTER_SELL: %w", err)
		}
		c.Backtest.SkipAfterSell = b
	}
	if v := os.Getenv("DATA_CSV_PATH"); v != "" {
		c.DataSource.CSVPath = v
	}
	if v := os.Getenv("DATA_SYMBOL"); v != "" {
		c.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backtest.Period == nil {
		period := 9
		c.Backtest.Period = &period
	}
	if c.Backtest.StartingValue == nil {
		sv := 100000.0
		c.Backtest.StartingValue = &sv
	}
	if c.Backtest.Threshold == nil {
		th := -20.0
		c.Backtest.Threshold = &th
	}
	if c.Backtest.MarkToMarket == nil {
		mtm := true
		c.Backtest.MarkToMarket = &mtm
	}
	c.DataSource.Kind = strings.ToLower(strings.TrimSpace(c.DataSource.Kind))
	if c.DataSource.Kind == "" {
		if c.DataSource.CSVPath != "" {
			c.DataSource.Kind = SourceCSV
		} else {
			c.DataSource.Kind = SourceYahoo
		}
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "SOXL"
	}
	// CSV input is used whole unless days is set explicitly.
	if c.DataSource.Days == 0 && c.DataSource.Kind == SourceYahoo {
		c.DataSource.Days = 730
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/roc_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Backtest.Period == nil || *c.Backtest.Period <= 0 {
		return fmt.Errorf("backtest.period must be positive")
	}
	if c.Backtest.StartingValue == nil || *c.Backtest.StartingValue <= 0 {
		return fmt.Errorf("backtest.starting_value must be positive")
	}
	switch c.DataSource.Kind {
	case SourceCSV:
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv source")
		}
		if c.DataSource.Days < 0 {
			return fmt.Errorf("data_source.days must not be negative")
		}
	case SourceYahoo:
		if c.DataSource.Symbol == "" {
			return fmt.Errorf("data_source.symbol is required for yahoo source")
		}
		if c.DataSource.Days <= *c.Backtest.Period {
			return fmt.Errorf("data_source.days must exceed backtest.period")
		}
	default:
		return fmt.Errorf("unknown data_source.kind %q", c.DataSource.Kind)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether reports should also go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Params returns the simulator parameters. Call after Load, which fills defaults.
func (c *Config) Params() model.BacktestParams {
	p := model.BacktestParams{
		Period:        9,
		StartingValue: 100000,
		Threshold:     -20,
		MarkToMarket:  true,
		SkipAfterSell: c.Backtest.SkipAfterSell,
	}
	if c.Backtest.Period != nil {
		p.Period = *c.Backtest.Period
	}
	if c.Backtest.StartingValue != nil {
		p.StartingValue = *c.Backtest.StartingValue
	}
	if c.Backtest.Threshold != nil {
		p.Threshold = *c.Backtest.Threshold
	}
	if c.Backtest.MarkToMarket != nil {
		p.MarkToMarket = *c.Backtest.MarkToMarket
	}
	return p
}
