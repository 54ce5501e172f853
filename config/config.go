package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// ProcessorConfig describes the external payment processor.
type ProcessorConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	AccessKey        string        `mapstructure:"access_key"`
	SecretKey        string        `mapstructure:"secret_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	PayoutMethodType string        `mapstructure:"payout_method_type"`
}

// SettlementConfig holds fee and currency rules for the settlement workflow.
type SettlementConfig struct {
	BaseCurrency         string  `mapstructure:"base_currency"`
	DefaultFeePercentage float64 `mapstructure:"default_fee_percentage"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DatabaseConfig configures the optional PostgreSQL audit store.
// The ledger itself always lives in memory.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Validate checks the values the settlement core cannot run without.
func (c *Config) Validate() error {
	if c.Processor.BaseURL == "" {
		return fmt.Errorf("processor.base_url is required")
	}
	if c.Processor.AccessKey == "" || c.Processor.SecretKey == "" {
		return fmt.Errorf("processor.access_key and processor.secret_key are required")
	}
	if c.Processor.Timeout <= 0 {
		return fmt.Errorf("processor.timeout must be positive, got %s", c.Processor.Timeout)
	}
	if len(c.Settlement.BaseCurrency) != 3 {
		return fmt.Errorf("settlement.base_currency must be a 3-letter code, got %q", c.Settlement.BaseCurrency)
	}
	if c.Settlement.DefaultFeePercentage < 0 || c.Settlement.DefaultFeePercentage > 100 {
		return fmt.Errorf("settlement.default_fee_percentage must be within [0, 100], got %v", c.Settlement.DefaultFeePercentage)
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MPF_ (Merchant Payment Facilitator).
// Nested keys use underscore: MPF_PROCESSOR_SECRET_KEY, MPF_SETTLEMENT_BASE_CURRENCY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("processor.base_url", "https://sandboxapi.rapyd.net")
	v.SetDefault("processor.access_key", "")
	v.SetDefault("processor.secret_key", "")
	v.SetDefault("processor.timeout", "10s")
	v.SetDefault("processor.payout_method_type", "bank_transfer")
	v.SetDefault("settlement.base_currency", "USD")
	v.SetDefault("settlement.default_fee_percentage", 10.0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payment_facilitator")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MPF_PROCESSOR_BASE_URL -> processor.base_url
	v.SetEnvPrefix("MPF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Settlement.BaseCurrency = strings.ToUpper(cfg.Settlement.BaseCurrency)

	return &cfg, nil
}
