package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	RequireAPIKey bool    `mapstructure:"require_api_key"`
	APIKey        string  `mapstructure:"api_key"`
	ClientQPS     float64 `mapstructure:"client_qps"`
	ClientBurst   int     `mapstructure:"client_burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	ScanRetentionDays  int    `mapstructure:"scan_retention_days"`
	CleanupIntervalMin int    `mapstructure:"cleanup_interval_minutes"`
}

func (d DatabaseConfig) ScanRetention() time.Duration {
	return time.Duration(d.ScanRetentionDays) * 24 * time.Hour
}

func (d DatabaseConfig) CleanupInterval() time.Duration {
	return time.Duration(d.CleanupIntervalMin) * time.Minute
}

type ProvidersConfig struct {
	PriceBaseURL   string `mapstructure:"price_base_url"`
	PriceTimeoutMs int    `mapstructure:"price_timeout_ms"`
	QuoteStreamURL string `mapstructure:"quote_stream_url"`
}

// ResilienceConfig holds the coordinator knobs shared by every external call.
type ResilienceConfig struct {
	RateWindowMinutes   int `mapstructure:"rate_window_minutes"`
	RateMaxRequests     int `mapstructure:"rate_max_requests"`
	BreakerThreshold    int `mapstructure:"breaker_threshold"`
	BreakerResetMinutes int `mapstructure:"breaker_reset_minutes"`
	SweepIntervalSec    int `mapstructure:"sweep_interval_seconds"`

	BatchSize         int `mapstructure:"batch_size"`
	BatchDelayMs      int `mapstructure:"batch_delay_ms"`
	VerdictTTLMinutes int `mapstructure:"verdict_ttl_minutes"`
	QuoteTTLMinutes   int `mapstructure:"quote_ttl_minutes"`
}

func (r ResilienceConfig) RateWindow() time.Duration {
	return time.Duration(r.RateWindowMinutes) * time.Minute
}

func (r ResilienceConfig) BreakerReset() time.Duration {
	return time.Duration(r.BreakerResetMinutes) * time.Minute
}

func (r ResilienceConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalSec) * time.Second
}

func (r ResilienceConfig) BatchDelay() time.Duration {
	return time.Duration(r.BatchDelayMs) * time.Millisecond
}

type AnalysisConfig struct {
	TrustedSymbols []string `mapstructure:"trusted_symbols"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. RISKGATE_REDIS_ADDR
	viper.SetEnvPrefix("riskgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.client_qps", 20)
	viper.SetDefault("auth.client_burst", 40)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("database.scan_retention_days", 30)
	viper.SetDefault("database.cleanup_interval_minutes", 60)
	viper.SetDefault("providers.price_timeout_ms", 5000)
	viper.SetDefault("resilience.rate_window_minutes", 15)
	viper.SetDefault("resilience.rate_max_requests", 100)
	viper.SetDefault("resilience.breaker_threshold", 5)
	viper.SetDefault("resilience.breaker_reset_minutes", 5)
	viper.SetDefault("resilience.sweep_interval_seconds", 60)
	viper.SetDefault("resilience.batch_size", 5)
	viper.SetDefault("resilience.batch_delay_ms", 500)
	viper.SetDefault("resilience.verdict_ttl_minutes", 15)
	viper.SetDefault("resilience.quote_ttl_minutes", 2)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
