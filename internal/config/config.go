// Package config loads service settings from an optional config file and
// WATERLOG_-prefixed environment variables, with defaults for every key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings.
type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Weather   WeatherConfig   `mapstructure:"weather"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// WeatherConfig configures the external rainfall provider. When the API key
// is empty the provider is disabled and every reading comes from the
// seasonal simulation fallback.
type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	City    string        `mapstructure:"city"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the external weather provider should be used.
func (w WeatherConfig) Enabled() bool {
	return w.APIKey != ""
}

// GeocodeConfig configures the geocoding provider used for user reports.
type GeocodeConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	QuerySuffix string        `mapstructure:"query_suffix"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheSize   int           `mapstructure:"cache_size"`
}

// KafkaConfig configures the optional high-risk alert publisher.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// StorageConfig configures the SQLite durable store.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig configures the refresh cadence. Peak hours (14–20) use
// the shorter wait.
type SchedulerConfig struct {
	PeakWait    time.Duration `mapstructure:"peak_wait"`
	OffPeakWait time.Duration `mapstructure:"offpeak_wait"`
}

// Load reads configuration, applying defaults where unset. A config file at
// path is optional; environment variables (WATERLOG_HTTP_ADDR, …) override
// both.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("WATERLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.city", "Delhi,in")
	v.SetDefault("weather.timeout", "10s")

	v.SetDefault("geocode.enabled", true)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocode.user_agent", "waterlog-monitor/1.0")
	v.SetDefault("geocode.query_suffix", "Delhi, India")
	v.SetDefault("geocode.timeout", "10s")
	v.SetDefault("geocode.cache_size", 500)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "waterlog-alerts")

	v.SetDefault("storage.path", "./data/waterlog.db")

	v.SetDefault("scheduler.peak_wait", "5m")
	v.SetDefault("scheduler.offpeak_wait", "15m")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if c.Weather.Enabled() && c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather.timeout must be positive")
	}
	if c.Geocode.Enabled {
		if c.Geocode.Timeout <= 0 {
			return fmt.Errorf("geocode.timeout must be positive")
		}
		if c.Geocode.CacheSize <= 0 {
			return fmt.Errorf("geocode.cache_size must be positive")
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Scheduler.PeakWait <= 0 || c.Scheduler.OffPeakWait <= 0 {
		return fmt.Errorf("scheduler waits must be positive")
	}
	return nil
}
