package config

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RECORDS_PORT.
const EnvPrefix = "records"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Canonical CanonicalConfig `mapstructure:"canonical"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	Compress        bool          `mapstructure:"compress"`
	// HSTS should stay off unless TLS terminates at this process
	HSTS            bool          `mapstructure:"hsts"`
}

type CanonicalConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxBatch    int `mapstructure:"max_batch"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// envOverrides are applied on top of the file, e.g. RECORDS_MAX_BATCH.
// Pointers stay nil when the variable is unset.
type envOverrides struct {
	Port               *int           `split_words:"true"`
	RequestTimeout     *time.Duration `split_words:"true"`
	MaxBodyBytes       *int64         `split_words:"true"`
	Concurrency        *int           `split_words:"true"`
	MaxBatch           *int           `split_words:"true"`
	RateLimitEnabled   *bool          `split_words:"true"`
	RateLimitRps       *float64       `split_words:"true"`
	RateLimitBurst     *int           `split_words:"true"`
	LogLevel           *string        `split_words:"true"`
	LogJson            *bool          `split_words:"true"`
	CorsAllowedOrigins []string       `split_words:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 20*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 4<<20)
	v.SetDefault("server.compress", true)
	v.SetDefault("server.hsts", false)

	v.SetDefault("canonical.concurrency", 8)
	v.SetDefault("canonical.max_batch", 500)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "records")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// LoadConfig reads path, or config.yaml from . and ./config when path is
// empty. A missing file is not an error; defaults and environment apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Port != nil {
		c.Server.Port = *env.Port
	}
	if env.RequestTimeout != nil {
		c.Server.RequestTimeout = *env.RequestTimeout
	}
	if env.MaxBodyBytes != nil {
		c.Server.MaxBodyBytes = *env.MaxBodyBytes
	}
	if env.Concurrency != nil {
		c.Canonical.Concurrency = *env.Concurrency
	}
	if env.MaxBatch != nil {
		c.Canonical.MaxBatch = *env.MaxBatch
	}
	if env.RateLimitEnabled != nil {
		c.RateLimit.Enabled = *env.RateLimitEnabled
	}
	if env.RateLimitRps != nil {
		c.RateLimit.RequestsPerSecond = *env.RateLimitRps
	}
	if env.RateLimitBurst != nil {
		c.RateLimit.Burst = *env.RateLimitBurst
	}
	if env.LogLevel != nil {
		c.Log.Level = *env.LogLevel
	}
	if env.LogJson != nil {
		c.Log.JSON = *env.LogJson
	}
	if len(env.CorsAllowedOrigins) > 0 {
		c.CORS.AllowedOrigins = env.CorsAllowedOrigins
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Canonical.Concurrency <= 0 {
		return fmt.Errorf("canonical.concurrency must be positive")
	}
	if c.Canonical.MaxBatch <= 0 {
		return fmt.Errorf("canonical.max_batch must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit needs positive requests_per_second and burst when enabled")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	return nil
}
