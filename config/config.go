package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
)

// Config for the whole application
type Config struct {
	App        AppConfig
	API        APIConfig
	Kafka      KafkaConfig
	Metrics    MetricsConfig
	Engine     EngineConfig
	Simulation models.SimulationParameters
}

// General application configuration
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string `mapstructure:"log_level"`
}

// Configuration for the API server
type APIConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
	// Simulation requests per second, 0 disables limiting
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	// Largest accepted simulation request body
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Configuration for result publishing
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Breaker      BreakerConfig
}

// Circuit breaker settings for the Kafka publisher
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Configuration for metrics
type MetricsConfig struct {
	Prometheus PrometheusConfig
}

// Configuration for Prometheus metrics
type PrometheusConfig struct {
	Enabled bool
	Port    int
}

// Configuration for the simulation engine
type EngineConfig struct {
	Workers  int
	Seed     uint64
	MaxPaths int `mapstructure:"max_paths"`
	MaxRows  int `mapstructure:"max_rows"`
}

// Load reads the configuration from defaults, an optional YAML file and
// MCPRICER_* environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MCPRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// SimulationParameters returns a copy of the configured run inputs
func (c *Config) SimulationParameters() models.SimulationParameters {
	return c.Simulation.Clone()
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "mc-scenario-pricer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "10s")
	v.SetDefault("api.write_timeout", "120s")
	v.SetDefault("api.shutdown_timeout", "30s")
	v.SetDefault("api.run_timeout", "110s")
	v.SetDefault("api.rate_limit", 2.0)
	v.SetDefault("api.rate_burst", 4)
	v.SetDefault("api.max_body_bytes", 1<<20)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "pricing.results")
	v.SetDefault("kafka.max_attempts", 3)
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.breaker.max_failures", 5)
	v.SetDefault("kafka.breaker.timeout", "30s")

	// Metrics defaults
	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.port", 9090)

	// Engine defaults
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.max_paths", 5_000_000)
	v.SetDefault("engine.max_rows", 1_000_000)

	// Simulation defaults
	v.SetDefault("simulation.r", 3.0)
	v.SetDefault("simulation.q", 0.0)
	v.SetDefault("simulation.s0", 50000.0)
	v.SetDefault("simulation.s0_step", 2.5)
	v.SetDefault("simulation.vol", 20.0)
	v.SetDefault("simulation.vol_step", 1.0)
	v.SetDefault("simulation.n_paths", 10000)
	v.SetDefault("simulation.maturities", []float64{4, 5, 6})
	v.SetDefault("simulation.strikes", []float64{50000, 52000})
}

// GetConfigPath returns the config file path from MCPRICER_CONFIG_PATH, if set
func GetConfigPath() string {
	return os.Getenv("MCPRICER_CONFIG_PATH")
}
