package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Hub       HubConfig       `mapstructure:"hub"`
	Scorer    ScorerConfig    `mapstructure:"scorer"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	OpenAPIPath  string `mapstructure:"openapi_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
	NodeTTL int    `mapstructure:"node_ttl"` // seconds
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// StorageConfig selects the persistence backend: "postgres" or "memory".
// GraphFile seeds the road graph when the memory driver is used.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	GraphFile string `mapstructure:"graph_file"`
}

type RoutingConfig struct {
	MaxExpansions int `mapstructure:"max_expansions"`
}

type HubConfig struct {
	BufferSize     int `mapstructure:"buffer_size"`
	WriteTimeoutMS int `mapstructure:"write_timeout_ms"`
	PingIntervalS  int `mapstructure:"ping_interval_s"`
}

func (h HubConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutMS) * time.Millisecond
}

func (h HubConfig) PingInterval() time.Duration {
	return time.Duration(h.PingIntervalS) * time.Second
}

type ScorerConfig struct {
	URL       string `mapstructure:"url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

func (s ScorerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MINARAH_DATABASE_HOST → database.host
	v.SetEnvPrefix("MINARAH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.openapi_path", "api/openapi.yaml")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "minarah")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "minarah")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("valkey.node_ttl", 3600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "minarah-missions")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.graph_file", "")
	v.SetDefault("routing.max_expansions", 200000)
	v.SetDefault("hub.buffer_size", 64)
	v.SetDefault("hub.write_timeout_ms", 5000)
	v.SetDefault("hub.ping_interval_s", 30)
	v.SetDefault("scorer.url", "http://localhost:8500")
	v.SetDefault("scorer.timeout_ms", 3000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Storage.Driver {
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be postgres or memory, got %q", c.Storage.Driver))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Routing.MaxExpansions <= 0 {
		errs = append(errs, "routing.max_expansions must be positive")
	}
	if c.Hub.BufferSize <= 0 {
		errs = append(errs, "hub.buffer_size must be positive")
	}
	if c.Hub.WriteTimeoutMS <= 0 {
		errs = append(errs, "hub.write_timeout_ms must be positive")
	}
	if c.Hub.PingIntervalS <= 0 {
		errs = append(errs, "hub.ping_interval_s must be positive")
	}
	if c.Scorer.TimeoutMS <= 0 {
		errs = append(errs, "scorer.timeout_ms must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
