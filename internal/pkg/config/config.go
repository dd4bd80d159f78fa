package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Positioning PositioningConfig `mapstructure:"positioning"`
	Display     DisplayConfig     `mapstructure:"display"`
	Map         MapConfig         `mapstructure:"map"`
	Log         LogConfig         `mapstructure:"log"`
	Positiond   PositiondConfig   `mapstructure:"positiond"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// Persistence backends.
const (
	BackendMemory   = "memory"
	BackendValkey   = "valkey"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

var backends = []string{BackendMemory, BackendValkey, BackendPostgres, BackendBolt}

type PersistenceConfig struct {
	Backend  string `mapstructure:"backend"`
	BoltPath string `mapstructure:"bolt_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
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
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type PositioningConfig struct {
	Device       string `mapstructure:"device"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
	HighAccuracy bool   `mapstructure:"high_accuracy"`
	Altitude     bool   `mapstructure:"altitude"`
}

// Timeout is the per-acquisition deadline.
func (p PositioningConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

type DisplayConfig struct {
	AltitudeUnit    string `mapstructure:"altitude_unit"`
	DefaultLanguage string `mapstructure:"default_language"`
}

type MapConfig struct {
	DefaultLat   float64 `mapstructure:"default_lat"`
	DefaultLon   float64 `mapstructure:"default_lon"`
	DefaultLayer string  `mapstructure:"default_layer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PositiondConfig is a static fix served by cmd/positiond when no receiver
// is attached.
type PositiondConfig struct {
	Lat      float64 `mapstructure:"lat"`
	Lon      float64 `mapstructure:"lon"`
	Altitude float64 `mapstructure:"altitude"`
	// HasAltitude is false for receivers that cannot report altitude.
	HasAltitude bool `mapstructure:"has_altitude"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("persistence.backend", BackendMemory)
	v.SetDefault("persistence.bolt_path", "refpoint.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "refpoint")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "refpoint")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("positioning.device", "default")
	v.SetDefault("positioning.timeout_ms", 8000)
	v.SetDefault("positioning.high_accuracy", true)
	v.SetDefault("positioning.altitude", true)
	v.SetDefault("display.altitude_unit", "m")
	v.SetDefault("display.default_language", "en")
	v.SetDefault("map.default_lat", 39.9042)
	v.SetDefault("map.default_lon", 116.4074)
	v.SetDefault("map.default_layer", "standard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("positiond.lat", 39.9042)
	v.SetDefault("positiond.lon", 116.4074)
	v.SetDefault("positiond.altitude", 44)
	v.SetDefault("positiond.has_altitude", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: REFPOINT_PERSISTENCE_BACKEND → persistence.backend
	v.SetEnvPrefix("REFPOINT")
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

	if !lo.Contains(backends, c.Persistence.Backend) {
		errs = append(errs, fmt.Sprintf("persistence.backend must be one of %s, got %q",
			strings.Join(backends, ", "), c.Persistence.Backend))
	}
	switch c.Persistence.Backend {
	case BackendPostgres:
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
	case BackendValkey:
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required")
		}
	case BackendBolt:
		if c.Persistence.BoltPath == "" {
			errs = append(errs, "persistence.bolt_path is required")
		}
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry.enabled")
	}

	if c.Positioning.TimeoutMS <= 0 {
		errs = append(errs, "positioning.timeout_ms must be positive")
	}
	if c.Positioning.Device == "" || strings.ContainsAny(c.Positioning.Device, ".*> ") {
		errs = append(errs, fmt.Sprintf("positioning.device must be a single subject token, got %q", c.Positioning.Device))
	}

	if !lo.Contains([]string{"m", "ft"}, c.Display.AltitudeUnit) {
		errs = append(errs, fmt.Sprintf("display.altitude_unit must be m or ft, got %q", c.Display.AltitudeUnit))
	}
	if !lo.Contains([]string{"standard", "satellite"}, c.Map.DefaultLayer) {
		errs = append(errs, fmt.Sprintf("map.default_layer must be standard or satellite, got %q", c.Map.DefaultLayer))
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 {
		errs = append(errs, fmt.Sprintf("map.default_lat must be within [-90, 90], got %v", c.Map.DefaultLat))
	}

	if !lo.Contains([]string{"json", "text", "console"}, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Sprintf("log.format must be json, text or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
