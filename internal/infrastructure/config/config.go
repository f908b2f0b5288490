package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Pagination modes understood by the list controller
const (
	PaginationServer = "server"
	PaginationClient = "client"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	Gateway  GatewayConfig
	List     ListConfig
	Order    OrderConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// GatewayConfig holds settings for the REST backend client
type GatewayConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 = unlimited
	RateBurst int
}

// ListConfig holds order list controller settings
type ListConfig struct {
	Debounce       time.Duration
	PageSize       int
	PaginationMode string // server or client
}

// OrderConfig holds order builder settings
type OrderConfig struct {
	DefaultVatRate int64
}

// ServerConfig holds development backend settings
type ServerConfig struct {
	Port           string
	SeedSuppliers  int
	SeedWarehouses int
	SeedProducts   int
	SeedOrders     int
	MetricsEnabled bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds development backend storage settings
type DatabaseConfig struct {
	Driver        string // sqlite or postgres
	DSN           string // file path for sqlite, connection string for postgres
	MaxOpenConns  int
	MaxIdleConns  int
	LogLevel      string // silent, error, warn, info
	SlowThreshold time.Duration
}

// TelemetryConfig holds OpenTelemetry tracing configuration
type TelemetryConfig struct {
	Enabled           bool    // export spans over OTLP; off needs no collector
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. localhost:4317
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // plain-text gRPC, development only
	DBTraceEnabled    bool // otelgorm query spans
	DBLogFullSQL      bool // keep bound variables in query spans
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PO_ prefix (e.g., PO_GATEWAY_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/poctl")
		v.AddConfigPath("/etc/poctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Gateway: GatewayConfig{
			BaseURL:   v.GetString("gateway.base_url"),
			Timeout:   v.GetDuration("gateway.timeout"),
			UserAgent: v.GetString("gateway.user_agent"),
			RateLimit: v.GetFloat64("gateway.rate_limit"),
			RateBurst: v.GetInt("gateway.rate_burst"),
		},
		List: ListConfig{
			Debounce:       v.GetDuration("list.debounce"),
			PageSize:       v.GetInt("list.page_size"),
			PaginationMode: strings.ToLower(v.GetString("list.pagination_mode")),
		},
		Order: OrderConfig{
			DefaultVatRate: v.GetInt64("order.default_vat_rate"),
		},
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			SeedSuppliers:  v.GetInt("server.seed_suppliers"),
			SeedWarehouses: v.GetInt("server.seed_warehouses"),
			SeedProducts:   v.GetInt("server.seed_products"),
			SeedOrders:     v.GetInt("server.seed_orders"),
			MetricsEnabled: v.GetBool("server.metrics_enabled"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(v.GetString("database.driver")),
			DSN:           v.GetString("database.dsn"),
			MaxOpenConns:  v.GetInt("database.max_open_conns"),
			MaxIdleConns:  v.GetInt("database.max_idle_conns"),
			LogLevel:      v.GetString("database.log_level"),
			SlowThreshold: v.GetDuration("database.slow_threshold"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration with only built-in defaults applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "poctl"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}

	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = "http://localhost:3000"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 10 * time.Second
	}
	if cfg.Gateway.UserAgent == "" {
		cfg.Gateway.UserAgent = "poctl/1.0"
	}
	if cfg.Gateway.RateBurst == 0 {
		cfg.Gateway.RateBurst = 10
	}

	if cfg.List.Debounce == 0 {
		cfg.List.Debounce = 300 * time.Millisecond
	}
	if cfg.List.PageSize == 0 {
		cfg.List.PageSize = 10
	}
	if cfg.List.PaginationMode == "" {
		cfg.List.PaginationMode = PaginationServer
	}

	if cfg.Order.DefaultVatRate == 0 {
		cfg.Order.DefaultVatRate = 15
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Server.SeedSuppliers == 0 {
		cfg.Server.SeedSuppliers = 8
	}
	if cfg.Server.SeedWarehouses == 0 {
		cfg.Server.SeedWarehouses = 3
	}
	if cfg.Server.SeedProducts == 0 {
		cfg.Server.SeedProducts = 20
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "purchasing.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "purchasing-backend"
	}
}

// validate checks that the configuration is usable
func (c *Config) validate() error {
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway.base_url must be an absolute URL, got %q", c.Gateway.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Gateway.Timeout < 0 {
		return errors.New("gateway.timeout must not be negative")
	}
	if c.Gateway.RateLimit < 0 {
		return errors.New("gateway.rate_limit must not be negative")
	}
	if c.List.Debounce < 0 {
		return errors.New("list.debounce must not be negative")
	}
	if c.List.PageSize < 1 {
		return fmt.Errorf("list.page_size must be at least 1, got %d", c.List.PageSize)
	}
	if c.List.PaginationMode != PaginationServer && c.List.PaginationMode != PaginationClient {
		return fmt.Errorf("list.pagination_mode must be %q or %q, got %q",
			PaginationServer, PaginationClient, c.List.PaginationMode)
	}
	switch c.Order.DefaultVatRate {
	case 5, 10, 15, 20:
	default:
		return fmt.Errorf("order.default_vat_rate must be one of 5, 10, 15, 20, got %d", c.Order.DefaultVatRate)
	}
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)
	}
	if c.Server.SeedOrders < 0 {
		return errors.New("server.seed_orders must not be negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// ClientPaging reports whether the list controller pages on the client
func (c *ListConfig) ClientPaging() bool {
	return c.PaginationMode == PaginationClient
}
