package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// VenueRateLimit holds per-venue rate limiting parameters: a local token
// bucket in front of a distributed per-second window shared across workers.
type VenueRateLimit struct {
	LocalRPS       float64 `mapstructure:"local_rps"`
	LocalBurst     int     `mapstructure:"local_burst"`
	DistributedRPS int     `mapstructure:"distributed_rps"`
}

// OKXConfig holds OKX API configuration
type OKXConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// TBankConfig holds T-Bank invest API configuration
type TBankConfig struct {
	BaseURL string `mapstructure:"base_url"`
	AuthURL string `mapstructure:"auth_url"`
	// TokenExpiryMargin is how long before the recorded expiry a token
	// is treated as stale and refreshed.
	TokenExpiryMargin time.Duration `mapstructure:"token_expiry_margin"`
}

// TONConfig holds TON explorer API configuration
type TONConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// VenuesConfig holds venue API endpoints and shared venue parameters.
// Credentials are never configured here; they live on integration rows.
type VenuesConfig struct {
	OKX        OKXConfig                 `mapstructure:"okx"`
	TBank      TBankConfig               `mapstructure:"tbank"`
	TON        TONConfig                 `mapstructure:"ton"`
	RateLimits map[string]VenueRateLimit `mapstructure:"rate_limits"`
}

// SyncConfig holds per-connection sync tuning
type SyncConfig struct {
	ActivityLimit            int           `mapstructure:"activity_limit"`
	ActivityTimeout          time.Duration `mapstructure:"activity_timeout"`
	WorkflowTimeout          time.Duration `mapstructure:"workflow_timeout"`
	FetchMaxAttempts         int32         `mapstructure:"fetch_max_attempts"`
	FetchBackoffInitial      time.Duration `mapstructure:"fetch_backoff_initial"`
	FetchBackoffMax          time.Duration `mapstructure:"fetch_backoff_max"`
	FetchBackoffCoefficient  float64       `mapstructure:"fetch_backoff_coefficient"`
	ConnectionChildrenWindow int           `mapstructure:"connection_children_window"`
}

// SchedulerConfig holds daily scheduler tuning
type SchedulerConfig struct {
	CronSpec     string        `mapstructure:"cron_spec"`
	JitterMax    time.Duration `mapstructure:"jitter_max"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	FanoutPool   int           `mapstructure:"fanout_pool"`
	FanoutQueue  int           `mapstructure:"fanout_queue"`
	StartTimeout time.Duration `mapstructure:"start_timeout"`
}

// SchedulerAppConfig holds configuration for the scheduler binary
type SchedulerAppConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Temporal   TemporalConfig  `mapstructure:"temporal"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Sync       SyncConfig      `mapstructure:"sync"`
}

// WorkerSyncConfig holds configuration for the sync worker binary
type WorkerSyncConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Venues     VenuesConfig   `mapstructure:"venues"`
	Sync       SyncConfig     `mapstructure:"sync"`
}

// LoadSchedulerConfig loads configuration for the scheduler binary
func LoadSchedulerConfig(configFile string, envPath string) (*SchedulerAppConfig, error) {
	v := configureViper("scheduler", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("scheduler.cron_spec", "0 2 * * *")
	v.SetDefault("scheduler.jitter_max", "10m")
	v.SetDefault("scheduler.lock_ttl", "6h")
	v.SetDefault("scheduler.fanout_pool", 10)
	v.SetDefault("scheduler.fanout_queue", 1024)
	v.SetDefault("scheduler.start_timeout", "30s")
	v.SetDefault("sync.workflow_timeout", "30m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SchedulerAppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

// LoadWorkerSyncConfig loads configuration for the sync worker binary
func LoadWorkerSyncConfig(configFile string, envPath string) (*WorkerSyncConfig, error) {
	v := configureViper("worker-sync", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 20)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 5)
	v.SetDefault("venues.okx.base_url", "https://www.okx.com")
	v.SetDefault("venues.tbank.base_url", "https://invest-public-api.tbank.ru")
	v.SetDefault("venues.tbank.auth_url", "https://id.tbank.ru/auth/token")
	v.SetDefault("venues.tbank.token_expiry_margin", "300s")
	v.SetDefault("venues.ton.base_url", "https://toncenter.com/api/v2")
	v.SetDefault("sync.activity_limit", 1000)
	v.SetDefault("sync.activity_timeout", "5m")
	v.SetDefault("sync.workflow_timeout", "30m")
	v.SetDefault("sync.fetch_max_attempts", 5)
	v.SetDefault("sync.fetch_backoff_initial", "1s")
	v.SetDefault("sync.fetch_backoff_max", "1m")
	v.SetDefault("sync.fetch_backoff_coefficient", 2.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg WorkerSyncConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	applyRateLimitDefaults(&cfg.Venues)

	return &cfg, nil
}

// applyRateLimitDefaults fills in conservative per-venue rate limits for any
// venue not explicitly configured. Values mirror the public API limits each
// venue documents, leaving generous headroom.
func applyRateLimitDefaults(venues *VenuesConfig) {
	defaults := map[string]VenueRateLimit{
		"binance": {LocalRPS: 10, LocalBurst: 20, DistributedRPS: 20},
		"bybit":   {LocalRPS: 5, LocalBurst: 10, DistributedRPS: 10},
		"okx":     {LocalRPS: 5, LocalBurst: 10, DistributedRPS: 10},
		"tbank":   {LocalRPS: 2, LocalBurst: 4, DistributedRPS: 4},
		"ton":     {LocalRPS: 1, LocalBurst: 2, DistributedRPS: 2},
	}
	if venues.RateLimits == nil {
		venues.RateLimits = make(map[string]VenueRateLimit, len(defaults))
	}
	for venue, rl := range defaults {
		if _, ok := venues.RateLimits[venue]; !ok {
			venues.RateLimits[venue] = rl
		}
	}
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("SMARTFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Venues
		"venues.okx.base_url",
		"venues.tbank.base_url",
		"venues.tbank.auth_url",
		"venues.tbank.token_expiry_margin",
		"venues.ton.base_url",
		"venues.ton.api_key",
		// Sync
		"sync.activity_limit",
		"sync.activity_timeout",
		"sync.workflow_timeout",
		"sync.fetch_max_attempts",
		"sync.fetch_backoff_initial",
		"sync.fetch_backoff_max",
		"sync.fetch_backoff_coefficient",
		// Scheduler
		"scheduler.cron_spec",
		"scheduler.jitter_max",
		"scheduler.lock_ttl",
		"scheduler.fanout_pool",
		"scheduler.fanout_queue",
		"scheduler.start_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
