package main

import (
	"errors"
	"fmt"
	"strings"

	"poker-platform/internal/archive"
	"poker-platform/internal/auth"
	"poker-platform/internal/db"
	"poker-platform/internal/middleware"
	"poker-platform/internal/redis"
	"poker-platform/internal/server/game"
	"poker-platform/internal/tick"
	"poker-platform/internal/tournament"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values for the application
type Config struct {
	Environment string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`

	HTTP struct {
		Addr        string   `mapstructure:"addr"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"http"`
	// TCP is the operator command port. Empty disables it.
	TCP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"tcp"`

	DB         db.Config                    `mapstructure:"db"`
	Redis      redis.Config                 `mapstructure:"redis"`
	Auth       auth.Config                  `mapstructure:"auth"`
	Archive    archive.Config               `mapstructure:"archive"`
	Game       game.Config                  `mapstructure:"game"`
	Tick       tick.Config                  `mapstructure:"tick"`
	Tournament tournament.Config            `mapstructure:"tournament"`
	RateLimit  middleware.RateLimiterConfig `mapstructure:"rate_limit"`
	ActionRate middleware.RateLimiterConfig `mapstructure:"action_rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("tcp.addr", "127.0.0.1:9090")

	v.SetDefault("db.driver", db.DriverMySQL)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "poker_platform")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.log_level", "silent")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key_id", "")
	v.SetDefault("archive.secret_access_key", "")
	v.SetDefault("archive.prefix", "tournaments")

	gameDefaults := game.DefaultConfig()
	v.SetDefault("game.action_timeout", gameDefaults.ActionTimeout)
	v.SetDefault("game.request_retention", gameDefaults.RequestRetention)

	tickDefaults := tick.DefaultConfig()
	v.SetDefault("tick.lock_ttl", tickDefaults.LockTTL)
	v.SetDefault("tick.max_actions_per_table", tickDefaults.MaxActionsPerTable)
	v.SetDefault("tick.parallelism", tickDefaults.Parallelism)
	v.SetDefault("tick.interval", tickDefaults.Interval)

	lifecycle := tournament.DefaultConfig()
	v.SetDefault("tournament.supply_target", lifecycle.SupplyTarget)
	v.SetDefault("tournament.retention", lifecycle.Retention)
	v.SetDefault("tournament.fill_per_tick", lifecycle.FillPerTick)
	v.SetDefault("tournament.fill_lead", lifecycle.FillLead)
	v.SetDefault("tournament.cash_session_hands", lifecycle.CashSessionHands)
	v.SetDefault("tournament.archive_history_limit", lifecycle.ArchiveHistoryLimit)
	kinds := make([]string, len(lifecycle.Kinds))
	for i, k := range lifecycle.Kinds {
		kinds[i] = string(k)
	}
	v.SetDefault("tournament.kinds", kinds)

	for key, rl := range map[string]middleware.RateLimiterConfig{
		"rate_limit":        middleware.DefaultRateLimiterConfig,
		"action_rate_limit": middleware.ActionRateLimiterConfig,
	} {
		v.SetDefault(key+".requests_per_second", rl.RequestsPerSecond)
		v.SetDefault(key+".burst_size", rl.BurstSize)
		v.SetDefault(key+".cleanup_interval", rl.CleanupInterval)
	}
}

// LoadConfig reads .env, then an optional config.yaml, then the
// environment. DB_HOST overrides db.host and so on.
func LoadConfig() (Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Tick.Interval <= 0 {
		return errors.New("tick.interval must be positive")
	}
	if c.Tick.MaxActionsPerTable <= 0 {
		return errors.New("tick.max_actions_per_table must be positive")
	}
	if c.Tournament.SupplyTarget < 0 {
		return errors.New("tournament.supply_target cannot be negative")
	}
	return nil
}
