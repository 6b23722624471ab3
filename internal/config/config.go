package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	AuthJWTSecret   string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer      string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience    string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	RealtimeStore   string        `mapstructure:"REALTIME_STORE"`
	RealtimeConnTTL time.Duration `mapstructure:"REALTIME_CONN_TTL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REALTIME_STORE", "")
	v.SetDefault("REALTIME_CONN_TTL", "24h")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("AUTH_JWT_SECRET")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REALTIME_STORE")
	v.BindEnv("REALTIME_CONN_TTL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedRealtimeStore returns the effective connection store backend.
// If REALTIME_STORE is explicitly set, it is returned. Otherwise the backend
// is inferred:
//   - REDIS_URL set    → "redis"
//   - ENV=development  → "memory"
//   - Otherwise        → "postgres"
func (c *Config) ResolvedRealtimeStore() string {
	if c.RealtimeStore != "" {
		return c.RealtimeStore
	}
	if c.RedisURL != "" {
		return "redis"
	}
	if c.IsDev() {
		return "memory"
	}
	return "postgres"
}

// Validate checks that the configuration is safe to run. In non-development
// modes AUTH_JWT_SECRET must be set so that real JWT authentication is
// enforced at the push-channel handshake. The in-memory connection store is
// refused outside development: connection records must survive process
// restarts or broadcasts silently lose their audience.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthJWTSecret == "" {
		return fmt.Errorf(
			"AUTH_JWT_SECRET must be set when ENV is not \"development\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}

	store := c.ResolvedRealtimeStore()
	switch store {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("REALTIME_STORE must be \"postgres\", \"redis\", or \"memory\", got %q", store)
	}
	if store == "memory" && !c.IsDev() {
		return fmt.Errorf("REALTIME_STORE=memory is only allowed in development; connection records must be durable")
	}
	if store == "redis" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when REALTIME_STORE is \"redis\"")
	}

	if c.RealtimeConnTTL <= 0 {
		return fmt.Errorf("REALTIME_CONN_TTL must be positive, got %s", c.RealtimeConnTTL)
	}

	return nil
}
