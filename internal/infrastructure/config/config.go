package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
)

const (
	envPrefix         = "USERAUTH"
	defaultJWTSecret  = "change-me-in-production"
	minJWTSecretBytes = 32
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Auth     sharedConfig.AuthConfig     `mapstructure:"auth"`
	OAuth    sharedConfig.OAuthConfig    `mapstructure:"oauth"`
	Email    sharedConfig.EmailConfig    `mapstructure:"email"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Frontend sharedConfig.FrontendConfig `mapstructure:"frontend"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (searched from the working directory
// upwards), applies USERAUTH_* environment overrides and validates the result.
// A missing config file is not an error. env overrides server.mode when set.
func Load(env string, searchPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"./configs", "../configs", "../../configs"}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !v.IsSet("auth.prevent_enumeration") {
		cfg.Auth.PreventEnumeration = cfg.Server.IsProduction()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the last loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects settings that would make the service insecure or unusable.
func (c *Config) Validate() error {
	if c.Auth.JWT.AccessExpMinutes <= 0 || c.Auth.JWT.RefreshExpDays <= 0 {
		return fmt.Errorf("auth.jwt token lifetimes must be positive")
	}
	if c.Server.IsProduction() {
		if c.Auth.JWT.Secret == defaultJWTSecret || len(c.Auth.JWT.Secret) < minJWTSecretBytes {
			return fmt.Errorf("auth.jwt.secret must be set to at least %d bytes in production", minJWTSecretBytes)
		}
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Auth.Blacklist.Store {
	case "redis", "database":
	default:
		return fmt.Errorf("unsupported auth.blacklist.store %q", c.Auth.Blacklist.Store)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", sharedConfig.ModeDevelopment)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "userauth")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.password.bcrypt_cost", 12)
	v.SetDefault("auth.password.min_length", 8)
	v.SetDefault("auth.password.max_similarity", 0.7)
	v.SetDefault("auth.token.verification_expires_hours", 24)
	v.SetDefault("auth.token.reset_expires_minutes", 60)
	v.SetDefault("auth.jwt.secret", defaultJWTSecret)
	v.SetDefault("auth.jwt.issuer", "user-auth")
	v.SetDefault("auth.jwt.access_exp_minutes", 30)
	v.SetDefault("auth.jwt.refresh_exp_days", 7)
	v.SetDefault("auth.cookie.domain", "")
	v.SetDefault("auth.cookie.path", "/")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")
	v.SetDefault("auth.blacklist.store", "redis")
	v.SetDefault("auth.rate_limit.enabled", true)
	v.SetDefault("auth.rate_limit.requests", 20)
	v.SetDefault("auth.rate_limit.window_seconds", 60)

	v.SetDefault("oauth.google.client_id", "")
	v.SetDefault("oauth.google.client_secret", "")
	v.SetDefault("oauth.google.redirect_url", "http://localhost:8000/api/auth/social/google/callback")
	v.SetDefault("oauth.github.client_id", "")
	v.SetDefault("oauth.github.client_secret", "")
	v.SetDefault("oauth.github.redirect_url", "http://localhost:8000/api/auth/social/github/callback")
	v.SetDefault("oauth.success_redirect_url", "http://localhost:3000/auth/callback")
	v.SetDefault("oauth.failure_redirect_url", "http://localhost:3000/auth/login")
	v.SetDefault("oauth.timeout_seconds", 10)
	v.SetDefault("oauth.state_ttl_minutes", 10)

	v.SetDefault("email.backend", "console")
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@localhost")
	v.SetDefault("email.from_name", "User Auth")
	v.SetDefault("email.timeout_seconds", 10)

	v.SetDefault("frontend.base_url", "http://localhost:3000")
	v.SetDefault("frontend.verify_path", "/verify")
	v.SetDefault("frontend.reset_password_path", "/auth/reset-password")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "userauth")
}
