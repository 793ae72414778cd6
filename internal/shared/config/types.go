package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
	ModeTest        = "test"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs with production cookie and
// enumeration rules.
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Mode, ModeProduction) || strings.EqualFold(s.Mode, "release")
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN builds the connection string for the configured driver. For sqlite
// Database is the file path (or ":memory:").
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, url.QueryEscape(d.Password), d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	Issuer           string `mapstructure:"issuer"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	RefreshExpDays   int    `mapstructure:"refresh_exp_days"`
}

func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessExpMinutes) * time.Minute
}

func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshExpDays) * 24 * time.Hour
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
	MinLength  int `mapstructure:"min_length"`
	// MaxSimilarity is the ratio above which a password counts as too close
	// to the account's email or names.
	MaxSimilarity float64 `mapstructure:"max_similarity"`
}

type TokenConfig struct {
	VerificationExpiresHours int `mapstructure:"verification_expires_hours"`
	ResetExpiresMinutes      int `mapstructure:"reset_expires_minutes"`
}

func (t TokenConfig) VerificationTTL() time.Duration {
	return time.Duration(t.VerificationExpiresHours) * time.Hour
}

func (t TokenConfig) ResetTTL() time.Duration {
	return time.Duration(t.ResetExpiresMinutes) * time.Minute
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

// BlacklistConfig selects where revoked token ids live: redis or database.
type BlacklistConfig struct {
	Store string `mapstructure:"store"`
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type AuthConfig struct {
	Password  PasswordConfig  `mapstructure:"password"`
	Token     TokenConfig     `mapstructure:"token"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Blacklist BlacklistConfig `mapstructure:"blacklist"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// PreventEnumeration makes unknown-email responses identical to known-email
	// ones. Defaults to true in production.
	PreventEnumeration bool `mapstructure:"prevent_enumeration"`
}

type OAuthProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type OAuthConfig struct {
	Google             OAuthProviderConfig `mapstructure:"google"`
	GitHub             OAuthProviderConfig `mapstructure:"github"`
	SuccessRedirectURL string              `mapstructure:"success_redirect_url"`
	FailureRedirectURL string              `mapstructure:"failure_redirect_url"`
	TimeoutSeconds     int                 `mapstructure:"timeout_seconds"`
	StateTTLMinutes    int                 `mapstructure:"state_ttl_minutes"`
}

func (o OAuthConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

func (o OAuthConfig) StateTTL() time.Duration {
	return time.Duration(o.StateTTLMinutes) * time.Minute
}

type EmailConfig struct {
	// Backend is smtp or console.
	Backend        string `mapstructure:"backend"`
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUser       string `mapstructure:"smtp_user"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	FromAddress    string `mapstructure:"from_address"`
	FromName       string `mapstructure:"from_name"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (e EmailConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// FrontendConfig holds the links embedded in outgoing emails.
type FrontendConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	VerifyPath        string `mapstructure:"verify_path"`
	ResetPasswordPath string `mapstructure:"reset_password_path"`
}

func (f FrontendConfig) VerifyURL(token string) string {
	return f.link(f.VerifyPath, token)
}

func (f FrontendConfig) ResetPasswordURL(token string) string {
	return f.link(f.ResetPasswordPath, token)
}

func (f FrontendConfig) link(path, token string) string {
	return strings.TrimRight(f.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}
