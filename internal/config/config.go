package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Metrics source selectors.
const (
	SourceStatic   = "static"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32         `mapstructure:"DB_MIN_CONNS"`
	MetricsSource        string        `mapstructure:"METRICS_SOURCE"`
	MetricsServiceURL    string        `mapstructure:"METRICS_SERVICE_URL"`
	MetricsTimeout       time.Duration `mapstructure:"METRICS_TIMEOUT"`
	MetricsFile          string        `mapstructure:"METRICS_FILE"`
	AIServiceURL         string        `mapstructure:"AI_SERVICE_URL"`
	AIAPIKey             string        `mapstructure:"AI_API_KEY"`
	AITimeout            time.Duration `mapstructure:"AI_TIMEOUT"`
	PromptInflightPolicy string        `mapstructure:"PROMPT_INFLIGHT_POLICY"`
	PlanName             string        `mapstructure:"PLAN_NAME"`
	AuthIssuer           string        `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL          string        `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience         string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey       string        `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS         float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit            string        `mapstructure:"BODY_LIMIT"`
	AuditMemoryCapacity  int           `mapstructure:"AUDIT_MEMORY_CAPACITY"`
	TLSEnabled           bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile          string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile           string        `mapstructure:"TLS_KEY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"METRICS_SOURCE", "METRICS_SERVICE_URL", "METRICS_TIMEOUT", "METRICS_FILE",
	"AI_SERVICE_URL", "AI_API_KEY", "AI_TIMEOUT",
	"PROMPT_INFLIGHT_POLICY", "PLAN_NAME",
	"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT", "BODY_LIMIT", "AUDIT_MEMORY_CAPACITY",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "3005")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("METRICS_SOURCE", "") // auto-detect, see ResolvedMetricsSource
	v.SetDefault("METRICS_TIMEOUT", "10s")
	v.SetDefault("AI_TIMEOUT", "60s")
	v.SetDefault("PROMPT_INFLIGHT_POLICY", "reject")
	v.SetDefault("PLAN_NAME", "Presbyterian Health Plan")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("REQUEST_TIMEOUT", "90s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("AUDIT_MEMORY_CAPACITY", 10000)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.IsDev() {
		log.Println("WARNING: ENV=development. DevAuthMiddleware trusts X-User-Id/X-User-Role and defaults to admin.")
		log.Println("WARNING: Set ENV=production with AUTH_ISSUER or AUTH_SIGNING_KEY before exposing this server.")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedMetricsSource returns METRICS_SOURCE when set. Otherwise the
// service URL selects http, a database selects postgres, and the embedded
// sample is used as a last resort.
func (c *Config) ResolvedMetricsSource() string {
	if c.MetricsSource != "" {
		return strings.ToLower(c.MetricsSource)
	}
	switch {
	case c.MetricsServiceURL != "":
		return SourceHTTP
	case c.DatabaseURL != "":
		return SourcePostgres
	default:
		return SourceStatic
	}
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch src := c.ResolvedMetricsSource(); src {
	case SourceStatic:
	case SourceHTTP:
		if c.MetricsServiceURL == "" {
			return fmt.Errorf("METRICS_SERVICE_URL is required when METRICS_SOURCE is %q", src)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when METRICS_SOURCE is %q", src)
		}
	default:
		return fmt.Errorf("METRICS_SOURCE must be \"static\", \"http\" or \"postgres\", got %q", src)
	}

	switch strings.ToLower(c.PromptInflightPolicy) {
	case "", "reject", "allow":
	default:
		return fmt.Errorf("PROMPT_INFLIGHT_POLICY must be \"reject\" or \"allow\", got %q", c.PromptInflightPolicy)
	}

	if !c.IsDev() && c.AuthIssuer == "" && c.AuthSigningKey == "" && c.AuthJWKSURL == "" {
		return fmt.Errorf(
			"AUTH_ISSUER, AUTH_JWKS_URL or AUTH_SIGNING_KEY must be set outside development (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.AuthSigningKey == "" && c.AuthJWKSURL == "" && c.AuthIssuer != "" && !c.IsDev() {
		return fmt.Errorf("AUTH_JWKS_URL is required to verify tokens from AUTH_ISSUER %q", c.AuthIssuer)
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
