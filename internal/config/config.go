package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server and the maintenance CLI read from the environment.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MongoURI string `envconfig:"MONGODB_URI" required:"true"`
	DBName   string `envconfig:"DB_NAME" default:"feedback"`

	Session struct {
		Secret       string        `envconfig:"JWT_SECRET"`
		TTL          time.Duration `envconfig:"SESSION_TTL" default:"720h"`
		CookieName   string        `envconfig:"SESSION_COOKIE" default:"feedback_session"`
		CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`
	} `envconfig:""`

	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Whether /stats aggregates soft-deleted records too. Listing never does.
	StatsIncludeDeleted bool `envconfig:"STATS_INCLUDE_DELETED" default:"false"`

	Notify struct {
		ResendAPIKey string   `envconfig:"RESEND_API_KEY"`
		FromEmail    string   `envconfig:"FROM_EMAIL"`
		Recipients   []string `envconfig:"NOTIFY_EMAILS"`
	} `envconfig:""`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// .env is optional; in production the variables are set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ValidateServer checks settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.Session.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if !c.IsDev() && len(c.Session.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes outside dev")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}
