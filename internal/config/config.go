// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Configuration holds everything the service reads from the environment.
type Configuration struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8083"`

	// STORE_TYPE=memory runs without Postgres/Mongo (local dev, demos).
	StoreType   string `env:"STORE_TYPE" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	MongoURI    string `env:"MONGODB_URI"`
	MongoDB     string `env:"MONGODB_DB" envDefault:"vidlink"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8083"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"524288000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// MaxTime bounds both card placement and viewer playback, in seconds.
	MaxTime              float64  `env:"MAX_TIME" envDefault:"240"`
	UnsupportedLinkHosts []string `env:"UNSUPPORTED_LINK_HOSTS" envSeparator:"," envDefault:"instagram.com,tiktok.com"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8083/api/v1/auth/google/callback"`

	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"false"`
	WatchSessionIdle time.Duration `env:"WATCH_SESSION_IDLE" envDefault:"10m"`
	WatchSessionMax  int           `env:"WATCH_SESSION_MAX" envDefault:"10000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogOutput string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogPath   string `env:"LOG_PATH" envDefault:"./logs"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Configuration) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env in dev only (production injects env vars through infra) and parses
// the environment into a Configuration.
func Load(files ...string) (*Configuration, error) {
	if os.Getenv("APP_ENV") != "production" {
		// a missing .env is fine; real env vars still apply
		_ = godotenv.Load(files...)
	}

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) validate() error {
	switch c.StoreType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_TYPE=postgres")
		}
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_TYPE %q", c.StoreType)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("MAX_TIME must be positive, got %v", c.MaxTime)
	}
	for i, h := range c.UnsupportedLinkHosts {
		c.UnsupportedLinkHosts[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return nil
}
