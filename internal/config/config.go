package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite|mysql|postgres
	DBPath     string `envconfig:"DB_PATH" default:"./data/timesheet.db"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER" default:"timesheet"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"timesheet"`
	DBName     string `envconfig:"DB_NAME" default:"timesheet"`

	SessionStore  string `envconfig:"SESSION_STORE" default:"cookie"` // cookie|redis
	SessionSecret string `envconfig:"SESSION_SECRET" default:"default-secret-key-change-me"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`

	AllowRegistration bool   `envconfig:"ALLOW_REGISTRATION" default:"true"`
	Timezone          string `envconfig:"TIMEZONE" default:"Local"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel       string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
}

// Load reads the configuration from the environment. In dev mode a
// .env file in the working directory is loaded first.
func Load() (*Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves TIMEZONE, the zone calendar dates are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
