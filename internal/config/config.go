// internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Load an optional .env file (godotenv) before reading the environment.
//   - Parse variables into Config with defaults (caarlos0/env).
//   - Validate ranges and enums (validator).
//
// Every variable is optional; a zero-config process serves on :5175 with dev secrets.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DevSecret signs session cookies when SESSION_SECRET is unset.
const DevSecret = "dev_secret_change_me"

// Config holds every tunable of the server and the terminal player.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175" validate:"required,numeric"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Environment  string `env:"NODE_ENV" envDefault:"development"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173" validate:"required,url"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me" validate:"required,min=8"`
	CookieName    string        `env:"COOKIE_NAME" envDefault:"duoshao_session" validate:"required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h" validate:"gt=0"`

	CorrectDelay  time.Duration `env:"CORRECT_DELAY" envDefault:"1200ms" validate:"gte=0"`
	WrongDelay    time.Duration `env:"WRONG_DELAY" envDefault:"2000ms" validate:"gte=0"`
	SpeechLeadIn  time.Duration `env:"SPEECH_LEAD_IN" envDefault:"300ms" validate:"gte=0"`
	SpeechTimeout time.Duration `env:"SPEECH_TIMEOUT" envDefault:"15s" validate:"gt=0"`

	// RegionsFile overrides the embedded catalog when set.
	RegionsFile string `env:"REGIONS_FILE"`
}

var validate = validator.New()

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Production reports NODE_ENV=production.
func (c Config) Production() bool { return c.Environment == "production" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }
