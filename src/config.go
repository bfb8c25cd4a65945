package storybot

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// KeyMode decides who supplies the API key.
type KeyMode string

const (
	// KeyCaller means every user enters their own key.
	KeyCaller KeyMode = "caller"
	// KeyOperator means the server uses the key from its configuration.
	KeyOperator KeyMode = "operator"
)

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// Config holds the settings shared by the web server and the CLI.
type Config struct {
	Provider    string        `envconfig:"PROVIDER" default:"gemini"`
	KeyMode     KeyMode       `envconfig:"KEY_MODE" default:"caller"`
	PromptMode  PromptMode    `envconfig:"PROMPT_MODE" default:"plain"`
	BaseURL     string        `envconfig:"BASE_URL"`
	Model       string        `envconfig:"MODEL"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`

	Addr       string        `envconfig:"ADDR" default:":8081"`
	TLSCert    string        `envconfig:"TLS_CERT"`
	TLSKey     string        `envconfig:"TLS_KEY"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	// OutputDir is where the CLI saves stories when -out is not given.
	// Empty prints them instead.
	OutputDir string `envconfig:"OUTPUT_DIR"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`

	// Secret, never logged.
	APIKey string `envconfig:"API_KEY"`
}

// LoadConfig reads an optional .env file and then the STORYBOT_ environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("STORYBOT", &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown modes and an operator mode without a key.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderClaude:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.KeyMode {
	case KeyCaller:
	case KeyOperator:
		if c.APIKey == "" {
			return errors.New("operator key mode requires STORYBOT_API_KEY")
		}
	default:
		return fmt.Errorf("unknown key mode %q", c.KeyMode)
	}
	switch c.PromptMode {
	case PromptPlain, PromptConfigured:
	default:
		return fmt.Errorf("unknown prompt mode %q", c.PromptMode)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("STORYBOT_TLS_CERT and STORYBOT_TLS_KEY must be set together")
	}
	return nil
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
