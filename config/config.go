// Package config loads service and client settings from an optional YAML
// file overlaid with environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration file.
type Config struct {
	Server Server `yaml:"server"`
	Client Client `yaml:"client"`
}

// Server configures the workflow API service.
type Server struct {
	Listen      string        `yaml:"listen" validate:"required"`
	DatabaseURL string        `yaml:"database_url" validate:"required"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl" validate:"gte=0"`
}

// Client configures the gateway used by editing sessions.
type Client struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{Listen: ":8080", TokenTTL: 24 * time.Hour},
		Client: Client{BaseURL: "http://localhost:8080", Timeout: 30 * time.Second},
	}
}

// Load reads path (skipped when empty) over the defaults and then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	set(&cfg.Server.DatabaseURL, "DATABASE_URL")
	set(&cfg.Server.Listen, "WORKFLOW_LISTEN")
	set(&cfg.Server.JWTSecret, "WORKFLOW_JWT_SECRET")
	set(&cfg.Client.BaseURL, "WORKFLOW_API_BASE_URL")
	set(&cfg.Client.Token, "WORKFLOW_TOKEN")
}

// ValidateServer checks the settings the service needs.
func (c Config) ValidateServer() error {
	return check(validate.Struct(c.Server))
}

// ValidateClient checks the settings an editing session needs.
func (c Config) ValidateClient() error {
	return check(validate.Struct(c.Client))
}

func check(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("config: %s failed on %s", verrs[0].Namespace(), verrs[0].Tag())
	}
	return fmt.Errorf("config: %w", err)
}
