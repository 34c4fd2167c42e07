// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds all environment-driven settings for the bot.
type Config struct {
	// Together AI settings
	TogetherAPIKey  string `env:"TOGETHER_API_KEY,required,notEmpty"`
	TogetherBaseURL string `env:"TOGETHER_BASE_URL"`
	Model           string `env:"MODEL"`

	// Storage
	DatabaseURL   string `env:"DATABASE_URL"`
	WhatsAppDBDSN string `env:"WHATSAPP_DB_DSN"`

	// Persona
	PersonaFile string `env:"PERSONA_FILE"`

	// Delivery
	EmojiEnabled bool `env:"EMOJI_ENABLED" envDefault:"true"`

	// Check-in schedule
	CheckInCron string `env:"CHECKIN_CRON" envDefault:"0 12 * * *"`

	// Liveness endpoint
	Port int `env:"PORT" envDefault:"3000"`

	// Logging
	Debug bool `env:"DEBUG"`
}

// APIAddr returns the listen address for the liveness endpoint.
func (c *Config) APIAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
