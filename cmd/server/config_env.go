package main

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/simplepub/simple-publish/pkg/simplepublish/config"
)

// envConfig is the process environment read at startup.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	AdminToken  string `env:"ADMIN_TOKEN"`
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL  string `env:"STORAGE_URL" env-default:"memory://"`
}

// loadServerConfig reads the environment and translates it into a validated
// ServerConfig.
func loadServerConfig() (*config.ServerConfig, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return config.Load(
		func(c *config.ServerConfig) error {
			c.Port = env.Port
			c.Environment = env.Environment
			c.AdminToken = env.AdminToken
			return nil
		},
		config.WithDatabaseURL(env.DatabaseURL),
		config.WithStorageURL(env.StorageURL),
	)
}
