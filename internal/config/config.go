package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string `env:"SERVER_PORT, default=8080"`
	MySQLDSN    string `env:"MYSQL_DSN, default=user:password@tcp(localhost:3306)/userhub?charset=utf8mb4&parseTime=True&loc=Local"`
	SwaggerHost string `env:"SWAGGER_HOST"`

	// Distinct signing secrets for the two token kinds.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET, default=change-me"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET, default=change-me-too"`

	Redis RedisConfig
	Log   LogConfig
	Admin AdminConfig
}

// RedisConfig configures the profile cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB, default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

// AdminConfig provides credentials for the seed command.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL, default=admin@userhub.local"`
	Password string `env:"ADMIN_PASSWORD, default=admin-change-me"`
	Phone    string `env:"ADMIN_PHONE, default=+10000000000"`
}

// Load builds Config from environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
