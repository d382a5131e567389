package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName string `env:"PROFILE_APP_NAME" envDefault:"profile-service"`
	AppEnv  string `env:"PROFILE_APP_ENV" envDefault:"local"`

	DBHost     string `env:"PROFILE_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"PROFILE_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"PROFILE_DB_USER" envDefault:"app"`
	DBPassword string `env:"PROFILE_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"PROFILE_DB_NAME" envDefault:"profiledb"`
	DBSSLMode  string `env:"PROFILE_DB_SSLMODE" envDefault:"disable"`

	AuthBaseURL string        `env:"PROFILE_AUTH_BASE_URL" envDefault:"http://localhost:9999"`
	AuthTimeout time.Duration `env:"PROFILE_AUTH_TIMEOUT" envDefault:"5s"`
	JWTSecret   string        `env:"PROFILE_JWT_SECRET"`

	NATSURL            string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSessionSubject string `env:"NATS_SUBJECT_AUTH_SESSION" envDefault:"auth.session-events"`

	RedisAddr     string        `env:"PROFILE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"PROFILE_REDIS_PASSWORD"`
	PendingTTL    time.Duration `env:"PROFILE_PENDING_TTL" envDefault:"24h"`

	DefaultRole string `env:"PROFILE_DEFAULT_ROLE" envDefault:"user"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
