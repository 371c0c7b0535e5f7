package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Booking  Booking  `yaml:"booking"`
	Worker   Worker   `yaml:"worker"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"railbook-api"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel maps the configured level name onto slog. Unknown names fall
// back to info rather than failing startup.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"railbook_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"booking-events"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"railbook-notifier-1"`
}

type Booking struct {
	// Price at or below this amount books a Cabin seat; above it, First Class.
	FirstClassThreshold string `yaml:"firstclass_threshold" env:"BOOKING_FIRSTCLASS_THRESHOLD" env-default:"50"`
	// How many times a lost seat-claim race is retried before the booking
	// fails with no availability.
	ClaimRetries int `yaml:"claim_retries" env:"BOOKING_CLAIM_RETRIES" env-default:"3"`
}

type Worker struct {
	PollIntervalSeconds    int `yaml:"poll_interval_seconds" env:"WORKER_POLL_INTERVAL_SECONDS" env-default:"2"`
	BatchSize              int `yaml:"batch_size" env:"WORKER_BATCH_SIZE" env-default:"10"`
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds" env:"WORKER_REFRESH_INTERVAL_SECONDS" env-default:"30"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
