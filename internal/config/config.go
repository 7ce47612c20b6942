package config

import (
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppName string `yaml:"app_name"`
	AppEnv  string `yaml:"app_env"`
	AppPort string `yaml:"app_port"`

	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	JWT      JWTConfig      `yaml:"jwt"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TokenTTL returns the configured access token lifetime, defaulting to
// 3600 minutes when unset.
func (c *JWTConfig) TokenTTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 3600 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overlaid with environment variables. A .env file in the working directory
// is honored when present; the environment always wins over the YAML file.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort: "8000",
		DB: DBConfig{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
			DB:   "0",
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.WithError(err).Fatalf("Failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logrus.WithError(err).Fatalf("Failed to parse config file %s", path)
		}
	}

	overlay(&cfg.AppName, "APP_NAME")
	overlay(&cfg.AppEnv, "APP_ENV")
	overlay(&cfg.AppPort, "APP_PORT")

	overlay(&cfg.DB.Host, "DB_HOST")
	overlay(&cfg.DB.Port, "DB_PORT")
	overlay(&cfg.DB.User, "DB_USER")
	overlay(&cfg.DB.Password, "DB_PASSWORD")
	overlay(&cfg.DB.Name, "DB_NAME")
	overlay(&cfg.DB.SSLMode, "DB_SSLMODE")

	overlay(&cfg.Redis.Host, "REDIS_HOST")
	overlay(&cfg.Redis.Port, "REDIS_PORT")
	overlay(&cfg.Redis.Password, "REDIS_PASSWORD")
	overlay(&cfg.Redis.DB, "REDIS_DB")

	overlay(&cfg.RabbitMQ.URL, "RABBITMQ_URL")

	overlay(&cfg.JWT.Secret, "JWT_SECRET")
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			logrus.WithError(err).Fatal("Invalid TOKEN_TTL_MINUTES value")
		}
		cfg.JWT.TTLMinutes = ttl
	}

	return cfg
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
