//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/cache"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/config"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/db"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/queue"
)

// TestEnv holds all test dependencies
type TestEnv struct {
	DB          *sql.DB
	RedisClient *redis.Client
	RabbitConn  *amqp.Connection
	Config      *config.Config
}

// SetupTestEnv initializes the test environment against real backing
// services. RabbitMQ is optional: task events are disabled when
// TEST_RABBITMQ_URL is unset.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	cfg := loadTestConfig()

	database := db.Init(&cfg.DB)
	if database == nil {
		t.Fatal("Failed to connect to test database")
	}

	if err := db.Migrate(database); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := cache.SetupRedis(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	redisClient.FlushDB(ctx)

	var rabbitConn *amqp.Connection
	if cfg.RabbitMQ.URL != "" {
		rabbitConn = queue.SetupRabbitMQ(&cfg.RabbitMQ)
	}

	return &TestEnv{
		DB:          database,
		RedisClient: redisClient,
		RabbitConn:  rabbitConn,
		Config:      cfg,
	}
}

// Cleanup truncates the schema and closes connections.
func (env *TestEnv) Cleanup(t *testing.T) {
	t.Helper()

	for _, table := range []string{"task_audit", "tasks", "users"} {
		if _, err := env.DB.Exec("DELETE FROM " + table); err != nil {
			t.Logf("Failed to clean table %s: %v", table, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	env.RedisClient.FlushDB(ctx)

	if env.RabbitConn != nil {
		_ = env.RabbitConn.Close()
	}
	_ = env.RedisClient.Close()
	_ = env.DB.Close()
}

func loadTestConfig() *config.Config {
	return &config.Config{
		AppEnv: "test",
		DB: config.DBConfig{
			Host:     envOr("TEST_DB_HOST", "localhost"),
			Port:     envOr("TEST_DB_PORT", "5432"),
			User:     envOr("TEST_DB_USER", "postgres"),
			Password: envOr("TEST_DB_PASSWORD", "postgres"),
			Name:     envOr("TEST_DB_NAME", "tasks_test"),
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			Host: envOr("TEST_REDIS_HOST", "localhost"),
			Port: envOr("TEST_REDIS_PORT", "6379"),
			DB:   envOr("TEST_REDIS_DB", "1"),
		},
		RabbitMQ: config.RabbitMQConfig{
			URL: os.Getenv("TEST_RABBITMQ_URL"),
		},
		JWT: config.JWTConfig{
			Secret:     "integration-test-secret",
			TTLMinutes: 3600,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
