package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/cache"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/config"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/db"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/handler"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/queue"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	if cfg.JWT.Secret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	database := db.Init(&cfg.DB)
	defer func() {
		if err := database.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	if err := db.Migrate(database); err != nil {
		logrus.WithError(err).Fatal("Failed to run schema migrations")
	}

	rdb := cache.SetupRedis(&cfg.Redis)
	defer func() {
		if err := rdb.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close redis connection")
		}
	}()

	// Task lifecycle events are optional: without a broker URL the service
	// runs with events disabled.
	var conn *amqp.Connection
	if cfg.RabbitMQ.URL != "" {
		conn = queue.SetupRabbitMQ(&cfg.RabbitMQ)
		defer func() {
			if err := conn.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ connection")
			}
		}()
	} else {
		logrus.Warn("RABBITMQ_URL not set, task events disabled")
	}

	observability.InitMetrics()
	logrus.Info("Metrics initialized")

	r := handler.SetupHandler(database, conn, rdb, cfg)

	r.GET("/metrics", func(c *gin.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logrus.Infof("Starting server on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Forced server shutdown")
	}
}
