package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/audit"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/config"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/db"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/queue"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	if cfg.RabbitMQ.URL == "" {
		logrus.Fatal("RABBITMQ_URL must be set for the auditor")
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

	conn := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	ch, err := queue.CreateChannel(conn)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
	}
	if _, err := queue.DeclareQueue(ch, queue.TaskEventsQueue); err != nil {
		logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
	}
	if err := ch.Close(); err != nil {
		logrus.WithError(err).Fatal("Failed to close RabbitMQ channel")
	}

	observability.InitMetrics()
	logrus.Info("Metrics initialized")

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logrus.Info("Auditor metrics server started on :8088")
		if err := http.ListenAndServe(":8088", nil); err != nil {
			logrus.WithError(err).Fatal("Failed to start metrics server")
		}
	}()

	repo := audit.NewAuditRepository()

	for i := 1; i <= 3; i++ {
		go audit.StartConsumer(conn, database, repo, i)
	}

	select {}
}
