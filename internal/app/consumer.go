package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-tams/internal/events"
	"go-tams/internal/messaging/kafka/consumer"
	"go-tams/internal/notification"
	"go-tams/internal/position"
	"go-tams/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	positionRepo := position.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, positionRepo)

	applicationReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{kafkaBroker},
		Topic:       events.ApplicationLifecycleTopic,
		GroupID:     "go-tams-notifications",
		StartOffset: kafkago.FirstOffset,
	})
	defer applicationReader.Close()

	timesheetReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{kafkaBroker},
		Topic:       events.TimesheetLifecycleTopic,
		GroupID:     "go-tams-notifications",
		StartOffset: kafkago.FirstOffset,
	})
	defer timesheetReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeApplicationLifecycle(ctx, applicationReader, notificationService, logger)
	go consumer.ConsumeTimesheetLifecycle(ctx, timesheetReader, notificationService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
