package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/azrishaharin/KonMari/internal/config"
	"github.com/azrishaharin/KonMari/internal/db"
	"github.com/azrishaharin/KonMari/internal/reminder"
	customerrepo "github.com/azrishaharin/KonMari/internal/repository/customer"
	settingsrepo "github.com/azrishaharin/KonMari/internal/repository/settings"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[reminder] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	pub, err := reminder.NewAMQPPublisher(cfg.AMQPURL, cfg.ReminderQueuePrefix)
	if err != nil {
		logger.Fatalf("connect amqp: %v", err)
	}
	defer pub.Close()

	worker := reminder.NewWorker(
		settingsrepo.NewPostgres(pool, logger),
		customerrepo.NewPostgres(pool, logger),
		pub,
		logger,
	)

	logger.Println("reminder worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("worker stopped: %v", err)
	}
	logger.Println("reminder worker stopped")
}
