package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/azrishaharin/KonMari/internal/changefeed"
	"github.com/azrishaharin/KonMari/internal/config"
	"github.com/azrishaharin/KonMari/internal/db"
	"github.com/azrishaharin/KonMari/internal/httpserver"
	"github.com/azrishaharin/KonMari/internal/mailer"
	customerrepo "github.com/azrishaharin/KonMari/internal/repository/customer"
	devicerepo "github.com/azrishaharin/KonMari/internal/repository/device"
	pickuprepo "github.com/azrishaharin/KonMari/internal/repository/pickup"
	settingsrepo "github.com/azrishaharin/KonMari/internal/repository/settings"
	authsvc "github.com/azrishaharin/KonMari/internal/service/auth"
	"github.com/azrishaharin/KonMari/internal/state"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(runCtx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	pickupRepo := pickuprepo.NewPostgres(dbpool, logger)
	settingsRepo := settingsrepo.NewPostgres(dbpool, logger)
	deviceRepo := devicerepo.NewPostgres(dbpool, logger)

	broker := changefeed.NewBroker(logger)
	listener := changefeed.NewListener(cfg.DBConnString, broker, logger)
	go func() {
		if err := listener.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("change listener stopped: %v", err)
		}
	}()

	store := state.New(customerRepo, pickupRepo, settingsRepo, broker, logger)
	if err := store.Load(runCtx); err != nil {
		logger.Fatalf("load state: %v", err)
	}
	go store.Run(runCtx)

	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSender)
	auth := authsvc.New(deviceRepo, mail, cfg.AuthorizedEmail, cfg.AuthorizedPhone, cfg.JWTSecret, cfg.CodeTTL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Store:   store,
		AuthSvc: auth,
		Broker:  broker,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-runCtx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
