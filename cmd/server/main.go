package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zelloapp/zello-backend/internal/auth"
	"github.com/zelloapp/zello-backend/internal/config"
	"github.com/zelloapp/zello-backend/internal/db"
	"github.com/zelloapp/zello-backend/internal/server"
)

var migrateFlag = flag.Bool("migrate", false, "apply SQL migrations and exit")

func main() {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	flag.Parse()
	if *backfillCardTokensFlag {
		runBackfillCardTokens()
		return
	}
	if *migrateFlag {
		if err := db.RunMigrations(); err != nil {
			logrus.WithError(err).Fatal("migrations failed")
		}
		return
	}

	cfg := config.Load()
	auth.SetSecret(cfg.SessionSecret)
	logrus.SetLevel(cfg.LogrusLevel())
	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(conn),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("zello backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
	logrus.Info("bye")
}
