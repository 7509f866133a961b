package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camuig/bot-dashboard/internal/config"
	"github.com/camuig/bot-dashboard/internal/logger"
	"github.com/camuig/bot-dashboard/internal/storage"
	"github.com/camuig/bot-dashboard/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Missing store credentials abort here, before anything is fetched.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting bot-dashboard", "store", cfg.Store.URLPreview())

	db, err := storage.Open(cfg.Store)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}
	repo := storage.NewRepository(db)

	webServer := web.NewServer(repo, cfg, log)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Fatal("web server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	log.Info("bot-dashboard stopped")
}
