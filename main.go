package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"score-bot/bot"
	"score-bot/config"
	"score-bot/handlers"
	"score-bot/utils"
	"score-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config", "err", err)
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseDriver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), os.ModePerm); err != nil {
			slog.Error("failed to create data directory", "err", err)
			os.Exit(1)
		}
	}
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("error initializing database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		slog.Error("error creating bot", "err", err)
		os.Exit(1)
	}
	handlers.Register(b)

	defer b.Close()
	if err := b.Run(); err != nil {
		slog.Error("bot stopped", "err", err)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server stopped", "err", err)
	}
}
