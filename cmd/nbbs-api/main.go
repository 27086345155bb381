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

	"github.com/itchan-dev/nbbs/internal/config"
	"github.com/itchan-dev/nbbs/internal/logger"
	"github.com/itchan-dev/nbbs/internal/router"
	"github.com/itchan-dev/nbbs/internal/setup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.Json)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Cleanup(); err != nil {
			logger.Log.Error("failed to release storage", "error", err)
		}
	}()

	report, err := deps.Board.Reconcile()
	if err != nil {
		logger.Log.Error("failed to reconcile storage", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("storage reconciled",
		"removed_boards", len(report.RemovedBoards),
		"orphan_threads", len(report.OrphanThreads),
		"dropped_index_entries", len(report.DroppedIndexed))

	if err := deps.Board.EnsureBoard(cfg.Public.DefaultBoard); err != nil {
		logger.Log.Error("failed to create default board", "board", cfg.Public.DefaultBoard, "error", err)
		os.Exit(1)
	}
	if err := deps.Access.LoadIgnoreList(); err != nil {
		logger.Log.Error("failed to load ignore list", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Access.StartBackgroundUpdate(ctx, cfg.Public.IgnoreListRefresh)
	if deps.FloodLimiter != nil {
		deps.FloodLimiter.StartSweeper(time.Minute, ctx.Done())
	}

	srv := &http.Server{
		Addr:         cfg.Public.Http.Addr,
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Public.Http.ReadTimeout,
		WriteTimeout: cfg.Public.Http.WriteTimeout,
	}

	go func() {
		logger.Log.Info("server started", "addr", srv.Addr, "storage", cfg.Public.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
