package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/beccaroth/muse/internal/api"
	"github.com/beccaroth/muse/internal/cache"
	"github.com/beccaroth/muse/internal/calendar"
	"github.com/beccaroth/muse/internal/config"
	"github.com/beccaroth/muse/internal/notify"
	"github.com/beccaroth/muse/internal/store"
	"github.com/beccaroth/muse/internal/undo"
	"github.com/beccaroth/muse/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "Muse - personal project planning service",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(newLogHandler(cfg.Log))
	slog.SetDefault(logger)
	slog.Info("configuration loaded", "component", "main")

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "component", "main", "path", cfg.Database.Path)

	listings := cache.New(db)
	notifications := notify.NewRing(0)

	undoMgr := undo.NewManager(db,
		undo.WithGraceWindow(time.Duration(cfg.Undo.GraceWindow)),
		undo.WithNotifier(notifications),
		undo.WithInvalidator(listings),
	)

	agg := calendar.NewAggregator(db)

	handler := api.NewHandler(db, listings, undoMgr, agg, notifications, cfg.Auth.APIKey, Version)
	router := handler.Routes()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	sweeper := worker.NewCycleCoordinator(db, listings, time.Duration(cfg.Worker.CycleSweepInterval))
	startWorker(ctx, &wg, "cycle-coordinator", sweeper.Run)

	go func() {
		slog.Info("server starting", "component", "main", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called
		// gracefully. Anything else is a real failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "component", "main", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated", "component", "main")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "component", "main", "error", err)
	}

	wg.Wait()

	// Pending grace-window mutations must reach the store before it closes;
	// otherwise an accepted delete or promote would be silently dropped.
	undoMgr.Flush(shutdownCtx)

	if err := db.Close(); err != nil {
		slog.Error("store close error", "component", "main", "error", err)
	}

	slog.Info("shutdown complete", "component", "main")
	return nil
}

func newLogHandler(cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context
// cancellation. Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
