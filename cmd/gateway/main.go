package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/clients"
	"github.com/spacesedan/sentiment-analyzer/internal/db"
	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
	"github.com/spacesedan/sentiment-analyzer/internal/gateway"
	"github.com/spacesedan/sentiment-analyzer/internal/logging"
	"github.com/spacesedan/sentiment-analyzer/internal/monitoring"
	"github.com/spacesedan/sentiment-analyzer/internal/sentiment"
)

func main() {
	config.LoadEnv()
	logging.InitLogger()
	cfg := config.FromEnv()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var backend sentiment.Backend
	var transformer *sentiment.TransformerBackend
	switch cfg.Backend {
	case config.BackendVader:
		backend = sentiment.NewVaderBackend()
	default:
		transformer = sentiment.NewTransformerBackend(cfg.ModelID)
		backend = transformer
	}
	slog.Info("[Main] Sentiment backend selected",
		slog.String("backend", backend.Name()))

	analyzer := sentiment.NewAnalyzer(backend)

	// built once at startup, immutable afterwards
	app := deploy.NewApp(cfg.AppName, cfg.MaxConcurrent, cfg.AnalyzeTimeout, cfg.BatchTimeout)
	slog.Info("[Main] App descriptor built",
		slog.String("app", app.Name),
		slog.Int("functions", len(app.Functions)),
		slog.Int("concurrency_limit", cfg.MaxConcurrent))

	var platformHealthy *atomic.Bool
	var invoker deploy.Invoker
	if cfg.InvokerMode == config.InvokerRemote {
		platform := clients.GetPlatformClient()
		if err := platform.ValidateApp(ctx, app); err != nil {
			slog.Warn("[Main] Platform did not accept the app descriptor",
				slog.String("error", err.Error()))
		}
		invoker = deploy.NewRemoteInvoker(platform, cfg.AppName)

		platformHealthy = &atomic.Bool{}
		platformHealthy.Store(true)
		go monitoring.MonitorPlatformHealth(ctx, platformHealthy)
	} else {
		local := deploy.NewLocalInvoker()
		sentiment.RegisterFunctions(local, analyzer)
		invoker = local
	}

	cache := clients.InitValkey()
	defer clients.CloseValkey()
	usage := db.InitUsageStore()

	handler := gateway.NewHandler(cfg, invoker, cache, usage)
	if platformHealthy != nil {
		handler.WatchPlatform(platformHealthy)
	}
	router := gateway.NewRouter(handler)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		slog.Info("[Main] Gateway listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("app", cfg.AppName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed",
				slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Shutdown failed",
			slog.String("error", err.Error()))
	}

	if err := usage.Flush(shutdownCtx); err != nil {
		slog.Warn("[Main] Failed to flush usage records",
			slog.String("error", err.Error()))
	}
	if transformer != nil {
		transformer.Close()
	}
}
