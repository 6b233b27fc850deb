package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/clients"
	"github.com/spacesedan/sentiment-analyzer/internal/db"
	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

// Handler holds the endpoint bodies. HTTP-framework independent: the gin
// router and the Lambda entrypoint both call the *JSON methods, which return
// a status code and the payload to encode.
type Handler struct {
	cfg        *config.Config
	invoker    deploy.Invoker
	cache      *clients.ValkeyClient
	usage      *db.UsageStore
	platformUp *atomic.Bool
}

func NewHandler(cfg *config.Config, invoker deploy.Invoker, cache *clients.ValkeyClient, usage *db.UsageStore) *Handler {
	return &Handler{
		cfg:     cfg,
		invoker: invoker,
		cache:   cache,
		usage:   usage,
	}
}

// WatchPlatform hands the handler the health flag maintained by the platform
// monitor so invocation failures can report the degraded state.
func (h *Handler) WatchPlatform(flag *atomic.Bool) {
	h.platformUp = flag
}

func (h *Handler) platformHealthy() bool {
	return h.platformUp == nil || h.platformUp.Load()
}

// AnalyzeJSON handles the POST analysis body. Blank text is rejected before
// any invocation so the model is never touched for invalid input.
func (h *Handler) AnalyzeJSON(ctx context.Context, body []byte) (int, any) {
	var req models.AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, models.ErrorResponse{
			Error:  "invalid JSON body",
			Status: models.StatusError,
		}
	}

	if strings.TrimSpace(req.Text) == "" {
		return http.StatusBadRequest, models.ErrorResponse{
			Error:  "please provide text to analyze",
			Status: models.StatusError,
		}
	}

	if cached, ok := h.cache.GetCachedResult(ctx, req.Text); ok {
		return http.StatusOK, cached
	}

	start := time.Now()
	var result models.Result
	err := h.invoker.Invoke(ctx, deploy.FuncAnalyzeSentiment, models.AnalyzeRequest{Text: req.Text}, &result)
	h.meter(deploy.FuncAnalyzeSentiment, err, start)
	if err != nil {
		slog.Error("[Gateway] Invocation failed",
			slog.String("function", deploy.FuncAnalyzeSentiment),
			slog.Bool("platform_healthy", h.platformHealthy()),
			slog.String("error", err.Error()))
		return http.StatusBadGateway, models.ErrorResponse{
			Error:  fmt.Sprintf("invocation failed: %v", err),
			Status: models.StatusError,
		}
	}

	if result.Status == models.StatusSuccess {
		if cacheErr := h.cache.CacheResult(ctx, req.Text, result); cacheErr != nil {
			slog.Warn("[Gateway] Failed to cache result",
				slog.String("error", cacheErr.Error()))
		}
	}
	return http.StatusOK, result
}

// BatchJSON handles the POST batch body; the ordered per-text results come
// back verbatim from the batch function.
func (h *Handler) BatchJSON(ctx context.Context, body []byte) (int, any) {
	var req models.BatchAnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, models.ErrorResponse{
			Error:  "invalid JSON body",
			Status: models.StatusError,
		}
	}

	if len(req.Texts) == 0 {
		return http.StatusBadRequest, models.ErrorResponse{
			Error:  "please provide texts to analyze",
			Status: models.StatusError,
		}
	}

	start := time.Now()
	var results []models.Result
	err := h.invoker.Invoke(ctx, deploy.FuncBatchAnalysis, req, &results)
	h.meter(deploy.FuncBatchAnalysis, err, start)
	if err != nil {
		slog.Error("[Gateway] Invocation failed",
			slog.String("function", deploy.FuncBatchAnalysis),
			slog.Bool("platform_healthy", h.platformHealthy()),
			slog.String("error", err.Error()))
		return http.StatusBadGateway, models.ErrorResponse{
			Error:  fmt.Sprintf("invocation failed: %v", err),
			Status: models.StatusError,
		}
	}

	return http.StatusOK, results
}

// HealthJSON is static: no model work, identical payload on every call.
func (h *Handler) HealthJSON() (int, any) {
	return http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: h.cfg.AppName,
		Message: "Ready to analyze sentiment! Send POST requests to /sentiment",
	}
}

func (h *Handler) meter(function string, err error, start time.Time) {
	status := models.StatusSuccess
	if err != nil {
		status = models.StatusError
	}
	h.usage.Record(function, status, time.Since(start))
}
