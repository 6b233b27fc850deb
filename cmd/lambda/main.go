package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/clients"
	"github.com/spacesedan/sentiment-analyzer/internal/db"
	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
	"github.com/spacesedan/sentiment-analyzer/internal/gateway"
	"github.com/spacesedan/sentiment-analyzer/internal/logging"
	"github.com/spacesedan/sentiment-analyzer/internal/sentiment"
)

var handler *gateway.Handler

// init runs once per cold start; the analyzer and its pipeline handle live
// for the lifetime of the warm execution context.
func init() {
	config.LoadEnv()
	logging.InitLogger()
	cfg := config.FromEnv()

	var backend sentiment.Backend
	if cfg.Backend == config.BackendVader {
		backend = sentiment.NewVaderBackend()
	} else {
		backend = sentiment.NewTransformerBackend(cfg.ModelID)
	}

	analyzer := sentiment.NewAnalyzer(backend)
	invoker := deploy.NewLocalInvoker()
	sentiment.RegisterFunctions(invoker, analyzer)

	handler = gateway.NewHandler(cfg, invoker, clients.InitValkey(), db.InitUsageStore())
	slog.Info("Lambda cold start: initialization complete",
		slog.String("backend", backend.Name()))
}

func route(ctx context.Context, req events.APIGatewayProxyRequest) (int, any) {
	switch {
	case req.HTTPMethod == http.MethodPost && req.Path == "/sentiment":
		return handler.AnalyzeJSON(ctx, []byte(req.Body))
	case req.HTTPMethod == http.MethodPost && req.Path == "/sentiment/batch":
		return handler.BatchJSON(ctx, []byte(req.Body))
	case req.HTTPMethod == http.MethodGet && req.Path == "/health":
		return handler.HealthJSON()
	default:
		return http.StatusNotFound, map[string]string{"error": "not found", "status": "error"}
	}
}

func HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status, payload := route(ctx, req)

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal response",
			slog.String("error", err.Error()))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

func main() {
	lambda.Start(HandleRequest)
}
