package config

import (
	"os"
	"strconv"
	"time"
)

const (
	BackendTransformer = "transformer"
	BackendVader       = "vader"

	InvokerLocal  = "local"
	InvokerRemote = "remote"
)

// Config holds every process-wide tunable. It is built once per binary and
// passed down; nothing below the cmd layer reads analysis settings from the
// environment directly.
type Config struct {
	AppName       string
	MaxConcurrent int
	ModelID       string
	Backend       string
	InvokerMode   string
	ListenAddr    string

	AnalyzeTimeout time.Duration
	BatchTimeout   time.Duration
}

func FromEnv() *Config {
	return &Config{
		AppName:        envOr("SENTIMENT_APP_NAME", "sentiment-analyzer"),
		MaxConcurrent:  envOrInt("MAX_CONCURRENT_REQUESTS", 10),
		ModelID:        envOr("SENTIMENT_MODEL_ID", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
		Backend:        envOr("SENTIMENT_BACKEND", BackendTransformer),
		InvokerMode:    envOr("SENTIMENT_INVOKER", InvokerLocal),
		ListenAddr:     envOr("LISTEN_ADDR", ":8000"),
		AnalyzeTimeout: 300 * time.Second,
		BatchTimeout:   600 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
