package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
	"github.com/spacesedan/sentiment-analyzer/internal/logging"
	"github.com/spacesedan/sentiment-analyzer/internal/models"
	"github.com/spacesedan/sentiment-analyzer/internal/sentiment"
)

var testTexts = []string{
	"I love this workshop!",
	"This is terrible",
	"It's an okay day",
	"Machine learning is amazing!",
}

// Manual smoke test: run the fixed examples through the single-text function
// and print what comes back. No assertions, not a test suite.
func main() {
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

	fmt.Println("🧪 Testing sentiment analysis locally...")
	for _, text := range testTexts {
		var result models.Result
		err := invoker.Invoke(context.Background(), deploy.FuncAnalyzeSentiment,
			models.AnalyzeRequest{Text: text}, &result)
		fmt.Printf("Text: %q\n", text)
		if err != nil {
			fmt.Printf("Invocation error: %v\n", err)
		} else if result.Status == models.StatusError {
			fmt.Printf("Result: error - %s\n", result.Error)
		} else {
			fmt.Printf("Result: %s %s (%s)\n", result.Label, result.Emoji, result.Confidence)
		}
		fmt.Println(strings.Repeat("-", 50))
	}
}
