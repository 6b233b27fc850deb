package sentiment

import (
	"context"
	"encoding/json"

	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

// RegisterFunctions binds the analysis function bodies to a local invoker,
// mirroring the function names the platform exposes remotely.
func RegisterFunctions(inv *deploy.LocalInvoker, analyzer *Analyzer) {
	inv.Register(deploy.FuncAnalyzeSentiment, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req models.AnalyzeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return analyzer.Analyze(ctx, req.Text), nil
	})

	inv.Register(deploy.FuncBatchAnalysis, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req models.BatchAnalyzeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return analyzer.AnalyzeBatch(ctx, req.Texts), nil
	})
}
