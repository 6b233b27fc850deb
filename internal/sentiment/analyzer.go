package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

// Analyzer turns raw backend scores into the stable response contract. It
// never returns a Go error: failures become a Result with status "error" so
// endpoint callers always get a well-formed payload.
type Analyzer struct {
	backend Backend
}

func NewAnalyzer(backend Backend) *Analyzer {
	return &Analyzer{backend: backend}
}

// Analyze classifies one text. The top-scoring class wins; its raw label is
// normalized through the label table, the score is rounded to 3 decimals and
// the confidence string to 1 decimal.
func (a *Analyzer) Analyze(ctx context.Context, text string) models.Result {
	scores, err := a.backend.Scores(ctx, text)
	if err != nil {
		slog.Warn("[Analyzer] Classification failed",
			slog.String("backend", a.backend.Name()),
			slog.String("error", err.Error()))
		return errorResult(text, err)
	}
	if len(scores) == 0 {
		return errorResult(text, fmt.Errorf("backend %s returned no scores", a.backend.Name()))
	}

	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}

	info := LookupLabel(top.Label)
	return models.Result{
		Text:       text,
		Label:      info.Label,
		Score:      math.Round(top.Score*1000) / 1000,
		Confidence: fmt.Sprintf("%.1f%%", top.Score*100),
		Emoji:      info.Emoji,
		Status:     models.StatusSuccess,
	}
}

// AnalyzeBatch classifies texts in order. Each entry is isolated: one failed
// text yields an error entry without aborting the rest. Both paths share the
// same normalization.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string) []models.Result {
	results := make([]models.Result, 0, len(texts))
	for _, text := range texts {
		results = append(results, a.Analyze(ctx, text))
	}
	return results
}

func errorResult(text string, err error) models.Result {
	return models.Result{
		Text:   text,
		Error:  err.Error(),
		Status: models.StatusError,
	}
}
