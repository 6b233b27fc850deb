package sentiment

import "context"

// RawScore is one class score as emitted by a classification backend, before
// label normalization.
type RawScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Backend produces per-class scores for a text. Implementations load their
// model lazily; the first call may be slow.
type Backend interface {
	Name() string
	Scores(ctx context.Context, text string) ([]RawScore, error)
}
