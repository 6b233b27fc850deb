package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

// compoundThreshold splits VADER's [-1,1] compound score into the three
// sentiment classes.
const compoundThreshold = 0.20

// VaderBackend is the lexicon fallback for environments without an ONNX
// runtime. It needs no model download and is fully deterministic.
type VaderBackend struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderBackend() *VaderBackend {
	return &VaderBackend{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderBackend) Name() string { return "vader" }

// Scores emits all three classes so the normalization layer can run the same
// max-score selection it uses for the transformer backend. The compound score
// lives in [-1,1]; the winning class carries its [0,1] mapping and the losers
// split the remainder.
func (v *VaderBackend) Scores(_ context.Context, text string) ([]RawScore, error) {
	plainText := convertMarkdownToText(text)
	compound := v.analyzer.PolarityScores(plainText).Compound

	var winner string
	var winnerScore float64
	switch {
	case compound >= compoundThreshold:
		winner = "positive"
		winnerScore = (1 + compound) / 2
	case compound <= -compoundThreshold:
		winner = "negative"
		winnerScore = (1 - compound) / 2
	default:
		winner = "neutral"
		winnerScore = 1 - math.Abs(compound)
	}

	loserScore := (1 - winnerScore) / 2
	scores := make([]RawScore, 0, 3)
	for _, label := range []string{"negative", "neutral", "positive"} {
		score := loserScore
		if label == winner {
			score = winnerScore
		}
		scores = append(scores, RawScore{Label: label, Score: score})
	}
	return scores, nil
}

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func removeLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

func convertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return removeLinks(plainText)
}
