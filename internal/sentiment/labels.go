package sentiment

import "strings"

// LabelInfo is the display form of a raw classifier label.
type LabelInfo struct {
	Label string
	Emoji string
}

// labelTable covers both naming schemes seen from the sentiment models:
// the LABEL_N scheme from older cardiffnlp checkpoints and the plain
// lowercase scheme from newer ones. Lookups are case-insensitive.
var labelTable = map[string]LabelInfo{
	"label_0":  {Label: "Negative", Emoji: "😞"},
	"label_1":  {Label: "Neutral", Emoji: "😐"},
	"label_2":  {Label: "Positive", Emoji: "😊"},
	"negative": {Label: "Negative", Emoji: "😞"},
	"neutral":  {Label: "Neutral", Emoji: "😐"},
	"positive": {Label: "Positive", Emoji: "😊"},
}

// LookupLabel maps a raw model label to its display label and glyph. Unknown
// labels pass through unchanged with a neutral glyph so a new model version
// never breaks the response contract.
func LookupLabel(raw string) LabelInfo {
	if info, ok := labelTable[strings.ToLower(raw)]; ok {
		return info
	}
	return LabelInfo{Label: raw, Emoji: "🤔"}
}
