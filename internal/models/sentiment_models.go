package models

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the normalized sentiment payload returned for a single text.
// On failure Error is set, Status is "error", and the classification
// fields are left empty.
type Result struct {
	Text       string  `json:"text"`
	Label      string  `json:"label,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Emoji      string  `json:"emoji,omitempty"`
	Error      string  `json:"error,omitempty"`
	Status     string  `json:"status"`
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type BatchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Message string `json:"message"`
}
