package models

// UsageRecord is one metered invocation of a deployed function. Results are
// never persisted; only the fact that a call happened and how it went.
type UsageRecord struct {
	Function  string `json:"function" dynamodbav:"function"`
	Status    string `json:"status" dynamodbav:"status"`
	LatencyMS int64  `json:"latency_ms" dynamodbav:"latency_ms"`
	Timestamp int64  `json:"timestamp" dynamodbav:"timestamp"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
