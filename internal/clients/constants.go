package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	USER_AGENT      = "sentiment-analyzer/1.0 (+https://github.com/spacesedan/sentiment-analyzer)"
)
