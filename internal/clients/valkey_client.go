package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

const (
	VALKEY_RESULT_KEY_PREFIX = "sentiment:result:"
	VALKEY_RESULT_TTL        = 86400
)

// ValkeyClient caches normalized results so repeat texts routed to a warm
// execution context skip inference. The cache is optional: when
// VALKEY_INIT_ADDRESS is unset every method degrades to a no-op.
type ValkeyClient struct {
	mu     sync.Mutex
	client valkey.Client
}

// conn returns the current client. Callers take a snapshot once per
// operation so recreateClient can swap the connection underneath them.
func (vc *ValkeyClient) conn() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.client
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
		if valkeyAddr == "" {
			slog.Info("[ValkeyClient] VALKEY_INIT_ADDRESS not set, result cache disabled")
			return
		}

		client, err := newClient()
		if err != nil {
			slog.Error("[ValkeyClient] Failed to connect, result cache disabled",
				slog.String("error", err.Error()))
			return
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{client: client}
	})
	return valkeyInstance
}

func newClient() (valkey.Client, error) {
	valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
	valkeyPassword := os.Getenv("VALKEY_PASSWORD")
	useTLS := os.Getenv("VALKEY_TLS") == "true"

	opts := valkey.ClientOption{
		InitAddress:      []string{valkeyAddr},
		Password:         valkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if c := client.Do(ctx, client.B().Ping().Build()); c.Error() != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", c.Error())
	}

	return client, nil
}

// recreateClient replaces the connection that stale was snapshotted from.
// When another caller already replaced it the reconnect is skipped.
func (vc *ValkeyClient) recreateClient(stale valkey.Client) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ValkeyClient] Recreate failed and was recovered from panic",
				slog.Any("panic", r))
		}
	}()

	vc.mu.Lock()
	defer vc.mu.Unlock()
	if vc.client != stale {
		return
	}

	slog.Warn("[ValkeyClient] Attempting to recreate valkey client...")
	vc.client.Close()

	client, err := newClient()
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
	vc.client = client
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.conn().Close()
	}
}

// GetCachedResult returns the cached result for a text, if any. Cache
// failures are misses, never request failures.
func (vc *ValkeyClient) GetCachedResult(ctx context.Context, text string) (models.Result, bool) {
	var result models.Result
	if vc == nil {
		return result, false
	}

	key := resultKey(text)
	c := vc.conn()
	res := doWithRetry(ctx, c, c.B().Get().Key(key).Build(), 3)
	if err := res.Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient(c)
		}
		return result, false
	}

	raw, err := res.AsBytes()
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("[ValkeyClient] Discarding undecodable cache entry",
			slog.String("key", key))
		return result, false
	}
	return result, true
}

// CacheResult stores a successful result with a 24h TTL.
func (vc *ValkeyClient) CacheResult(ctx context.Context, text string, result models.Result) error {
	if vc == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for cache: %w", err)
	}

	key := resultKey(text)
	c := vc.conn()
	res := doWithRetry(ctx,
		c, c.B().Set().Key(key).Value(string(raw)).ExSeconds(VALKEY_RESULT_TTL).Build(), 3)
	if err := res.Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient(c)
		}
		return err
	}
	return nil
}

func resultKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return VALKEY_RESULT_KEY_PREFIX + hex.EncodeToString(sum[:])
}

func doWithRetry(ctx context.Context, c valkey.Client, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = c.Do(ctx, completed)
		if result.Error() == nil {
			break
		}
		if valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
