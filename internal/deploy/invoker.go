package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spacesedan/sentiment-analyzer/internal/clients"
)

// Invoker calls a deployed function by name. Endpoint handlers depend on
// this interface only, so they are testable without a live platform.
type Invoker interface {
	Invoke(ctx context.Context, function string, payload any, out any) error
}

// HandlerFunc is an in-process function body registered with LocalInvoker.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// LocalInvoker runs function bodies in-process. Used when serving the
// endpoints and the analysis in a single warm execution context, and by the
// smoke test.
type LocalInvoker struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewLocalInvoker() *LocalInvoker {
	return &LocalInvoker{handlers: make(map[string]HandlerFunc)}
}

func (l *LocalInvoker) Register(function string, fn HandlerFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[function] = fn
}

func (l *LocalInvoker) Invoke(ctx context.Context, function string, payload any, out any) error {
	l.mu.RLock()
	fn, ok := l.handlers[function]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown function %q", function)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", function, err)
	}

	result, err := fn(ctx, raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result of %s: %w", function, err)
	}
	return json.Unmarshal(encoded, out)
}

// RemoteInvoker routes calls through the platform's invocation API. Timeout
// and concurrency limiting happen on the platform side.
type RemoteInvoker struct {
	client *clients.PlatformClient
	app    string
}

func NewRemoteInvoker(client *clients.PlatformClient, app string) *RemoteInvoker {
	return &RemoteInvoker{client: client, app: app}
}

func (r *RemoteInvoker) Invoke(ctx context.Context, function string, payload any, out any) error {
	return r.client.InvokeFunction(ctx, r.app, function, payload, out)
}
