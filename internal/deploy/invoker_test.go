package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalInvoker_RoundTrip(t *testing.T) {
	inv := NewLocalInvoker()
	inv.Register("echo", func(_ context.Context, payload json.RawMessage) (any, error) {
		var in map[string]string
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, err
		}
		return map[string]string{"echoed": in["text"]}, nil
	})

	var out map[string]string
	err := inv.Invoke(context.Background(), "echo", map[string]string{"text": "hello"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hello", out["echoed"])
}

func TestLocalInvoker_UnknownFunction(t *testing.T) {
	inv := NewLocalInvoker()

	err := inv.Invoke(context.Background(), "nope", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown function")
}

func TestLocalInvoker_HandlerErrorPropagates(t *testing.T) {
	inv := NewLocalInvoker()
	inv.Register("broken", func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("handler exploded")
	})

	err := inv.Invoke(context.Background(), "broken", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler exploded")
}

func TestLocalInvoker_NilOutDiscardsResult(t *testing.T) {
	inv := NewLocalInvoker()
	inv.Register("fire-and-forget", func(context.Context, json.RawMessage) (any, error) {
		return map[string]int{"n": 1}, nil
	})

	err := inv.Invoke(context.Background(), "fire-and-forget", nil, nil)

	assert.NoError(t, err)
}
