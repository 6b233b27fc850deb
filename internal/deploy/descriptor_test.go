package deploy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiment-analyzer/config"
)

func TestDefaultImage_PinnedVersions(t *testing.T) {
	image := DefaultImage()

	assert.Equal(t, "debian-slim", image.BaseImage)
	assert.Equal(t, "3.11", image.PythonVersion)
	// exact strings drive image reproducibility; do not loosen
	assert.Equal(t, []string{
		"transformers==4.36.0",
		"torch==2.1.0",
		"fastapi==0.104.1",
		"pydantic==2.5.0",
	}, image.PipPackages)
}

func TestNewApp_FunctionLimits(t *testing.T) {
	app := NewApp("sentiment-analyzer", 10, 300*time.Second, 600*time.Second)

	assert.Equal(t, "sentiment-analyzer", app.Name)

	byName := make(map[string]Function, len(app.Functions))
	for _, fn := range app.Functions {
		byName[fn.Name] = fn
	}

	analyze, ok := byName[FuncAnalyzeSentiment]
	require.True(t, ok)
	assert.Equal(t, 300*time.Second, analyze.Timeout)
	assert.Equal(t, 10, analyze.ConcurrencyLimit)

	batch, ok := byName[FuncBatchAnalysis]
	require.True(t, ok)
	assert.Equal(t, 600*time.Second, batch.Timeout)

	_, ok = byName[FuncWebEndpoint]
	assert.True(t, ok)
	_, ok = byName[FuncHealthCheck]
	assert.True(t, ok)
}

func TestNewApp_ConfigTunablesFlowThrough(t *testing.T) {
	cfg := config.FromEnv()
	cfg.AppName = "workshop-analyzer"
	cfg.MaxConcurrent = 25

	app := NewApp(cfg.AppName, cfg.MaxConcurrent, cfg.AnalyzeTimeout, cfg.BatchTimeout)

	byName := make(map[string]Function, len(app.Functions))
	for _, fn := range app.Functions {
		byName[fn.Name] = fn
	}

	assert.Equal(t, "workshop-analyzer", app.Name)
	assert.Equal(t, 25, byName[FuncAnalyzeSentiment].ConcurrencyLimit)
	assert.Equal(t, cfg.AnalyzeTimeout, byName[FuncAnalyzeSentiment].Timeout)
	assert.Equal(t, cfg.BatchTimeout, byName[FuncBatchAnalysis].Timeout)
}

func TestNewProbeApp_IsMinimal(t *testing.T) {
	probe := NewProbeApp()

	assert.Equal(t, "test-connection", probe.Name)
	require.Len(t, probe.Functions, 1)
	assert.Equal(t, "test_function", probe.Functions[0].Name)
}
