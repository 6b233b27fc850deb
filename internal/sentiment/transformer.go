package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const modelDir = "./models"

// TransformerBackend runs a pretrained text-classification pipeline through
// ONNX runtime. The model is downloaded on first use and the session is built
// exactly once, so concurrent first requests share a single load.
type TransformerBackend struct {
	modelID string

	once     sync.Once
	initErr  error
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewTransformerBackend(modelID string) *TransformerBackend {
	return &TransformerBackend{modelID: modelID}
}

func (t *TransformerBackend) Name() string { return "transformer" }

func (t *TransformerBackend) ensurePipeline() error {
	t.once.Do(func() {
		start := time.Now()

		if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
			t.initErr = fmt.Errorf("failed to create model directory: %w", err)
			return
		}

		modelPath := filepath.Join(modelDir, strings.ReplaceAll(t.modelID, "/", "_")+".onnx")
		if _, err := os.Stat(modelPath); os.IsNotExist(err) {
			slog.Info("[TransformerBackend] Model not found, downloading...",
				slog.String("model_id", t.modelID))
			downloaded, err := hugot.DownloadModel(t.modelID, modelDir, hugot.NewDownloadOptions())
			if err != nil {
				t.initErr = fmt.Errorf("failed to download model %s: %w", t.modelID, err)
				return
			}
			modelPath = downloaded
			slog.Info("[TransformerBackend] Model downloaded successfully",
				slog.String("path", modelPath))
		} else {
			slog.Info("[TransformerBackend] Using existing model",
				slog.String("path", modelPath))
		}

		session, err := hugot.NewORTSession()
		if err != nil {
			t.initErr = fmt.Errorf("failed to initialize ONNX session: %w", err)
			return
		}

		config := hugot.TextClassificationConfig{
			ModelPath: modelPath,
			Name:      "sentimentClassificationPipeline",
		}
		pipeline, err := hugot.NewPipeline(session, config)
		if err != nil {
			session.Destroy()
			t.initErr = fmt.Errorf("failed to initialize classification pipeline: %w", err)
			return
		}

		t.session = session
		t.pipeline = pipeline
		slog.Info("[TransformerBackend] Pipeline ready",
			slog.String("model_id", t.modelID),
			slog.Duration("elapsed", time.Since(start)))
	})
	return t.initErr
}

func (t *TransformerBackend) Scores(ctx context.Context, text string) ([]RawScore, error) {
	if err := t.ensurePipeline(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := t.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outs := output.GetOutput()
	if len(outs) == 0 {
		return nil, fmt.Errorf("pipeline returned no output")
	}
	first, ok := outs[0].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected output format from pipeline")
	}

	var scores []RawScore
	if err := json.Unmarshal([]byte(first), &scores); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline output: %w", err)
	}
	return scores, nil
}

// Close releases the ONNX session. Safe to call when the pipeline was never
// initialized.
func (t *TransformerBackend) Close() {
	if t.session != nil {
		t.session.Destroy()
	}
}
