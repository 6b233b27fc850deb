package deploy

import "time"

// Function names as they appear on the platform.
const (
	FuncAnalyzeSentiment = "analyze_sentiment"
	FuncBatchAnalysis    = "batch_sentiment_analysis"
	FuncWebEndpoint      = "sentiment_endpoint"
	FuncHealthCheck      = "health_check"
)

// Image describes the managed container image a function runs in. The pip
// package versions are pinned; the platform rebuilds the image whenever they
// change, so they must stay byte-identical across deploys.
type Image struct {
	BaseImage     string   `json:"base_image"`
	PythonVersion string   `json:"python_version"`
	PipPackages   []string `json:"pip_packages"`
}

func DefaultImage() Image {
	return Image{
		BaseImage:     "debian-slim",
		PythonVersion: "3.11",
		PipPackages: []string{
			"transformers==4.36.0",
			"torch==2.1.0",
			"fastapi==0.104.1",
			"pydantic==2.5.0",
		},
	}
}

// Function is one deployable unit. Timeout and concurrency are enforced by
// the platform, not by this code.
type Function struct {
	Name             string        `json:"name"`
	Image            Image         `json:"image"`
	Timeout          time.Duration `json:"timeout"`
	ConcurrencyLimit int           `json:"concurrency_limit,omitempty"`
}

// App is the full deployable unit descriptor. Built once at startup and
// never mutated afterwards.
type App struct {
	Name      string     `json:"name"`
	Functions []Function `json:"functions"`
}

// NewApp builds the descriptor for the sentiment analyzer deployment. The
// timeouts and the concurrency limit come from Config so the documented
// overrides reach the platform.
func NewApp(appName string, maxConcurrent int, analyzeTimeout, batchTimeout time.Duration) App {
	image := DefaultImage()
	return App{
		Name: appName,
		Functions: []Function{
			{
				Name:             FuncAnalyzeSentiment,
				Image:            image,
				Timeout:          analyzeTimeout,
				ConcurrencyLimit: maxConcurrent,
			},
			{
				Name:    FuncBatchAnalysis,
				Image:   image,
				Timeout: batchTimeout,
			},
			{
				Name:    FuncWebEndpoint,
				Image:   image,
				Timeout: analyzeTimeout,
			},
			{
				Name:    FuncHealthCheck,
				Image:   image,
				Timeout: analyzeTimeout,
			},
		},
	}
}

// NewProbeApp is a minimal no-op descriptor used by setup to verify the
// platform accepts submissions from this machine. Nothing is deployed.
func NewProbeApp() App {
	return App{
		Name: "test-connection",
		Functions: []Function{
			{Name: "test_function", Image: DefaultImage(), Timeout: 60 * time.Second},
		},
	}
}
