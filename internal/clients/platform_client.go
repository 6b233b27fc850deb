package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

const DEFAULT_PLATFORM_URL = "https://api.modal.com"

var (
	platformInstance *PlatformClient
	platformOnce     sync.Once
)

// PlatformClient talks to the managed serverless platform: descriptor
// validation during setup and remote function invocation at serve time.
type PlatformClient struct {
	Client  *http.Client
	BaseURL string
	// Backoff overrides the initial retry backoff; zero means INITIAL_BACKOFF.
	Backoff time.Duration
}

func GetPlatformClient() *PlatformClient {
	platformOnce.Do(func() {
		baseURL := os.Getenv("PLATFORM_API_URL")
		if baseURL == "" {
			baseURL = DEFAULT_PLATFORM_URL
		}

		var timeout time.Duration
		env := os.Getenv("APP_ENV")
		if env == "production" {
			timeout = 10 * time.Second
		} else {
			timeout = 60 * time.Second
		}

		slog.Info("[PlatformClient] Initializing client",
			slog.String("base_url", baseURL),
			slog.Duration("timeout", timeout))
		platformInstance = &PlatformClient{
			Client:  &http.Client{Timeout: timeout},
			BaseURL: baseURL,
		}
	})
	return platformInstance
}

func (p *PlatformClient) DoWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := p.Backoff
	if backoff == 0 {
		backoff = INITIAL_BACKOFF
	}

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			if body, bodyErr := req.GetBody(); bodyErr == nil {
				req.Body = body
			}
		}

		resp, err = p.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[PlatformClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		time.Sleep(backoff)
		backoff *= 2
	}

	// every attempt failed; the last body is already closed, so report the
	// outcome instead of handing back an unreadable response
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("request failed after %d attempts: %s", MAX_RETRIES, errMsg(nil, resp))
}

// ValidateApp submits an app descriptor to the platform's dry-run endpoint.
// A nil error means this machine is authenticated and the platform accepted
// the descriptor.
func (p *PlatformClient) ValidateApp(ctx context.Context, descriptor any) error {
	slog.Info("[PlatformClient] Validating app descriptor with platform")
	start := time.Now()

	var ack struct {
		Accepted bool   `json:"accepted"`
		Message  string `json:"message"`
	}
	if err := p.postJSON(ctx, "/v1/apps/validate", descriptor, &ack); err != nil {
		slog.Error("[PlatformClient] App validation failed",
			slog.Duration("elapsed", time.Since(start)))
		return err
	}
	if !ack.Accepted {
		return fmt.Errorf("platform rejected descriptor: %s", ack.Message)
	}

	slog.Info("[PlatformClient] App descriptor accepted",
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// InvokeFunction calls a deployed function and decodes its response into out.
func (p *PlatformClient) InvokeFunction(ctx context.Context, app, function string, payload any, out any) error {
	start := time.Now()

	path := fmt.Sprintf("/v1/apps/%s/functions/%s/call", app, function)
	if err := p.postJSON(ctx, path, payload, out); err != nil {
		slog.Error("[PlatformClient] Function invocation failed",
			slog.String("function", function),
			slog.Duration("elapsed", time.Since(start)))
		return err
	}

	slog.Info("[PlatformClient] Function invocation successful",
		slog.String("function", function),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// HealthCheck reports whether the platform API answers at all.
func (p *PlatformClient) HealthCheck() bool {
	req, err := http.NewRequest(http.MethodGet, p.BaseURL+"/v1/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func (p *PlatformClient) postJSON(ctx context.Context, path string, input any, output any) error {
	endpoint := p.BaseURL + path

	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[PlatformClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("[PlatformClient] Failed to build request",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if token, err := LoadToken(); err == nil {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := p.DoWithRetry(req)
	if err != nil {
		slog.Error("[PlatformClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("[PlatformClient] Failed to read response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("platform returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[PlatformClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
