package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/deploy"
)

const clientBinary = "modal"

// Validator is the slice of the platform client setup needs for its
// connectivity probe.
type Validator interface {
	ValidateApp(ctx context.Context, descriptor any) error
}

// Bootstrapper runs the one-time machine setup: ensure the deployment client
// is installed, load local settings, authenticate, verify connectivity. Steps
// are ordered and the flow short-circuits on the first failure.
type Bootstrapper struct {
	runner   CommandRunner
	platform Validator
	auth     authFlow
	out      io.Writer
}

// authFlow is swapped out in tests; the default runs the OAuth device flow.
type authFlow func(ctx context.Context, out io.Writer) error

func NewBootstrapper(runner CommandRunner, platform Validator, out io.Writer) *Bootstrapper {
	return &Bootstrapper{
		runner:   runner,
		platform: platform,
		auth:     deviceAuthFlow,
		out:      out,
	}
}

// Run executes the four setup steps. A non-nil error means setup is
// incomplete and the caller should exit non-zero.
func (b *Bootstrapper) Run(ctx context.Context) error {
	fmt.Fprintln(b.out, "Sentiment analyzer setup")
	fmt.Fprintln(b.out, "This will prepare your machine for serverless ML deployment")

	fmt.Fprintln(b.out, "\nStep 1: Checking deployment client installation...")
	if err := b.EnsureClient(ctx); err != nil {
		fmt.Fprintln(b.out, "Failed to install the deployment client - please install it manually with 'pip install modal'")
		return err
	}

	fmt.Fprintln(b.out, "\nStep 2: Loading environment settings...")
	b.LoadEnvironment()

	fmt.Fprintln(b.out, "\nStep 3: Setting up authentication...")
	if err := b.Authenticate(ctx); err != nil {
		fmt.Fprintln(b.out, "Authentication failed - run setup again, or check your account in a browser")
		return err
	}

	fmt.Fprintln(b.out, "\nStep 4: Verifying platform connection...")
	if err := b.VerifyConnection(ctx); err != nil {
		fmt.Fprintln(b.out, "Connection test failed - check your network and try again")
		return err
	}

	fmt.Fprintln(b.out, "\nSetup complete! Your machine is ready for serverless ML deployment")
	return nil
}

// EnsureClient checks that the deployment client binary is on PATH and
// installs it when missing. Fails only if the install itself errors.
func (b *Bootstrapper) EnsureClient(ctx context.Context) error {
	if _, err := b.runner.LookPath(clientBinary); err == nil {
		fmt.Fprintln(b.out, "Deployment client is already installed - ready to proceed")
		return nil
	}

	fmt.Fprintln(b.out, "Deployment client not found - installing now...")
	if err := b.runner.Run(ctx, "python3", "-m", "pip", "install", clientBinary); err != nil {
		return fmt.Errorf("failed to install deployment client: %w", err)
	}

	fmt.Fprintln(b.out, "Deployment client installed successfully")
	return nil
}

// LoadEnvironment applies the optional .env.local overrides. Absence is not
// an error; defaults stay in effect.
func (b *Bootstrapper) LoadEnvironment() {
	if config.LoadEnv() {
		fmt.Fprintln(b.out, "Custom environment variables loaded from .env.local")
		return
	}
	fmt.Fprintln(b.out, "No .env.local file found - using default settings")
	fmt.Fprintln(b.out, "You can create .env.local later to customize your deployments")
}

// Authenticate runs the interactive authorization flow against the platform.
func (b *Bootstrapper) Authenticate(ctx context.Context) error {
	if err := b.auth(ctx, b.out); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Fprintln(b.out, "Authentication successful - you can now deploy models")
	return nil
}

// VerifyConnection submits a minimal no-op descriptor to confirm the
// platform accepts work from this machine. Errors are reported, never
// propagated as panics.
func (b *Bootstrapper) VerifyConnection(ctx context.Context) error {
	if err := b.platform.ValidateApp(ctx, deploy.NewProbeApp()); err != nil {
		slog.Error("[Setup] Platform connection test failed",
			slog.String("error", err.Error()))
		return fmt.Errorf("platform connection test failed: %w", err)
	}
	fmt.Fprintln(b.out, "Platform connection verified - ready to deploy real models")
	return nil
}
