package setup

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2"

	"github.com/spacesedan/sentiment-analyzer/internal/clients"
)

// deviceAuthFlow performs the OAuth2 device authorization grant: print the
// verification URL and user code, poll until the user approves in a browser,
// then persist the token for the platform client.
func deviceAuthFlow(ctx context.Context, out io.Writer) error {
	baseURL := os.Getenv("PLATFORM_API_URL")
	if baseURL == "" {
		baseURL = clients.DEFAULT_PLATFORM_URL
	}
	clientID := os.Getenv("PLATFORM_CLIENT_ID")
	if clientID == "" {
		clientID = "sentiment-analyzer-cli"
	}

	conf := &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: baseURL + "/oauth/device/code",
			TokenURL:      baseURL + "/oauth/token",
		},
	}

	da, err := conf.DeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("failed to start device authorization: %w", err)
	}

	fmt.Fprintln(out, "This will connect your local environment to the platform:")
	fmt.Fprintf(out, "1. Open %s in a browser\n", da.VerificationURI)
	fmt.Fprintf(out, "2. Enter the code %s\n", da.UserCode)
	fmt.Fprintln(out, "3. Approve access for this computer")

	token, err := conf.DeviceAccessToken(ctx, da)
	if err != nil {
		return fmt.Errorf("device authorization was not completed: %w", err)
	}

	if err := clients.SaveToken(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}
