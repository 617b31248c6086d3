package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kedare/netscope/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ReadOnlyScope is the OAuth scope requested for application default credentials.
const ReadOnlyScope = "https://www.googleapis.com/auth/cloud-platform.read-only"

// ErrNoCredentials is returned when no access token can be obtained.
var ErrNoCredentials = errors.New("no Google Cloud credentials available")

type loggingTransport struct {
	base http.RoundTripper
}

func (t loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Log.Debugf("GCP HTTP %s %s failed after %s: %v", req.Method, req.URL.Redacted(), elapsed, err)

		return nil, err
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	logger.Log.Debugf("GCP HTTP %s %s -> %d (%s)", req.Method, req.URL.Redacted(), status, elapsed)

	return resp, nil
}

func attachLoggingTransport(client *http.Client) {
	if client == nil {
		return
	}

	client.Transport = loggingTransport{base: client.Transport}
}

// NewHTTPClient returns a client that authenticates every request with the
// bearer token and logs each exchange at debug level.
func NewHTTPClient(ctx context.Context, token string) (*http.Client, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	attachLoggingTransport(client)

	return client, nil
}

// DefaultAccessToken resolves an access token from application default credentials.
func DefaultAccessToken(ctx context.Context) (string, error) {
	source, err := google.DefaultTokenSource(ctx, ReadOnlyScope)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}

	return token.AccessToken, nil
}
