// Package lwa exchanges a Login with Amazon refresh token for short-lived
// Selling Partner API access tokens.
package lwa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
	"golang.org/x/oauth2"
)

// DefaultTokenURL is the public LWA token endpoint.
const DefaultTokenURL = "https://api.amazon.com/auth/o2/token"

// defaultTokenLifetime applies when the token response omits expires_in.
const defaultTokenLifetime = time.Hour

var _ core.CredentialProvider = (*Provider)(nil)

// Provider implements core.CredentialProvider with a refresh_token grant.
type Provider struct {
	config       *oauth2.Config
	refreshToken string
	httpClient   *http.Client
	now          func() time.Time
}

// ProviderConfig holds configuration for the LWA provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string       // Optional, defaults to DefaultTokenURL
	HTTPClient   *http.Client // Optional, defaults to a client with a 30s timeout
}

// NewProvider creates a new LWA provider.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if strings.TrimSpace(config.ClientID) == "" {
		return nil, errors.New("client ID is required")
	}
	if strings.TrimSpace(config.ClientSecret) == "" {
		return nil, errors.New("client secret is required")
	}
	if strings.TrimSpace(config.RefreshToken) == "" {
		return nil, errors.New("refresh token is required")
	}

	tokenURL := strings.TrimSpace(config.TokenURL)
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
				// LWA expects client_id and client_secret in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: config.RefreshToken,
		httpClient:   httpClient,
		now:          time.Now,
	}, nil
}

// AccessToken performs a fresh refresh-token exchange on every call. Callers
// cache the result for the duration of a run.
func (p *Provider) AccessToken(ctx context.Context) (model.AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	// A token carrying only the refresh token is never valid, so the source
	// always goes to the endpoint.
	tok, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken}).Token()
	if err != nil {
		return model.AccessToken{}, apperrors.AuthError(err, describeTokenError(err))
	}
	if tok.AccessToken == "" {
		return model.AccessToken{}, apperrors.AuthError(nil, "token response missing access_token")
	}

	expiresAt := p.now().Add(defaultTokenLifetime)
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	}

	return model.AccessToken{Value: tok.AccessToken, ExpiresAt: expiresAt}, nil
}

func describeTokenError(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			return fmt.Sprintf("token exchange rejected: %s", re.ErrorCode)
		}
		if re.Response != nil {
			return fmt.Sprintf("token exchange rejected: status %d", re.Response.StatusCode)
		}
	}
	return "token exchange failed"
}
