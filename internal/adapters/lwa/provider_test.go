package lwa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/report-relay/internal/errors"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", RefreshToken: "rt"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", RefreshToken: "rt"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing refresh token",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret"},
			errMsg: "refresh token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewProvider_DefaultTokenURL(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(ProviderConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "rt"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenURL, p.config.Endpoint.TokenURL)
}

func TestAccessToken_RefreshGrant(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-1", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "Atza|token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})

	p, err := NewProvider(ProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RefreshToken: "rt-1",
		TokenURL:     srv.URL,
	})
	require.NoError(t, err)

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Atza|token", tok.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	// Every call exchanges again.
	_, err = p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAccessToken_DefaultExpiry(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	})

	fixed := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	p, err := NewProvider(ProviderConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "rt", TokenURL: srv.URL})
	require.NoError(t, err)
	p.now = func() time.Time { return fixed }

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), tok.ExpiresAt)
}

func TestAccessToken_Rejected(t *testing.T) {
	t.Parallel()

	srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad refresh token"}`))
	})

	p, err := NewProvider(ProviderConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "rt", TokenURL: srv.URL})
	require.NoError(t, err)

	_, err = p.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.Contains(t, err.Error(), "invalid_grant")
}
