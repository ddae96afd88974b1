package service

import (
	"context"
	"sync"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

// Session holds the vendor access token for one pipeline run.
//
// A call rejected with token_expired refreshes the token once and is retried
// once; a second rejection surfaces as an auth error.
type Session struct {
	provider core.CredentialProvider
	now      func() time.Time

	mu        sync.Mutex
	token     model.AccessToken
	refreshes int
}

// NewSession creates a session that fetches its first token lazily.
func NewSession(provider core.CredentialProvider) *Session {
	if provider == nil {
		panic("CredentialProvider is required")
	}
	return &Session{provider: provider, now: time.Now}
}

// Token returns the cached token, exchanging credentials when none is cached
// or the cached one has expired.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.token.Expired(s.now()) {
		return s.token.Value, nil
	}
	return s.exchangeLocked(ctx)
}

// Refresh discards the cached token and exchanges credentials again.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.exchangeLocked(ctx)
}

// Refreshes reports how many forced refreshes happened in this session.
func (s *Session) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func (s *Session) exchangeLocked(ctx context.Context) (string, error) {
	tok, err := s.provider.AccessToken(ctx)
	if err != nil {
		s.token = model.AccessToken{}
		if apperrors.IsAuth(err) {
			return "", err
		}
		return "", apperrors.AuthError(err, "exchange credentials")
	}
	if tok.Value == "" {
		s.token = model.AccessToken{}
		return "", apperrors.AuthError(nil, "credential exchange returned an empty token")
	}
	s.token = tok
	return tok.Value, nil
}

// Call runs fn with the session token, refreshing and retrying once when the
// vendor rejects the token.
func (s *Session) Call(ctx context.Context, fn func(token string) error) error {
	_, err := callWithToken(ctx, s, func(token string) (struct{}, error) {
		return struct{}{}, fn(token)
	})
	return err
}

func callWithToken[T any](ctx context.Context, s *Session, fn func(token string) (T, error)) (T, error) {
	var zero T

	token, err := s.Token(ctx)
	if err != nil {
		return zero, err
	}
	out, err := fn(token)
	if !apperrors.IsTokenExpired(err) {
		return out, err
	}

	token, err = s.Refresh(ctx)
	if err != nil {
		return zero, err
	}
	out, err = fn(token)
	if apperrors.IsTokenExpired(err) {
		return zero, apperrors.AuthError(err, "refreshed token rejected")
	}
	return out, err
}
