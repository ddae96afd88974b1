package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
	"github.com/target/report-relay/internal/mocks"
)

func freshToken(value string) model.AccessToken {
	return model.AccessToken{Value: value, ExpiresAt: time.Now().Add(time.Hour)}
}

func TestSession_CachesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("t1"), nil).Times(1)

	sess := NewSession(creds)
	for range 3 {
		tok, err := sess.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t1", tok)
	}
}

func TestSession_ExpiredTokenIsExchangedAgain(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	gomock.InOrder(
		creds.EXPECT().AccessToken(gomock.Any()).Return(model.AccessToken{Value: "old", ExpiresAt: time.Now().Add(-time.Minute)}, nil),
		creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("new"), nil),
	)

	sess := NewSession(creds)
	_, err := sess.Token(context.Background())
	require.NoError(t, err)
	tok, err := sess.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
}

func TestSession_CallRefreshesOnceOnTokenExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	gomock.InOrder(
		creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("t1"), nil),
		creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("t2"), nil),
	)

	sess := NewSession(creds)
	var seen []string
	err := sess.Call(context.Background(), func(token string) error {
		seen = append(seen, token)
		if token == "t1" {
			return apperrors.TokenExpired("401")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, seen)
	assert.Equal(t, 1, sess.Refreshes())
}

func TestSession_SecondRejectionIsAuthError(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("t"), nil).Times(2)

	sess := NewSession(creds)
	calls := 0
	err := sess.Call(context.Background(), func(string) error {
		calls++
		return apperrors.TokenExpired("401")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.Equal(t, 2, calls)
}

func TestSession_ExchangeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	creds.EXPECT().AccessToken(gomock.Any()).Return(model.AccessToken{}, errors.New("connection refused"))

	sess := NewSession(creds)
	err := sess.Call(context.Background(), func(string) error {
		t.Fatal("call must not run without a token")
		return nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}

func TestSession_OtherErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("t"), nil).Times(1)

	sess := NewSession(creds)
	want := apperrors.FetchError(nil, "boom", true)
	err := sess.Call(context.Background(), func(string) error { return want })
	require.ErrorIs(t, err, want)
	assert.Zero(t, sess.Refreshes())
}

func TestNewSession_RequiresProvider(t *testing.T) {
	assert.Panics(t, func() { NewSession(nil) })
}
