package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

type stubIdentity struct {
	user  User
	err   error
	calls int
}

func (s *stubIdentity) Profile(context.Context, Credentials) (User, error) {
	s.calls++
	return s.user, s.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var validCreds = Credentials{Authorization: "Bearer t", RefreshToken: "r", Service: "cortex"}

func TestAuthenticate_RequiresAllHeaders(t *testing.T) {
	client := &stubIdentity{}
	svc := NewService(Config{}, client, newTestLogger())

	for _, creds := range []Credentials{
		{},
		{Authorization: "Bearer t"},
		{Authorization: "Bearer t", RefreshToken: "r"},
	} {
		_, err := svc.Authenticate(context.Background(), creds)
		require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	}
	require.Zero(t, client.calls)
}

func TestAuthenticate_MapsUpstreamFailures(t *testing.T) {
	client := &stubIdentity{err: &UpstreamError{Status: http.StatusUnauthorized, Message: "token expired"}}
	svc := NewService(Config{}, client, newTestLogger())

	_, err := svc.Authenticate(context.Background(), validCreds)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeAuthFailed, appErr.Code)
	require.Equal(t, http.StatusUnauthorized, appErr.Status)
	require.Equal(t, "token expired", appErr.Message)

	client.err = errors.New("dial tcp: connection refused")
	_, err = svc.Authenticate(context.Background(), validCreds)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))
}

func TestAuthenticate_RejectsInactiveUsers(t *testing.T) {
	client := &stubIdentity{user: User{ID: "u1", Email: "a@b.c"}}
	svc := NewService(Config{}, client, newTestLogger())

	_, err := svc.Authenticate(context.Background(), validCreds)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUserInactive))

	client.user.IsActive = true
	user, err := svc.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestIsAdmin_CaseInsensitive(t *testing.T) {
	svc := NewService(Config{AdminEmails: []string{" Admin@Example.com ", ""}}, &stubIdentity{}, newTestLogger())
	require.True(t, svc.AdminRequired())
	require.True(t, svc.IsAdmin(User{Email: "admin@example.COM"}))
	require.False(t, svc.IsAdmin(User{Email: "someone@example.com"}))

	open := NewService(Config{}, &stubIdentity{}, newTestLogger())
	require.False(t, open.AdminRequired())
}
