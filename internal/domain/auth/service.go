package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

// IdentityClient resolves credentials against the identity service.
type IdentityClient interface {
	Profile(ctx context.Context, creds Credentials) (User, error)
}

// Service exposes authentication workflows.
type Service interface {
	Authenticate(ctx context.Context, creds Credentials) (User, error)
	IsAdmin(user User) bool
	AdminRequired() bool
}

type service struct {
	client IdentityClient
	admins map[string]struct{}
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, client IdentityClient, logger *slog.Logger) Service {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &service{
		client: client,
		admins: admins,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	switch {
	case strings.TrimSpace(creds.Authorization) == "":
		return User{}, apperrors.Wrap(apperrors.CodeUnauthorized, "Authorization header is required", nil)
	case strings.TrimSpace(creds.RefreshToken) == "":
		return User{}, apperrors.Wrap(apperrors.CodeUnauthorized, "x-refresh-token header is required", nil)
	case strings.TrimSpace(creds.Service) == "":
		return User{}, apperrors.Wrap(apperrors.CodeUnauthorized, "service header is required", nil)
	}

	user, err := s.client.Profile(ctx, creds)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			msg := upstream.Message
			if msg == "" {
				msg = "Authentication failed"
			}
			return User{}, apperrors.WithStatus(apperrors.CodeAuthFailed, msg, upstream.Status, err)
		}
		s.logger.Warn("identity service unreachable", "error", err)
		return User{}, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "authentication service unavailable", err)
	}
	if !user.IsActive {
		return User{}, apperrors.Wrap(apperrors.CodeUserInactive, "User account is inactive", nil)
	}
	return user, nil
}

func (s *service) IsAdmin(user User) bool {
	_, ok := s.admins[normalizeEmail(user.Email)]
	return ok
}

func (s *service) AdminRequired() bool {
	return len(s.admins) > 0
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
