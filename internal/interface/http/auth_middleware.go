package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

const (
	headerRefreshToken = "x-refresh-token"
	headerService      = "x-service"
)

func credentials(c *gin.Context) auth.Credentials {
	return auth.Credentials{
		Authorization: c.GetHeader("Authorization"),
		RefreshToken:  c.GetHeader(headerRefreshToken),
		Service:       c.GetHeader(headerService),
	}
}

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Authenticate(c.Request.Context(), credentials(c))
		if err != nil {
			fail(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// optionalAuthMiddleware attaches the user when credentials are present and
// valid. Anything else continues anonymously.
func optionalAuthMiddleware(svc auth.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentials(c)
		if creds.Empty() {
			c.Next()
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), creds)
		if err != nil {
			logger.Debug("optional auth failed, continuing anonymously", "path", c.Request.URL.Path, "error", err)
			c.Next()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// adminMiddleware guards catalog writes. It is a no-op when no admin e-mails
// are configured.
func adminMiddleware(svc auth.Service) []gin.HandlerFunc {
	if !svc.AdminRequired() {
		return nil
	}
	return []gin.HandlerFunc{
		authMiddleware(svc),
		func(c *gin.Context) {
			user, _ := currentUser(c)
			if !svc.IsAdmin(user) {
				abortWithError(c, NewHTTPError(http.StatusForbidden, apperrors.CodeForbidden, "Unauthorized", nil))
				return
			}
			c.Next()
		},
	}
}
