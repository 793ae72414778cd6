package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/tokens"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

// TokenVerifier checks signature, expiry, type and the blacklist.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string, expected token.Type) (*token.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth accepts the access_token cookie or an Authorization: Bearer header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := utils.GetAccessToken(c)
		if raw == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication credentials were not provided"))
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(c.Request.Context(), raw, token.TypeAccess)
		if err != nil {
			if !tokens.IsTokenError(err) {
				m.logger.Errorw("access token check failed", "error", err, "path", c.FullPath())
				utils.ErrorResponseWithError(c, errors.NewInternalError("failed to verify credentials"))
				c.Abort()
				return
			}
			if errors.IsSecurityEvent(err) {
				m.logger.Warnw("rejected access token", "reason", errors.ReasonOf(err), "client_ip", c.ClientIP())
			}
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAccountSID, claims.Subject)
		c.Set(constants.ContextKeyAccessJTI, claims.JTI)

		c.Next()
	}
}
