package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

// RoleResolver returns the roles of an active account.
type RoleResolver interface {
	Roles(ctx context.Context, sid string) ([]string, error)
}

// PolicyEnforcer is implemented by permission.Enforcer.
type PolicyEnforcer interface {
	EnforceAny(subjects []string, resource, action string) (bool, error)
}

type PermissionMiddleware struct {
	roles    RoleResolver
	enforcer PolicyEnforcer
	logger   logger.Interface
}

func NewPermissionMiddleware(roles RoleResolver, enforcer PolicyEnforcer, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		roles:    roles,
		enforcer: enforcer,
		logger:   logger,
	}
}

// RequirePermission must run after RequireAuth. Roles are read from the
// account on every request so a revoked staff flag takes effect at once.
func (m *PermissionMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetString(constants.ContextKeyAccountSID)
		if sid == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}

		roles, err := m.roles.Roles(c.Request.Context(), sid)
		if err != nil {
			if errors.IsNotFoundError(err) {
				err = errors.NewUnauthorizedError("authentication required")
			} else if !errors.IsAppError(err) {
				m.logger.Errorw("failed to resolve account roles", "error", err, "account_sid", sid)
			}
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyRoles, roles)

		subjects := append([]string{sid}, roles...)
		allowed, err := m.enforcer.EnforceAny(subjects, resource, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "account_sid", sid, "resource", resource, "action", action)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied", "account_sid", sid, "roles", roles, "resource", resource, "action", action)
			utils.ErrorResponseWithError(c, errors.NewForbiddenError("insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}
