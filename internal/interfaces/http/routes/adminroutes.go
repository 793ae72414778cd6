package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/permission"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers/admin"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for admin-only routes.
type AdminRouteConfig struct {
	AccountHandler       *admin.AccountHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(api *gin.RouterGroup, cfg *AdminRouteConfig) {
	accounts := api.Group("/admin/accounts")
	accounts.Use(cfg.AuthMiddleware.RequireAuth())
	{
		accounts.GET("",
			cfg.PermissionMiddleware.RequirePermission(permission.ResourceAccounts, permission.ActionRead),
			cfg.AccountHandler.List)
		accounts.DELETE("/:sid",
			cfg.PermissionMiddleware.RequirePermission(permission.ResourceAccounts, permission.ActionDelete),
			cfg.AccountHandler.Delete)
	}
}
