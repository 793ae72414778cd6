package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupAuthRoutes configures authentication and self-service routes.
func SetupAuthRoutes(api *gin.RouterGroup, cfg *AuthRouteConfig) {
	auth := api.Group("/auth")
	{
		registration := auth.Group("/registration")
		registration.POST("", cfg.RateLimiter.Limit(), cfg.AuthHandler.Register)
		registration.POST("/verify-email", cfg.AuthHandler.VerifyEmail)
		registration.POST("/resend-email", cfg.RateLimiter.Limit(), cfg.AuthHandler.ResendEmail)

		auth.POST("/login", cfg.RateLimiter.Limit(), cfg.AuthHandler.Login)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
		auth.POST("/logout", cfg.AuthHandler.Logout)

		password := auth.Group("/password")
		password.POST("/reset", cfg.RateLimiter.Limit(), cfg.AuthHandler.PasswordReset)
		password.POST("/reset/confirm", cfg.RateLimiter.Limit(), cfg.AuthHandler.PasswordResetConfirm)
		password.POST("/change", cfg.AuthMiddleware.RequireAuth(), cfg.AccountHandler.ChangePassword)

		user := auth.Group("/user", cfg.AuthMiddleware.RequireAuth())
		user.GET("", cfg.AccountHandler.GetCurrent)
		user.PATCH("", cfg.AccountHandler.UpdateCurrent)
		user.DELETE("", cfg.AccountHandler.DeleteCurrent)

		social := auth.Group("/social/:provider")
		social.GET("/login", cfg.AuthHandler.SocialLogin)
		social.GET("/callback", cfg.AuthHandler.SocialCallback)
		social.POST("/complete", cfg.RateLimiter.Limit(), cfg.AuthHandler.SocialComplete)
	}
}
