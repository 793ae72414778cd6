package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/Mordecai-Wambua/User-Auth/docs"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/middleware"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/routes"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const docsPrefix = "/api/docs"

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter wires the service from cfg. Call SetupRoutes before serving.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, rdb, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders(docsPrefix))

	r.engine.GET("/health", r.hdlrs.healthHandler.HealthCheck)
	r.engine.GET(docsPrefix+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api")

	routes.SetupAuthRoutes(api, &routes.AuthRouteConfig{
		AuthHandler:    r.hdlrs.authHandler,
		AccountHandler: r.hdlrs.accountHandler,
		AuthMiddleware: r.authMiddleware,
		RateLimiter:    r.rateLimiter,
	})

	routes.SetupAdminRoutes(api, &routes.AdminRouteConfig{
		AccountHandler:       r.hdlrs.adminAccountHandler,
		AuthMiddleware:       r.authMiddleware,
		PermissionMiddleware: r.permissionMiddleware,
	})
}

// StartBackground starts the scheduled jobs.
func (r *Router) StartBackground() {
	r.schedulerManager.Start()
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
