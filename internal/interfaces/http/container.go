package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/tokens"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/email"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/permission"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/scheduler"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/middleware"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases, handlers and
// background jobs of the HTTP service and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos    *repositories
	services *services
	ucs      *allUseCases
	hdlrs    *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimiter          *middleware.RateLimiter

	enforcer         *permission.Enforcer
	schedulerManager *scheduler.SchedulerManager
}

// services are the infrastructure adapters the use cases depend on.
type services struct {
	tokens *tokens.Service
	sender email.Sender
	mailer *email.Mailer
}

// NewContainer wires every component from cfg. db and rdb are owned by the
// caller and stay open after Shutdown.
func NewContainer(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  rdb,
	}

	// Section 1: Infrastructure - repositories, tokens, mail, permissions
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Use cases
	c.initUseCases()

	// Section 3: Handlers and middlewares
	c.initHandlers()

	// Section 4: Background jobs
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	return c, nil
}

// Sender returns the email sender in use. Tests read the memory outbox through it.
func (c *Container) Sender() email.Sender {
	return c.services.sender
}

// Shutdown stops the background jobs.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
}
