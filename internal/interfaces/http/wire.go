package http

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/tokens"
	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/auth"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/cache"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/email"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/permission"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/ratelimit"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/repository"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/scheduler"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers/admin"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/middleware"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type repositories struct {
	accountRepo   *repository.AccountRepository
	linkRepo      *repository.SocialLinkRepository
	tokenRepo     *repository.VerificationTokenRepository
	blacklistRepo *repository.TokenBlacklistRepository
	txManager     *db.TransactionManager
}

type allUseCases struct {
	register           *usecases.RegisterUseCase
	verifyEmail        *usecases.VerifyEmailUseCase
	resendVerification *usecases.ResendVerificationUseCase
	login              *usecases.LoginUseCase
	refresh            *usecases.RefreshUseCase
	logout             *usecases.LogoutUseCase
	requestReset       *usecases.RequestPasswordResetUseCase
	resetPassword      *usecases.ResetPasswordUseCase
	changePassword     *usecases.ChangePasswordUseCase
	initiateOAuth      *usecases.InitiateOAuthUseCase
	handleOAuth        *usecases.HandleOAuthCallbackUseCase
	getAccount         *usecases.GetAccountUseCase
	updateProfile      *usecases.UpdateProfileUseCase
	deleteAccount      *usecases.DeleteAccountUseCase
	listAccounts       *usecases.ListAccountsUseCase
	purgeExpired       *usecases.PurgeExpiredUseCase
}

type allHandlers struct {
	authHandler         *handlers.AuthHandler
	accountHandler      *handlers.AccountHandler
	adminAccountHandler *admin.AccountHandler
	healthHandler       *handlers.HealthHandler
}

func newRepositories(c *Container) *repositories {
	return &repositories{
		accountRepo:   repository.NewAccountRepository(c.db, c.log),
		linkRepo:      repository.NewSocialLinkRepository(c.db, c.log),
		tokenRepo:     repository.NewVerificationTokenRepository(c.db, c.log),
		blacklistRepo: repository.NewTokenBlacklistRepository(c.db, c.log),
		txManager:     db.NewTransactionManager(c.db),
	}
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.repos = newRepositories(c)

	// Revoked tokens live in redis unless the database store is selected.
	var blacklist token.Blacklist = c.repos.blacklistRepo
	if cfg.Auth.Blacklist.Store == "redis" {
		blacklist = cache.NewRedisTokenBlacklist(c.redis, cfg.Redis.KeyPrefix)
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessTTL(), cfg.Auth.JWT.RefreshTTL())

	sender, err := email.NewSender(cfg.Email, log.Named("email"))
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}

	c.services = &services{
		tokens: tokens.NewService(jwtSvc, blacklist, log.Named("tokens")),
		sender: sender,
		mailer: email.NewMailer(sender, renderer, cfg.Frontend, email.MailerOptions{
			AppName: cfg.Email.FromName,
			Timeout: cfg.Email.Timeout(),
		}, log),
	}

	enforcer, err := permission.NewEnforcer(c.db, log.Named("permission"))
	if err != nil {
		return err
	}
	if err := permission.SeedDefaultPolicies(enforcer, log); err != nil {
		return err
	}
	c.enforcer = enforcer

	c.authMiddleware = middleware.NewAuthMiddleware(c.services.tokens, log)

	var limiter ratelimit.RateLimiter
	if cfg.Auth.RateLimit.Enabled {
		limiter = ratelimit.NewRedisRateLimiter(c.redis, cfg.Redis.KeyPrefix, cfg.Auth.RateLimit.Requests, cfg.Auth.RateLimit.Window())
	}
	c.rateLimiter = middleware.NewRateLimiter(limiter, log)

	return nil
}

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos

	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	policy := vo.NewPasswordPolicy(cfg.Auth.Password.MinLength, cfg.Auth.Password.MaxSimilarity)
	settings := usecases.FlowSettings{
		VerificationTTL:    cfg.Auth.Token.VerificationTTL(),
		ResetTTL:           cfg.Auth.Token.ResetTTL(),
		PreventEnumeration: cfg.Auth.PreventEnumeration,
		NoticeTimeout:      cfg.Email.Timeout(),
	}
	tokenSvc := c.services.tokens
	mailer := c.services.mailer

	providers := auth.NewProviderRegistryFromConfig(cfg.OAuth, log.Named("oauth"))
	stateStore := cache.NewRedisStateStore(c.redis, cfg.Redis.KeyPrefix, cfg.OAuth.StateTTL())

	var purger usecases.ExpiredPurger
	if cfg.Auth.Blacklist.Store == "database" {
		purger = repos.blacklistRepo
	}

	c.ucs = &allUseCases{
		register:           usecases.NewRegisterUseCase(repos.accountRepo, repos.tokenRepo, hasher, policy, mailer, repos.txManager, settings, log),
		verifyEmail:        usecases.NewVerifyEmailUseCase(repos.accountRepo, repos.tokenRepo, repos.txManager, log),
		resendVerification: usecases.NewResendVerificationUseCase(repos.accountRepo, repos.tokenRepo, mailer, settings, log),
		login:              usecases.NewLoginUseCase(repos.accountRepo, hasher, tokenSvc, log),
		refresh:            usecases.NewRefreshUseCase(repos.accountRepo, tokenSvc, log),
		logout:             usecases.NewLogoutUseCase(tokenSvc, log),
		requestReset:       usecases.NewRequestPasswordResetUseCase(repos.accountRepo, repos.tokenRepo, mailer, settings, log),
		resetPassword:      usecases.NewResetPasswordUseCase(repos.accountRepo, repos.tokenRepo, hasher, policy, mailer, repos.txManager, settings, log),
		changePassword:     usecases.NewChangePasswordUseCase(repos.accountRepo, hasher, policy, mailer, settings, log),
		initiateOAuth:      usecases.NewInitiateOAuthUseCase(providers, stateStore, log),
		handleOAuth:        usecases.NewHandleOAuthCallbackUseCase(providers, stateStore, repos.accountRepo, repos.linkRepo, tokenSvc, repos.txManager, retry.Policy{}, log),
		getAccount:         usecases.NewGetAccountUseCase(repos.accountRepo, log),
		updateProfile:      usecases.NewUpdateProfileUseCase(repos.accountRepo, log),
		deleteAccount:      usecases.NewDeleteAccountUseCase(repos.accountRepo, tokenSvc, log),
		listAccounts:       usecases.NewListAccountsUseCase(repos.accountRepo, log),
		purgeExpired:       usecases.NewPurgeExpiredUseCase(repos.tokenRepo, purger, log),
	}
}

func (c *Container) initHandlers() {
	cfg := c.cfg
	log := c.log
	ucs := c.ucs

	cookies := utils.NewCookiePolicy(cfg.Auth.Cookie, cfg.Server.IsProduction(), cfg.Auth.JWT.AccessTTL(), cfg.Auth.JWT.RefreshTTL())

	c.permissionMiddleware = middleware.NewPermissionMiddleware(ucs.getAccount, c.enforcer, log)

	c.hdlrs = &allHandlers{
		authHandler: handlers.NewAuthHandler(handlers.AuthUseCases{
			Register:           ucs.register,
			VerifyEmail:        ucs.verifyEmail,
			ResendVerification: ucs.resendVerification,
			Login:              ucs.login,
			Refresh:            ucs.refresh,
			Logout:             ucs.logout,
			RequestReset:       ucs.requestReset,
			ResetPassword:      ucs.resetPassword,
			InitiateOAuth:      ucs.initiateOAuth,
			HandleOAuth:        ucs.handleOAuth,
		}, cookies, cfg.OAuth, log),
		accountHandler:      handlers.NewAccountHandler(ucs.getAccount, ucs.updateProfile, ucs.deleteAccount, ucs.changePassword, cookies, log),
		adminAccountHandler: admin.NewAccountHandler(ucs.listAccounts, ucs.deleteAccount, log),
		healthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": c.pingDatabase,
			"redis":    c.pingRedis,
		}, log),
	}
}

func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := manager.RegisterPurgeJob(c.ucs.purgeExpired, scheduler.DefaultPurgeInterval); err != nil {
		return fmt.Errorf("failed to register purge job: %w", err)
	}
	c.schedulerManager = manager
	return nil
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Container) pingRedis(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}
