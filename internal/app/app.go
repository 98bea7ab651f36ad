package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/config"
	"github.com/prperemyshlev/wms-server/internal/handler"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/service"
	"github.com/prperemyshlev/wms-server/internal/utils"
	"github.com/prperemyshlev/wms-server/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

type handlers struct {
	auth      *handler.AuthHandler
	oauth     *handler.OAuthHandler
	user      *handler.UserHandler
	inventory *handler.InventoryHandler
	order     *handler.OrderHandler
	audit     *handler.AuditHandler
	admin     *handler.AdminHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)
	hasher := utils.NewPasswordHasher(cfg.Security.BCryptCost)
	principals := service.NewPrincipalCache(cfg.Cache.PrincipalSize, cfg.Cache.PrincipalTTL.Duration)

	var publisher service.EventPublisher
	if mq := infra.RabbitMQ(); mq != nil {
		publisher = mq
	}

	auditService := service.NewAuditService(repos.Audit, publisher, logger)
	refreshTokens := service.NewRefreshTokenService(repos.Token, jwtManager)
	authService := service.NewAuthService(repos.User, refreshTokens, jwtManager, hasher, principals, auditService, logger)
	oauthService := service.NewOAuthService(
		service.OAuthProvidersFromConfig(cfg.OAuth2),
		repos.User,
		refreshTokens,
		jwtManager,
		service.NewRedisStateStore(infra.Redis(), cfg.OAuth2.StateTTL.Duration),
		auditService,
		logger,
	)
	userService := service.NewUserService(repos.User, refreshTokens, principals, auditService)
	inventoryService := service.NewInventoryService(repos.Inventory, auditService)
	orderService := service.NewOrderService(repos.Order, auditService)
	maintenance := service.NewMaintenanceService(refreshTokens, auditService, logger)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	h := handlers{
		auth:      handler.NewAuthHandler(authService),
		oauth:     handler.NewOAuthHandler(oauthService, cfg.OAuth2.RedirectURL, logger),
		user:      handler.NewUserHandler(userService),
		inventory: handler.NewInventoryHandler(inventoryService),
		order:     handler.NewOrderHandler(orderService),
		audit:     handler.NewAuditHandler(auditService),
		admin:     handler.NewAdminHandler(maintenance),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidation()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger, "/health", "/metrics"))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	rateLimited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	authenticated := handler.AuthMiddleware(authService)
	admin := handler.RequireAdmin()

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rateLimited, h.auth.SignUp)
			auth.POST("/signin", rateLimited, h.auth.SignIn)
			auth.POST("/signout", h.auth.SignOut)
			auth.POST("/refresh", h.auth.Refresh)
			auth.GET("/me", authenticated, h.auth.Me)
		}

		oauth := api.Group("/oauth2")
		{
			oauth.GET("/authorize/:provider", h.oauth.Authorize)
			oauth.GET("/callback/:provider", h.oauth.Callback)
		}

		users := api.Group("/users", authenticated)
		{
			users.GET("", admin, h.user.List)
			users.GET("/search", admin, h.user.Search)
			users.GET("/count", admin, h.user.Count)
			users.GET("/:id", h.user.Get)
			users.PUT("/:id", h.user.Update)
			users.DELETE("/:id", admin, h.user.Delete)
			users.POST("/:id/restore", admin, h.user.Restore)
		}

		inventory := api.Group("/inventory", authenticated)
		{
			inventory.GET("", h.inventory.List)
			inventory.POST("", h.inventory.Create)
			inventory.GET("/low-stock", h.inventory.LowStock)
			inventory.GET("/search", h.inventory.Search)
			inventory.GET("/count", h.inventory.Count)
			inventory.GET("/:id", h.inventory.Get)
			inventory.PUT("/:id", h.inventory.Update)
			inventory.DELETE("/:id", h.inventory.Delete)
			inventory.PATCH("/:id/quantity", h.inventory.AdjustQuantity)
			inventory.PUT("/:id/quantity", h.inventory.SetQuantity)
		}

		orders := api.Group("/orders/:kind", authenticated)
		{
			orders.GET("", h.order.List)
			orders.POST("", h.order.Create)
			orders.GET("/count", h.order.Count)
			orders.GET("/:id", h.order.Get)
			orders.DELETE("/:id", h.order.Delete)
			orders.POST("/:id/process", h.order.Process)
			orders.POST("/:id/complete", h.order.Complete)
			orders.POST("/:id/cancel", h.order.Cancel)
			orders.PUT("/:id/status", h.order.UpdateStatus)
		}

		logs := api.Group("/logs", authenticated, admin)
		{
			logs.GET("", h.audit.Search)
			logs.GET("/recent", h.audit.Recent)
			logs.GET("/count", h.audit.Count)
			logs.GET("/facets", h.audit.Facets)
			logs.GET("/entity/:type/:id", h.audit.EntityHistory)
			logs.GET("/:id", h.audit.Get)
		}

		api.POST("/admin/maintenance/refresh-tokens/purge", authenticated, admin, h.admin.PurgeRefreshTokens)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// stop accepting requests before closing the connections they use
	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("HTTP server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	if err := a.infra.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
