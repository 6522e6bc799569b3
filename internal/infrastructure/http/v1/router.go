// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"omnicrm/internal/core/tenant"
	"omnicrm/internal/domain/access"
	"omnicrm/internal/domain/auth"
	"omnicrm/internal/domain/crm/company"
	"omnicrm/internal/domain/crm/contact"
	"omnicrm/internal/domain/crm/deal"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/internal/domain/crm/segment"
	"omnicrm/internal/domain/crm/settings"
	"omnicrm/internal/infrastructure/http/v1/handlers"
	"omnicrm/internal/infrastructure/http/v1/middleware"
	"omnicrm/internal/infrastructure/storage/postgres"
	"omnicrm/internal/infrastructure/storage/postgres/crm_repo"
	"omnicrm/pkg/logger"
	"omnicrm/pkg/numerator"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// AccessService resolves permissions and manages roles/overrides
	AccessService *access.Service

	// AuditService journals permission and role changes
	AuditService *postgres.AuditService

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandlerMultiTenant(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats)
	}

	resolver := cfg.AccessService.Resolver()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need TenantDB middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints - TenantDB runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.TenantDB(cfg.TenantManager)) // 1. Resolve tenant, get DB pool
		protected.Use(middleware.Auth(cfg.JWTValidator))      // 2. Validate JWT, put user into context

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		registerCRMRoutes(protected, cfg, resolver)
		registerSettingsRoutes(protected, cfg, resolver)
		registerTeamRoutes(protected, cfg, resolver)
	}

	return router
}

// idempotencyMiddleware creates idempotency middleware that uses tenant pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := tenant.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need tenant for DB access)
	public := rg.Group("/auth")
	public.Use(middleware.TenantDB(cfg.TenantManager))
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/refresh", authHandler.Refresh)

	// Protected auth endpoints (JWT required)
	protected := rg.Group("/auth")
	protected.Use(middleware.TenantDB(cfg.TenantManager))
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)
}

// registerCRMRoutes registers contact, company, deal, pipeline and
// segment endpoints.
//
// Note: repos and services are stateless, TxManager comes from context
// per-request.
func registerCRMRoutes(rg *gin.RouterGroup, cfg RouterConfig, resolver *access.Resolver) {
	baseHandler := handlers.NewBaseHandler()

	contactRepo := crm_repo.NewContactRepo()
	contactService := contact.NewService(contactRepo)

	pipelineRepo := crm_repo.NewPipelineRepo()
	pipelineService := pipeline.NewService(pipelineRepo)

	// --- CONTACTS ---
	{
		handler := handlers.NewContactHandler(baseHandler, contactService)
		group := rg.Group("/contacts")

		// Specific routes before the wildcard ones
		group.GET("/export", middleware.RequirePermission(resolver, "contacts.export"), handler.Export)
		group.POST("/:id/assign", middleware.RequirePermission(resolver, "contacts.assign"), handler.Assign)

		RegisterRecordRoutes(group, handler, resolver, "contacts")
	}

	// --- COMPANIES ---
	{
		repo := crm_repo.NewCompanyRepo()
		service := company.NewService(repo)
		handler := handlers.NewCompanyHandler(baseHandler, service)

		RegisterRecordRoutes(rg.Group("/companies"), handler, resolver, "companies")
	}

	// --- DEALS ---
	{
		repo := crm_repo.NewDealRepo()
		service := deal.NewService(repo, pipelineService, numerator.NewFromContext())
		handler := handlers.NewDealHandler(baseHandler, service)
		group := rg.Group("/deals")

		group.GET("/forecast", middleware.RequirePermission(resolver, "analytics.view"), handler.Forecast)
		group.POST("/:id/stage", middleware.RequirePermission(resolver, "deals.edit"), handler.MoveStage)

		RegisterRecordRoutes(group, handler, resolver, "deals")
	}

	// --- PIPELINES ---
	// Pipelines share one manage permission instead of per-action keys.
	{
		handler := handlers.NewPipelineHandler(baseHandler, pipelineService)
		group := rg.Group("/pipelines")
		manage := middleware.RequirePermission(resolver, "pipelines.manage")

		group.GET("", handler.List)
		group.GET("/default", handler.GetDefault)
		group.GET("/:id", handler.Get)
		group.POST("", manage, handler.Create)
		group.PUT("/:id", manage, handler.Update)
		group.DELETE("/:id", manage, handler.Delete)
		group.POST("/:id/default", manage, handler.SetDefault)
	}

	// --- SEGMENTS ---
	{
		evaluator, err := segment.NewEvaluator()
		if err != nil {
			// Environment construction only fails on programmer error.
			panic(err)
		}

		repo := crm_repo.NewSegmentRepo()
		service := segment.NewService(repo, contactRepo, evaluator)
		handler := handlers.NewSegmentHandler(baseHandler, service)
		group := rg.Group("/segments")

		group.POST("/validate", handler.Validate)
		group.GET("/:id/members", handler.Members)

		RegisterRecordRoutes(group, handler, resolver, "segments")
	}
}

// registerSettingsRoutes registers lookup item endpoints. Each kind
// carries its own manage permission.
func registerSettingsRoutes(rg *gin.RouterGroup, cfg RouterConfig, resolver *access.Resolver) {
	baseHandler := handlers.NewBaseHandler()

	repo := crm_repo.NewSettingsRepo()
	service := settings.NewService(repo)

	kinds := []struct {
		path       string
		kind       settings.Kind
		permission access.Key
	}{
		{"/settings/tags", settings.KindTag, "tags.manage"},
		{"/settings/statuses", settings.KindStatus, "statuses.manage"},
		{"/settings/lead-sources", settings.KindLeadSource, "lead_sources.manage"},
	}

	for _, k := range kinds {
		handler := handlers.NewSettingsHandler(baseHandler, service, k.kind)
		group := rg.Group(k.path)
		manage := middleware.RequirePermission(resolver, k.permission)

		group.GET("", handler.List)
		group.POST("", manage, handler.Create)
		group.PUT("/:id", manage, handler.Update)
		group.DELETE("/:id", manage, handler.Delete)
	}
}

// registerTeamRoutes registers user management, role management,
// permission discovery and override endpoints.
func registerTeamRoutes(rg *gin.RouterGroup, cfg RouterConfig, resolver *access.Resolver) {
	baseHandler := handlers.NewBaseHandler()

	// --- USERS ---
	{
		handler := handlers.NewUserHandler(baseHandler, cfg.AuthService)
		group := rg.Group("/users")

		group.GET("", middleware.RequirePermission(resolver, "users.view"), handler.List)
		group.GET("/:id", middleware.RequirePermission(resolver, "users.view"), handler.Get)
		group.POST("", middleware.RequirePermission(resolver, "users.invite"), handler.Invite)
		group.PUT("/:id", middleware.RequirePermission(resolver, "users.edit"), handler.Update)
		group.DELETE("/:id", middleware.RequirePermission(resolver, "users.delete"), handler.Delete)
		group.POST("/:id/role", middleware.RequirePermission(resolver, "users.edit"), handler.SetRole)
	}

	// --- ROLES, DISCOVERY, OVERRIDES ---
	{
		handler := handlers.NewAccessHandler(baseHandler, cfg.AccessService, cfg.AuditService)
		manage := middleware.RequirePermission(resolver, "permissions.manage")

		rg.GET("/permissions", manage, handler.Discover)

		roles := rg.Group("/roles")
		roles.GET("", manage, handler.ListRoles)
		roles.GET("/:slug", manage, handler.GetRole)
		roles.POST("", manage, handler.CreateRole)
		roles.PUT("/:slug/permissions", manage, handler.ReplacePermissions)
		roles.DELETE("/:slug", manage, handler.DeleteRole)

		overrides := rg.Group("/users/:id/overrides")
		overrides.GET("", manage, handler.ListOverrides)
		overrides.PUT("", manage, handler.SetOverride)
		overrides.DELETE("/:permission", manage, handler.ClearOverride)
	}
}
