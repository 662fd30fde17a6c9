package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-console/pkg/middleware/requestid"
)

// RouterConfig collects everything the admin API router mounts.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Logger  *zap.Logger
	Auth    middleware.TokenValidator
	Metrics *service.MetricsService

	Accounts    *AccountHandler
	Invitations *InvitationHandler
	Programs    *ProgramHandler
	Probes      *MetricsHandler
}

// NewRouter builds the gin engine serving the admin API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics, "/health", "/ready", "/metrics"))

	if cfg.Probes != nil {
		r.GET("/health", cfg.Probes.Health)
		r.GET("/ready", cfg.Probes.Ready)
		r.GET("/metrics", cfg.Probes.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := r.Group(cfg.APIPrefix + "/admin")
	admin.Use(middleware.JWT(cfg.Auth), middleware.RequireAdministrator())

	if cfg.Accounts != nil {
		admin.GET("/accounts", cfg.Accounts.List)
		admin.PUT("/accounts/:id", middleware.Audit(cfg.Logger, "account.update"), cfg.Accounts.Update)
	}
	if cfg.Invitations != nil {
		admin.GET("/invitations", cfg.Invitations.List)
		admin.POST("/invitations", middleware.Audit(cfg.Logger, "invitation.create"), cfg.Invitations.Create)
		admin.POST("/invitations/:id/resend", middleware.Audit(cfg.Logger, "invitation.resend"), cfg.Invitations.Resend)
		admin.POST("/invitations/:id/cancel", middleware.Audit(cfg.Logger, "invitation.cancel"), cfg.Invitations.Cancel)
	}
	if cfg.Programs != nil {
		admin.GET("/programs", middleware.WithResponseMeta(), cfg.Programs.List)
	}

	return r
}
