package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/handler"
	"github.com/noah-isme/sma-adp-console/internal/repository"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	"github.com/noah-isme/sma-adp-console/pkg/database"
	"github.com/noah-isme/sma-adp-console/pkg/events"
)

// app holds the wired dependencies of the admin API.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db    *sqlx.DB
	redis *redis.Client
	bus   *events.Bus

	metrics     *service.MetricsService
	auth        *service.AuthService
	accounts    *service.AccountService
	programs    *service.ProgramService
	invitations *service.InvitationService
	suppression *repository.SuppressionRepository
}

func newApp(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*app, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	a := &app{cfg: cfg, logger: logr, db: db, metrics: service.NewMetricsService()}

	if rdb, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, program cache and suppression list disabled", zap.Error(err))
	} else {
		a.redis = rdb
	}

	var publisher service.Publisher
	if cfg.Events.Enabled {
		bus, err := events.New(cfg.Events.NATSURL)
		if err != nil {
			logr.Warn("event bus unavailable, invitation events and mail relay disabled", zap.Error(err))
		} else {
			a.bus = bus
			publisher = bus
		}
	}

	validate := validator.New()

	var cacheRepo service.CacheRepository
	if a.redis != nil {
		cacheRepo = repository.NewCacheRepository(a.redis, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, a.metrics, cfg.Invitations.ProgramCacheTTL, logr)

	accountRepo := repository.NewAccountRepository(db)
	a.suppression = repository.NewSuppressionRepository(a.redis, cfg.Invitations.SuppressionKey)

	a.auth = service.NewAuthService(logr, service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Expiry: cfg.JWT.Expiration})
	a.accounts = service.NewAccountService(accountRepo, validate, logr)
	a.programs = service.NewProgramService(repository.NewProgramRepository(db), cacheSvc, logr)
	mailer := service.NewMailer(a.suppression, publisher, cfg.Events.MailSubject, a.metrics, logr)
	a.invitations = service.NewInvitationService(
		repository.NewInvitationRepository(db),
		accountRepo,
		a.programs,
		mailer,
		publisher,
		a.metrics,
		validate,
		logr,
		service.InvitationConfig{ExpiryTTL: cfg.Invitations.ExpiryTTL, InvitationSubject: cfg.Events.InvitationSubject},
	)

	return a, nil
}

func (a *app) routerConfig() handler.RouterConfig {
	checks := map[string]handler.ReadinessCheck{
		"postgres": a.db.PingContext,
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	return handler.RouterConfig{
		APIPrefix:      a.cfg.APIPrefix,
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		EnableDocs:     a.cfg.Env != config.EnvProduction,
		Logger:         a.logger,
		Auth:           a.auth,
		Metrics:        a.metrics,
		Accounts:       handler.NewAccountHandler(a.accounts),
		Invitations:    handler.NewInvitationHandler(a.invitations),
		Programs:       handler.NewProgramHandler(a.programs),
		Probes:         handler.NewMetricsHandler(a.metrics, checks),
	}
}

func (a *app) sweep(ctx context.Context) error {
	n, err := a.invitations.ExpireOverdue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.Info("expired overdue invitations", zap.Int64("count", n))
	}
	return nil
}

func (a *app) close() {
	a.bus.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close postgres", zap.Error(err))
	}
}

const shutdownTimeout = 10 * time.Second
