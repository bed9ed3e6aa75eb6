package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/config"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/audit"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/chat"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/export"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/opportunities"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/prompts"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/segments"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/ai"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/auth"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/db"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/middleware"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/session"
)

const serviceName = "ai-opportunity-mining-backend"

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database is optional: it backs the postgres metrics source and the audit log.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	source, err := newMetricsSource(cfg, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure metrics source")
	}

	e, err := newServer(cfg, logger, pool, source)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("metrics_source", cfg.ResolvedMetricsSource()).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newMetricsSource(cfg *config.Config, pool *pgxpool.Pool) (metrics.Source, error) {
	switch cfg.ResolvedMetricsSource() {
	case config.SourceHTTP:
		return metrics.NewHTTPSource(metrics.HTTPSourceConfig{
			BaseURL: cfg.MetricsServiceURL,
			Timeout: cfg.MetricsTimeout,
		})
	case config.SourcePostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres metrics source needs DATABASE_URL")
		}
		return metrics.NewSnapshotRepoPG(pool), nil
	default:
		if cfg.MetricsFile == "" {
			return metrics.NewStaticSource(), nil
		}
		data, err := os.ReadFile(cfg.MetricsFile)
		if err != nil {
			return nil, fmt.Errorf("read METRICS_FILE: %w", err)
		}
		return metrics.NewStaticSourceFromJSON(data)
	}
}

func authMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		return auth.DevAuthMiddleware()
	}
	return auth.JWTMiddleware(jwtConfig(cfg))
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	jc := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
	}
	if cfg.AuthSigningKey != "" {
		jc.SigningKey = []byte(cfg.AuthSigningKey)
	}
	return jc
}

func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, source metrics.Source) (*echo.Echo, error) {
	library, err := prompts.LoadLibrary()
	if err != nil {
		return nil, err
	}
	policy, err := prompts.ParsePolicy(cfg.PromptInflightPolicy)
	if err != nil {
		return nil, err
	}

	var auditRepo audit.Repository = audit.NewMemoryRepo(cfg.AuditMemoryCapacity)
	if pool != nil {
		auditRepo = audit.NewRepoPG(pool)
	}
	auditSvc := audit.NewService(auditRepo, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader,
			auth.UserIDHeader, auth.UserRoleHeader, session.Header,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader, dashboard.StaleHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(authMiddleware(cfg))
	e.Use(middleware.Audit(logger, auditSvc))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	api := e.Group("/api")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	aiClient := ai.NewClient(ai.Config{
		BaseURL: cfg.AIServiceURL,
		APIKey:  cfg.AIAPIKey,
		Timeout: cfg.AITimeout,
	})
	if !aiClient.Configured() {
		logger.Warn().Msg("AI_SERVICE_URL is not set; prompt and chat requests will fail")
	}

	dashSvc := dashboard.NewService(source, cfg.PlanName, logger)
	dashboard.NewHandler(dashSvc).RegisterRoutes(api.Group("/metrics"))

	agent := api.Group("/agent")
	promptHandler := prompts.NewHandler(library, prompts.NewDispatcher(aiClient, library, policy, logger))
	promptHandler.RegisterRoutes(agent)
	chat.NewHandler(chat.NewRelay(aiClient, logger)).RegisterRoutes(agent)

	opportunities.NewHandler(dashSvc, promptHandler.PageHandler(prompts.PageOpportunities)).RegisterRoutes(api)
	segments.NewHandler(dashSvc, promptHandler.PageHandler(prompts.PageSegmentation)).RegisterRoutes(api)
	export.NewHandler(dashSvc, logger).RegisterRoutes(api)
	audit.NewHandler(auditSvc).RegisterRoutes(api)

	var issuer *auth.TokenIssuer
	if cfg.IsDev() && cfg.AuthSigningKey != "" {
		issuer = auth.NewTokenIssuer(jwtConfig(cfg), 0)
	}
	auth.NewHandler(issuer).RegisterRoutes(api)

	return e, nil
}
