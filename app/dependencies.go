package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/gateway-policy-hooks/auth"
	"github.com/upb/gateway-policy-hooks/config"
	"github.com/upb/gateway-policy-hooks/gateway"
	"github.com/upb/gateway-policy-hooks/hooks"
	"github.com/upb/gateway-policy-hooks/middleware"
	"github.com/upb/gateway-policy-hooks/usage"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Host runtime and the quota engine it reads usage from
	Runtime *gateway.Runtime
	Quotas  *usage.RedisEngine

	// Policy hooks bound to the extension points
	QuotaDetail  gateway.QuotaDetailFunc
	RateLimitKey gateway.RateLimitKeyFunc
	Inbound      gateway.InboundHandler

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:       cfg,
		Logger:       logger,
		QuotaDetail:  hooks.GetQuotaDetail,
		RateLimitKey: hooks.RateLimitKey,
		Inbound:      hooks.ShowQuota,
	}

	// Initialize the quota engine
	if err := deps.initQuotaEngine(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize quota engine: %w", err)
	}

	// Initialize the host runtime and run startup hooks
	if err := deps.initRuntime(cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize runtime: %w", err)
	}

	// Initialize auth
	if err := deps.initAuth(cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initQuotaEngine connects to the host's quota counters when configured
func (d *Dependencies) initQuotaEngine(ctx context.Context, cfg *config.Config) error {
	if cfg.QuotaEngine.Addr == "" {
		d.Logger.Warn("quota engine not configured, usage reporting disabled")
		return nil
	}

	engine, err := usage.NewRedisEngine(ctx, usage.Config{
		Addr:      cfg.QuotaEngine.Addr,
		Password:  cfg.QuotaEngine.Password,
		DB:        cfg.QuotaEngine.DB,
		KeyPrefix: cfg.QuotaEngine.KeyPrefix,
	})
	if err != nil {
		return err
	}

	d.Quotas = engine
	d.Logger.Info("quota engine connected",
		zap.String("addr", cfg.QuotaEngine.Addr),
		zap.String("key_prefix", cfg.QuotaEngine.KeyPrefix))
	return nil
}

func (d *Dependencies) initRuntime(cfg *config.Config) error {
	var quotas gateway.QuotaEngine
	if d.Quotas != nil {
		quotas = d.Quotas
	}

	d.Runtime = gateway.NewRuntime(d.Logger, quotas)
	if err := d.Runtime.Init(hooks.NewRuntimeInit(cfg.Loki)); err != nil {
		return err
	}

	d.Logger.Info("runtime initialized", zap.Int("plugins", len(d.Runtime.Plugins())))
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("jwt secret not configured, bearer tokens will be rejected")
		// Anonymous requests still reach the hooks; any presented token is refused
		d.AuthMiddleware = middleware.NewAuthMiddleware(&rejectAllValidator{}, d.Logger)
		return nil
	}

	validator, err := auth.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		return err
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	return nil
}

// rejectAllValidator rejects all tokens (used when no secret is configured)
type rejectAllValidator struct{}

func (*rejectAllValidator) ValidateToken(context.Context, string) (*gateway.User, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Quotas != nil {
		if err := d.Quotas.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close quota engine: %w", err))
		} else {
			d.Logger.Info("quota engine connection closed")
		}
	}

	// Sync logger
	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
