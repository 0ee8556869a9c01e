package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNoQuotaEngine is returned when usage is requested but no quota engine is configured
	ErrNoQuotaEngine = errors.New("quota engine not configured")

	// ErrEmptyKey is returned when usage is requested without a quota key
	ErrEmptyKey = errors.New("empty quota key")
)

// QuotaEngine is the host component that enforces quotas and tracks usage
type QuotaEngine interface {
	GetUsage(ctx context.Context, policyName, key string) (*QuotaUsage, error)
}

// Context is the per-request host context passed to every hook
type Context struct {
	RequestID string
	Log       *zap.Logger

	quotas QuotaEngine
}

// QuotaUsage queries the host quota engine for the usage of key under policyName
func (c *Context) QuotaUsage(ctx context.Context, policyName, key string) (*QuotaUsage, error) {
	if c == nil || c.quotas == nil {
		return nil, ErrNoQuotaEngine
	}
	if key == "" {
		return nil, fmt.Errorf("quota usage for %s: %w", policyName, ErrEmptyKey)
	}
	return c.quotas.GetUsage(ctx, policyName, key)
}
