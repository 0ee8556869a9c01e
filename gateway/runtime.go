package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNilPlugin is returned when registering a nil plugin
	ErrNilPlugin = errors.New("plugin is nil")

	// ErrDuplicatePlugin is returned when a plugin name is registered twice
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

// QuotaDetailFunc resolves the quota directive for a request
type QuotaDetailFunc func(ctx context.Context, req *Request, hc *Context, policyName string) Outcome[QuotaDetail]

// RateLimitKeyFunc resolves the rate-limit directive for a request
type RateLimitKeyFunc func(req *Request, hc *Context) Outcome[RateLimitDetails]

// InboundHandler processes a request before it reaches the upstream and
// returns the request to forward
type InboundHandler func(ctx context.Context, req *Request, hc *Context, options any, policyName string) (*Request, error)

// RuntimeInitFunc runs once at process startup
type RuntimeInitFunc func(rt RuntimeExtensions) error

// Plugin is a runtime extension registered at startup
type Plugin interface {
	Name() string
}

// LoggingPlugin is a plugin that declares a log destination. Fields are
// attached to every log line the host emits.
type LoggingPlugin interface {
	Plugin
	Fields() []zap.Field
}

// RuntimeExtensions is the registration handle given to startup hooks
type RuntimeExtensions interface {
	AddPlugin(p Plugin) error
}

// Runtime is the host-side registry for plugins and per-request contexts
type Runtime struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	quotas  QuotaEngine
	plugins []Plugin
	names   map[string]struct{}
}

var _ RuntimeExtensions = (*Runtime)(nil)

// NewRuntime creates a new Runtime. quotas may be nil when no quota engine is available.
func NewRuntime(logger *zap.Logger, quotas QuotaEngine) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		logger: logger,
		quotas: quotas,
		names:  make(map[string]struct{}),
	}
}

// Init runs the startup hooks in order and stops at the first failure
func (r *Runtime) Init(fns ...RuntimeInitFunc) error {
	for i, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(r); err != nil {
			return fmt.Errorf("runtime init %d: %w", i, err)
		}
	}
	return nil
}

// AddPlugin registers a plugin
func (r *Runtime) AddPlugin(p Plugin) error {
	if p == nil {
		return ErrNilPlugin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}
	r.names[name] = struct{}{}
	r.plugins = append(r.plugins, p)

	r.logger.Info("plugin registered", zap.String("plugin", name))
	return nil
}

// Plugins returns the registered plugins in registration order
func (r *Runtime) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Logger returns the host logger decorated with the static fields of every
// registered logging plugin
func (r *Runtime) Logger() *zap.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logger := r.logger
	for _, p := range r.plugins {
		if lp, ok := p.(LoggingPlugin); ok {
			logger = logger.With(lp.Fields()...)
		}
	}
	return logger
}

// NewContext creates the host context for a single request
func (r *Runtime) NewContext(requestID string) *Context {
	return &Context{
		RequestID: requestID,
		Log:       r.Logger().With(zap.String("request_id", requestID)),
		quotas:    r.quotas,
	}
}

// Ping checks the quota engine when it supports health checks
func (r *Runtime) Ping(ctx context.Context) error {
	if r.quotas == nil {
		return ErrNoQuotaEngine
	}
	if p, ok := r.quotas.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
