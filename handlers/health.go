package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/upb/gateway-policy-hooks/app"
	"github.com/upb/gateway-policy-hooks/gateway"
	"github.com/upb/gateway-policy-hooks/utils"
	"go.uber.org/zap"
)

// HealthCheck returns a simple health check handler
func HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck checks the quota engine when one is configured
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ready"
		checks := map[string]string{}

		err := deps.Runtime.Ping(ctx)
		switch {
		case errors.Is(err, gateway.ErrNoQuotaEngine):
			checks["quota_engine"] = "not_configured"
		case err != nil:
			status = "not_ready"
			checks["quota_engine"] = "unhealthy"
			deps.Logger.Error("quota engine health check failed", zap.Error(err))
		default:
			checks["quota_engine"] = "healthy"
		}

		code := http.StatusOK
		if status != "ready" {
			code = http.StatusServiceUnavailable
		}
		_ = utils.WriteJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	}
}

// StatusHandler returns application status information
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plugins := []string{}
		for _, p := range deps.Runtime.Plugins() {
			plugins = append(plugins, p.Name())
		}

		_ = utils.WriteOK(w, map[string]interface{}{
			"version":     "0.1.0",
			"environment": deps.Config.Environment,
			"plugins":     plugins,
		})
	}
}
