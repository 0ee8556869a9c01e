package handlers

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/upb/gateway-policy-hooks/middleware"
	"github.com/upb/gateway-policy-hooks/utils"
	"go.uber.org/zap"
)

// NewUpstreamHandler returns the handler requests are forwarded to once
// inbound policies have run. Without an upstream URL it answers 200 itself.
func NewUpstreamHandler(rawURL string, logger *zap.Logger) (http.Handler, error) {
	if rawURL == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteOK(w, map[string]string{"status": "ok"})
		}), nil
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("upstream", target.Host),
			zap.Error(err))
		_ = utils.WriteBadGateway(w, "")
	}
	return proxy, nil
}
