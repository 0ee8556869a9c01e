package middleware

import (
	"net/http"

	"github.com/upb/gateway-policy-hooks/gateway"
	"github.com/upb/gateway-policy-hooks/utils"
	"go.uber.org/zap"
)

// Inbound runs an inbound policy handler before the wrapped handler.
// The request returned by the policy is the one forwarded downstream.
func Inbound(rt *gateway.Runtime, handler gateway.InboundHandler, options any, policyName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)
			user := GetUserFromContext(ctx)

			hc := rt.NewContext(requestID)
			out, err := handler(ctx, gateway.NewRequest(r, user), hc, options, policyName)
			if err != nil {
				hc.Log.Error("inbound policy failed",
					zap.String("policy", policyName),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "Inbound policy failed")
				return
			}
			if out == nil || out.HTTP == nil {
				hc.Log.Error("inbound policy returned no request",
					zap.String("policy", policyName))
				_ = utils.WriteInternalServerError(w, "Inbound policy failed")
				return
			}

			next.ServeHTTP(w, out.HTTP.WithContext(WithUser(out.HTTP.Context(), out.User)))
		})
	}
}
