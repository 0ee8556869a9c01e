package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/gateway-policy-hooks/app"
	"github.com/upb/gateway-policy-hooks/gateway"
	"github.com/upb/gateway-policy-hooks/middleware"
	"github.com/upb/gateway-policy-hooks/utils"
)

// OutcomeResponse is the wire form of a resolver outcome
type OutcomeResponse struct {
	Applicable bool        `json:"applicable"`
	Directive  interface{} `json:"directive,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

func newOutcomeResponse[D any](o gateway.Outcome[D]) OutcomeResponse {
	if directive, ok := o.Directive(); ok {
		return OutcomeResponse{Applicable: true, Directive: directive}
	}
	return OutcomeResponse{Reason: o.Reason().Error()}
}

// QuotaDetailHandler exposes the quota-detail extension point.
// The policy name is taken from the URL.
func QuotaDetailHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := middleware.GetUserFromContext(ctx)
		hc := deps.Runtime.NewContext(middleware.GetRequestIDFromContext(ctx))

		outcome := deps.QuotaDetail(ctx, gateway.NewRequest(r, user), hc, chi.URLParam(r, "policyName"))
		_ = utils.WriteOK(w, newOutcomeResponse(outcome))
	}
}

// RateLimitKeyHandler exposes the rate-limit-key extension point
func RateLimitKeyHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := middleware.GetUserFromContext(ctx)
		hc := deps.Runtime.NewContext(middleware.GetRequestIDFromContext(ctx))

		outcome := deps.RateLimitKey(gateway.NewRequest(r, user), hc)
		_ = utils.WriteOK(w, newOutcomeResponse(outcome))
	}
}
